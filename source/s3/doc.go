// Package s3 provides a source.Source backed by Amazon S3.
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	src := s3src.New(s3.NewFromConfig(cfg), "game-assets", "v1/")
//
// Reads go through the S3 transfer manager's Downloader: ranged reads are a
// single GET, whole-object reads are fetched as parallel parts.
package s3
