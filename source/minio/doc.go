// Package minio provides a source.Source backed by the MinIO client.
//
// It works with MinIO and other S3-compatible stores (Ceph, Garage,
// SeaweedFS) without pulling in the AWS SDK:
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	src := miniosrc.New(client, "game-assets", "v1/")
package minio
