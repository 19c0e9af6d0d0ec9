package main

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/assetgo"
	"github.com/hupe1980/assetgo/internal/cache"
	"github.com/hupe1980/assetgo/source"
	"github.com/hupe1980/assetgo/source/minio"
	"github.com/hupe1980/assetgo/source/s3"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openSource builds the configured source, wrapped in the block cache and
// the app's IO throttle. The returned closer releases the cache.
func openSource(ctx context.Context, cfg *assetgo.Config, app *assetgo.App) (source.Source, io.Closer, error) {
	var src source.Source

	sc := cfg.Source
	switch sc.Kind {
	case assetgo.SourceMemory:
		src = source.NewMemorySource()
	case assetgo.SourceLocal:
		src = source.NewLocalSource(sc.Root)
	case assetgo.SourceMinIO:
		client, err := miniogo.New(sc.Endpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(sc.AccessKey, sc.SecretKey, ""),
			Secure: sc.UseSSL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("minio client: %w", err)
		}
		src = minio.New(client, sc.Bucket, sc.Prefix)
	case assetgo.SourceS3:
		var optFns []func(*config.LoadOptions) error
		if sc.Region != "" {
			optFns = append(optFns, config.WithRegion(sc.Region))
		}
		awsCfg, err := config.LoadDefaultConfig(ctx, optFns...)
		if err != nil {
			return nil, nil, fmt.Errorf("aws config: %w", err)
		}
		src = s3.New(awss3.NewFromConfig(awsCfg), sc.Bucket, sc.Prefix)
	default:
		return nil, nil, fmt.Errorf("%w: unknown source kind %q", assetgo.ErrInvalidConfig, sc.Kind)
	}

	var closer io.Closer = nopCloser{}
	if cc := cfg.Cache; cc.Enabled() {
		var bc cache.BlockCache
		if cc.Dir != "" {
			badger, err := cache.NewBadgerBlockCache(cache.BadgerConfig{
				Dir:    cc.Dir,
				TTL:    cc.TTL,
				Logger: app.Logger().Logger,
			})
			if err != nil {
				return nil, nil, fmt.Errorf("block cache: %w", err)
			}
			bc = badger
		} else {
			bc = cache.NewShardedLRUBlockCache(cc.MemoryBytes, app.Controller())
		}
		src = source.NewCachingSource(src, bc, cc.BlockSize)
		closer = bc
	}

	return app.Throttle(src), closer, nil
}
