package minio

import (
	"bytes"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/assetgo/source"
)

func TestTrimRoot(t *testing.T) {
	assert.Equal(t, "a.png", trimRoot("assets/a.png", "assets/"))
	assert.Equal(t, "a.png", trimRoot("assets/a.png", "assets"))
	assert.Equal(t, "x/a.png", trimRoot("x/a.png", ""))
}

func TestKey(t *testing.T) {
	s := New(nil, "bucket", "assets/")
	assert.Equal(t, "assets/textures/a.png", s.key("textures/a.png"))
}

// TestSource_Integration requires a running MinIO instance.
func TestSource_Integration(t *testing.T) {
	const bucket = "test-assetgo"

	client, err := minio.New("localhost:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := t.Context()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	data := []byte("hello asset world")
	_, err = client.PutObject(ctx, bucket, "it/textures/a.txt", bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	require.NoError(t, err)

	src := New(client, bucket, "it/")

	got, err := source.ReadFile(ctx, src, "textures/a.txt")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := src.List(ctx, "textures/")
	require.NoError(t, err)
	assert.Contains(t, names, "textures/a.txt")

	_, err = src.Open(ctx, "textures/missing.txt")
	assert.ErrorIs(t, err, source.ErrNotFound)
}
