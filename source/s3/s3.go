package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/assetgo/source"
)

// Client is the subset of *s3.Client the source uses.
type Client interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Options tunes whole-object downloads.
type Options struct {
	// PartSize is the size of each ranged GET. Defaults to the manager's
	// default (5 MiB).
	PartSize int64
	// Concurrency is the number of parts fetched in parallel.
	Concurrency int
}

// Source serves assets from an S3 bucket.
type Source struct {
	client     Client
	bucket     string
	prefix     string
	downloader *manager.Downloader
}

// New creates a source for bucket. rootPrefix is prepended to every name.
func New(client Client, bucket, rootPrefix string, optFns ...func(*Options)) *Source {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Source{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
		downloader: manager.NewDownloader(client, func(d *manager.Downloader) {
			if opts.PartSize > 0 {
				d.PartSize = opts.PartSize
			}
			if opts.Concurrency > 0 {
				d.Concurrency = opts.Concurrency
			}
		}),
	}
}

func (s *Source) key(name string) string {
	return path.Join(s.prefix, name)
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}

// Open heads the object and returns a range-reading blob.
func (s *Source) Open(ctx context.Context, name string) (source.Blob, error) {
	key := s.key(name)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, source.ErrNotFound
		}
		return nil, err
	}

	return &blob{
		downloader: s.downloader,
		bucket:     s.bucket,
		key:        key,
		size:       aws.ToInt64(head.ContentLength),
	}, nil
}

// List returns the sorted names below prefix, relative to the root prefix.
func (s *Source) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key(prefix)),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			if name = strings.TrimPrefix(name, "/"); name != "" {
				names = append(names, name)
			}
		}
	}

	slices.Sort(names)
	return names, nil
}

type blob struct {
	downloader *manager.Downloader
	bucket     string
	key        string
	size       int64
}

func (b *blob) Size() int64 { return b.size }

func (b *blob) Close() error { return nil }

// ReadAt fetches the range with one ranged GET, writing straight into p.
// Whole-object reads from offset 0 are split into parallel parts by the
// downloader.
func (b *blob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 || off >= b.size {
		return 0, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	end := min(off+int64(len(p)), b.size) - 1
	want := int(end - off + 1)

	in := &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	}
	if off != 0 || end != b.size-1 {
		in.Range = aws.String(fmt.Sprintf("bytes=%d-%d", off, end))
	}

	buf := manager.NewWriteAtBuffer(p[:0:want])
	n, err := b.downloader.Download(ctx, buf, in)
	if err != nil {
		return int(n), err
	}

	// The buffer only reallocates if the server sent more than asked for.
	got := copy(p, buf.Bytes())
	if got < len(p) {
		return got, io.EOF
	}
	return got, nil
}
