// Package source provides the bytes loaders read assets from.
//
// A Source opens named objects as Blobs with context-aware random access:
//
//   - MemorySource: objects held in memory
//   - LocalSource: files below a directory, memory-mapped
//   - CachingSource: block cache in front of another source
//   - ThrottledSource: reads charged against an IO rate limit
//   - minio.Source and s3.Source (subpackages): object storage
//
// Wrappers compose; a typical remote setup is
//
//	src := source.NewThrottledSource(
//	    source.NewCachingSource(s3src, blockCache, 0),
//	    controller,
//	)
//
// ReadFile and ReadHeader cover the common whole-object and prefix reads.
// Missing objects report an error matching ErrNotFound.
package source
