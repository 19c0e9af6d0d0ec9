// Package resource holds the budgets shared by an asset manager.
//
// A Controller governs three resources:
//
//	┌─────────────────┬──────────────────┬──────────────────────┐
//	│  Memory budget  │  Worker slots    │  IO rate limit       │
//	│  (fail-fast)    │  (semaphore)     │  (token bucket)      │
//	├─────────────────┼──────────────────┼──────────────────────┤
//	│  AcquireMemory  │  AcquireWorker   │  AcquireIO           │
//	│  TryAcquire...  │  TryAcquireWorker│  RateLimitedReader   │
//	│  ReleaseMemory  │  ReleaseWorker   │  RateLimitedReaderAt │
//	└─────────────────┴──────────────────┴──────────────────────┘
//
// Block caches reserve memory for cached source bytes and give up on caching
// rather than wait. The task pool takes one worker slot per running task.
// Source reads are throttled by the IO limiter:
//
//	rc := resource.NewController(resource.Config{
//	    MaxWorkers:         4,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//
//	r := resource.NewRateLimitedReader(ctx, f, rc)
//
// All methods are safe for concurrent use and treat a nil *Controller as
// "no limits".
package resource
