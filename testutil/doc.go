// Package testutil provides testing utilities for assetgo.
//
// This package is intended for use in tests only. It provides a seeded
// generator for asset fixtures and a source wrapper that injects faults.
//
// # Fixtures
//
//	rng := testutil.NewRNG(seed)
//	png := rng.PNG(64, 32)      // encoded random image
//	data := rng.Bytes(4096)     // random bytes
//
// # Fault Injection
//
//	src := testutil.NewFaultySource(source.NewMemorySource())
//	src.AddRule("broken/", testutil.Fault{FailOnOpen: true})
package testutil
