// Package benchmark provides performance benchmarks for linekv.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Run the end-to-end benchmarks only:
//
//	go test -bench=BenchmarkServer -benchmem -benchtime=10s ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
