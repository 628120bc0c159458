package benchmark

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/yndnr/linekv/internal/storage/memory"
)

// KeyCounts defines the store sizes for benchmarking.
var KeyCounts = []int{1000, 10000, 100000}

func benchKey(i int) string {
	return fmt.Sprintf("key-%08d", i)
}

// prefillStore puts count keys into store and returns them.
func prefillStore(store *memory.Store, count int) []string {
	keys := make([]string, count)
	for i := range keys {
		keys[i] = benchKey(i)
		store.Put(keys[i], "value")
	}
	return keys
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with various store sizes.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
