package benchmark

import (
	"testing"

	"github.com/yndnr/linekv/internal/server/lineserver"
)

func BenchmarkParse(b *testing.B) {
	lines := []struct {
		name string
		line []byte
	}{
		{"get", []byte("GET user:42")},
		{"put", []byte("PUT user:42 0123456789abcdef")},
		{"malformed", []byte("DELETE user:42")},
		{"padded", []byte("   PUT \t user:42   value  ")},
	}

	for _, tt := range lines {
		b.Run(tt.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(tt.line)))
			for i := 0; i < b.N; i++ {
				_ = lineserver.Parse(tt.line)
			}
		})
	}
}
