//go:build linux || darwin || freebsd

package benchmark

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/linekv/internal/server/lineserver"
	"github.com/yndnr/linekv/internal/storage/memory"
	"github.com/yndnr/linekv/internal/telemetry/metric"
)

func startServer(b *testing.B) *lineserver.Server {
	b.Helper()
	cfg := lineserver.DefaultConfig()
	cfg.Address = "127.0.0.1:0"

	srv := lineserver.New(cfg, memory.New(), metric.NewRegistry(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := srv.Start(context.Background()); err != nil {
		b.Fatalf("Start() error = %v", err)
	}
	b.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func dial(b *testing.B, srv *lineserver.Server) (net.Conn, *bufio.Reader) {
	b.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		b.Fatalf("dial: %v", err)
	}
	b.Cleanup(func() { conn.Close() })
	return conn, bufio.NewReader(conn)
}

// BenchmarkServerRoundTrip measures one request and its reply at a time.
func BenchmarkServerRoundTrip(b *testing.B) {
	srv := startServer(b)
	conn, r := dial(b, srv)

	if _, err := conn.Write([]byte("PUT bench value\n")); err != nil {
		b.Fatal(err)
	}
	if _, err := r.ReadString('\n'); err != nil {
		b.Fatal(err)
	}

	req := []byte("GET bench\n")
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := conn.Write(req); err != nil {
			b.Fatal(err)
		}
		reply, err := r.ReadString('\n')
		if err != nil {
			b.Fatal(err)
		}
		if reply != "value\n" {
			b.Fatalf("reply = %q", reply)
		}
	}
}

// BenchmarkServerPipelined measures batches of requests written at once.
func BenchmarkServerPipelined(b *testing.B) {
	for _, depth := range []int{16, 128} {
		b.Run(fmt.Sprintf("depth_%d", depth), func(b *testing.B) {
			srv := startServer(b)
			conn, r := dial(b, srv)

			var sb strings.Builder
			for i := 0; i < depth; i++ {
				fmt.Fprintf(&sb, "PUT k%d v%d\n", i, i)
			}
			batch := []byte(sb.String())

			b.ResetTimer()
			b.SetBytes(int64(len(batch)))
			for i := 0; i < b.N; i++ {
				if _, err := conn.Write(batch); err != nil {
					b.Fatal(err)
				}
				for j := 0; j < depth; j++ {
					if _, err := r.ReadString('\n'); err != nil {
						b.Fatal(err)
					}
				}
			}
		})
	}
}

// BenchmarkServerConnections measures request throughput with many clients
// sharing the single event loop.
func BenchmarkServerConnections(b *testing.B) {
	for _, clients := range []int{8, 64} {
		b.Run(fmt.Sprintf("clients_%d", clients), func(b *testing.B) {
			srv := startServer(b)

			type client struct {
				conn net.Conn
				r    *bufio.Reader
			}
			cs := make([]client, clients)
			for i := range cs {
				cs[i].conn, cs[i].r = dial(b, srv)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				c := cs[i%clients]
				if _, err := c.conn.Write([]byte("PUT shared x\n")); err != nil {
					b.Fatal(err)
				}
				if _, err := c.r.ReadString('\n'); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
