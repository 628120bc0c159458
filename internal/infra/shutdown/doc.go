// Package shutdown provides graceful shutdown for linekv.
//
// A Handler waits for SIGINT, SIGTERM or a programmatic Trigger, then runs
// the registered hooks in reverse registration order under one timeout.
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	err := h.Wait()
package shutdown
