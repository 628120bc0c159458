package connection

import (
	"errors"
	"testing"
	"time"
)

func TestManager_LazyConnect(t *testing.T) {
	srv := newKVServer(t)
	m := NewManager(srv.addr(), time.Second)
	defer m.Disconnect()

	if m.IsConnected() {
		t.Fatal("IsConnected() = true before first request")
	}
	if m.Addr() != srv.addr() {
		t.Errorf("Addr() = %q, want %q", m.Addr(), srv.addr())
	}

	if reply, err := m.Execute("PUT k v"); err != nil || reply != "OK" {
		t.Fatalf("Execute() = %q, %v", reply, err)
	}
	if !m.IsConnected() {
		t.Error("IsConnected() = false after request")
	}
}

func TestManager_ServerErrorKeepsConnection(t *testing.T) {
	srv := newKVServer(t)
	m := NewManager(srv.addr(), time.Second)
	defer m.Disconnect()

	_, err := m.Execute("GET nothing")
	var serr *ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("Execute() error = %v, want *ServerError", err)
	}
	if !m.IsConnected() {
		t.Error("server error dropped the connection")
	}
}

func TestManager_RedialsAfterDrop(t *testing.T) {
	srv := newKVServer(t)
	m := NewManager(srv.addr(), time.Second)
	defer m.Disconnect()

	if _, err := m.Execute("PUT k v"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if _, err := m.Execute("BYE"); err == nil {
		t.Fatal("Execute(BYE) expected transport error")
	}
	if m.IsConnected() {
		t.Fatal("IsConnected() = true after transport error")
	}

	reply, err := m.Execute("GET k")
	if err != nil {
		t.Fatalf("Execute() after redial error = %v", err)
	}
	if reply != "v" {
		t.Errorf("reply = %q, want %q", reply, "v")
	}
	if srv.accepted() != 2 {
		t.Errorf("accepted = %d, want 2", srv.accepted())
	}
}

func TestManager_DialFailure(t *testing.T) {
	m := NewManager("256.0.0.1:1", 100*time.Millisecond)
	if _, err := m.Execute("GET k"); err == nil {
		t.Fatal("Execute() expected dial error")
	}
	if m.IsConnected() {
		t.Error("IsConnected() = true after failed dial")
	}
}
