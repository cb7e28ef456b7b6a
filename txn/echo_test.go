package txn

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"gotx/util"
)

func startEcho(t *testing.T, keepOpen bool) (*EchoServer, int) {
	t.Helper()
	port, err := util.FindFreePort()
	if err != nil {
		t.Fatal(err)
	}

	srv := &EchoServer{
		Address:  fmt.Sprintf("127.0.0.1:%d", port),
		KeepOpen: keepOpen,
		Timeout:  2 * time.Second,
		Logger:   util.NewLogger(0),
	}
	return srv, port
}

func TestEchoServer_SingleShot(t *testing.T) {
	srv, port := startEcho(t, false)

	errc := make(chan error, 1)
	go func() { errc <- srv.Run(context.Background()) }()

	// Wait for the listener to come up.
	var conn net.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	payload := []byte("echo me")
	if _, err := conn.Write(payload); err != nil {
		t.Fatal(err)
	}
	conn.(*net.TCPConn).CloseWrite() //nolint:errcheck

	reply := make([]byte, 64)
	n, _ := conn.Read(reply)
	if !bytes.Equal(reply[:n], payload) {
		t.Errorf("reply = %q, want %q", reply[:n], payload)
	}

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("single-shot server did not return after first connection")
	}
}

func TestEchoServer_KeepOpen(t *testing.T) {
	srv, port := startEcho(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.Run(ctx) }()

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	for i := 0; i < 3; i++ {
		var conn net.Conn
		var err error
		for j := 0; j < 50; j++ {
			conn, err = net.Dial("tcp", addr)
			if err == nil {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}

		msg := []byte(fmt.Sprintf("round %d", i))
		conn.Write(msg)                  //nolint:errcheck
		conn.(*net.TCPConn).CloseWrite() //nolint:errcheck

		reply := make([]byte, 64)
		n, _ := conn.Read(reply)
		conn.Close()
		if !bytes.Equal(reply[:n], msg) {
			t.Errorf("round %d: reply = %q, want %q", i, reply[:n], msg)
		}
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("server did not stop on context cancel")
	}
}

func TestEchoServer_ClientRoundTrip(t *testing.T) {
	srv, port := startEcho(t, false)
	go srv.Run(context.Background()) //nolint:errcheck

	client := &Client{Logger: util.NewLogger(0)}
	buf := make([]byte, 32)

	var ok bool
	for i := 0; i < 50; i++ {
		if ok = client.Execute("127.0.0.1", port, []byte("loopback"), buf); ok {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !ok {
		t.Fatal("Execute never succeeded against echo server")
	}
	if got := util.TrimPadding(buf); string(got) != "loopback" {
		t.Errorf("reply = %q, want %q", got, "loopback")
	}
}

func TestEchoServer_BadAddress(t *testing.T) {
	srv := &EchoServer{Address: "127.0.0.1::bad", Logger: util.NewLogger(0)}
	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("Run succeeded with malformed address")
	}
}
