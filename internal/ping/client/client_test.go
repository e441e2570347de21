package client

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"nuha.dev/ipcanvas/internal/ping"
)

func mustPixel(t *testing.T, x, y int, r, g, b uint8) []byte {
	t.Helper()
	ev, err := ping.EncodePixel(x, y, r, g, b)
	if err != nil {
		t.Fatal(err)
	}
	return ev
}

func TestRunDeliversInOrder(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	events := [][]byte{
		mustPixel(t, 10, 20, 255, 0, 0),
		mustPixel(t, 15, 25, 255, 255, 0),
		mustPixel(t, 30, 40, 255, 255, 255),
		mustPixel(t, 256, 256, 0, 255, 0),
	}

	recvd := make(chan [][]byte, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		var got [][]byte
		for {
			buf := make([]byte, ping.EventSize)
			_, err := io.ReadFull(c, buf)
			if err != nil {
				break
			}
			got = append(got, buf)
		}
		recvd <- got
	}()

	if err := Run(events, ln.Addr().String()); err != nil {
		t.Fatal(err)
	}

	got := <-recvd
	if len(got) != 4 {
		t.Fatalf("received %d messages", len(got))
	}
	for i := range events {
		if !bytes.Equal(got[i], events[i]) {
			t.Errorf("message %d mismatch", i)
		}
	}
}

func TestDialNoListener(t *testing.T) {
	// grab a port and close it again so nothing is listening there
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	err = Run([][]byte{mustPixel(t, 0, 0, 0, 0, 0)}, addr)
	if !errors.Is(err, ErrConnection) {
		t.Errorf("expected ErrConnection, got %v", err)
	}
	if errors.Is(err, ErrTransmission) {
		t.Error("connect failure must not surface as transmission error")
	}
}

func TestSendRejectsWrongSize(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		c, err := ln.Accept()
		if err == nil {
			defer c.Close()
			io.Copy(io.Discard, c)
		}
	}()

	s, err := Dial(ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Send([]byte{1, 2, 3}); !errors.Is(err, ErrTransmission) {
		t.Errorf("expected ErrTransmission, got %v", err)
	}
}

func TestSendBrokenPipe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	s, err := Dial(ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	c := <-accepted
	c.Close()

	ev := mustPixel(t, 1, 1, 1, 1, 1)
	// the first write may still land in the kernel buffer, keep writing
	// until the reset surfaces
	var serr error
	for i := 0; i < 200; i++ {
		if serr = s.Send(ev); serr != nil {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if !errors.Is(serr, ErrTransmission) {
		t.Errorf("expected ErrTransmission, got %v", serr)
	}
}
