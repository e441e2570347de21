package server

import (
	"errors"
	"testing"

	"nuha.dev/ipcanvas/internal/canvas"
	"nuha.dev/ipcanvas/internal/event"
	"nuha.dev/ipcanvas/internal/ping"
)

func TestIngestDoesNotExceedCapacity(t *testing.T) {
	d := NewDecoder(64, 16)
	data := make([]byte, 100)

	err := d.Ingest(data)
	var full *IngestFullError
	if !errors.As(err, &full) {
		t.Fatalf("expected IngestFullError, got %v", err)
	}
	if full.Read != 64 {
		t.Errorf("read %d", full.Read)
	}

	// buffer already full, nothing more fits
	err = d.Ingest(data[:10])
	if !errors.As(err, &full) {
		t.Fatalf("expected IngestFullError, got %v", err)
	}
	if full.Read != 0 {
		t.Errorf("read %d", full.Read)
	}
}

func TestIngestPartialFill(t *testing.T) {
	d := NewDecoder(50, 16)
	data := make([]byte, 30)

	if err := d.Ingest(data); err != nil {
		t.Fatal(err)
	}
	err := d.Ingest(data)
	var full *IngestFullError
	if !errors.As(err, &full) {
		t.Fatalf("expected IngestFullError, got %v", err)
	}
	if full.Read != 20 {
		t.Errorf("read %d", full.Read)
	}
}

func TestProgressNeedsWholeEvent(t *testing.T) {
	d := NewDecoder(64, 16)
	if err := d.Ingest(make([]byte, 20)); err != nil {
		t.Fatal(err)
	}
	if err := d.Progress(); err != ErrIngestEmpty {
		t.Errorf("got %v", err)
	}
}

func TestProgressEgressFull(t *testing.T) {
	d := NewDecoder(128, 2)
	if err := d.Ingest(make([]byte, 96)); err != nil {
		t.Fatal(err)
	}
	if err := d.Progress(); err != ErrEgressFull {
		t.Errorf("got %v", err)
	}
	if d.Ready() != 2 {
		t.Errorf("ready %d", d.Ready())
	}
	// one whole event must remain buffered
	d.Egress(2)
	if err := d.Progress(); err != nil {
		t.Fatal(err)
	}
	if d.Ready() != 1 {
		t.Errorf("ready %d", d.Ready())
	}
}

func TestEgressPartial(t *testing.T) {
	d := NewDecoder(128, 4)
	if err := d.Ingest(make([]byte, 96)); err != nil {
		t.Fatal(err)
	}
	if err := d.Progress(); err != nil {
		t.Fatal(err)
	}
	if got := d.Egress(2); len(got) != 2 {
		t.Errorf("egressed %d", len(got))
	}
	if got := d.Egress(2); len(got) != 1 {
		t.Errorf("egressed %d", len(got))
	}
	if got := d.Egress(2); len(got) != 0 {
		t.Errorf("egressed %d", len(got))
	}
}

func TestDecodesPixelEvents(t *testing.T) {
	d := NewDecoder(128, 4)

	red, _ := ping.EncodePixel(10, 0, 255, 0, 0)
	blue, _ := ping.EncodePixel(20, 10, 0, 0, 255)
	white, _ := ping.EncodePixel(256, 256, 255, 255, 255)

	buf := append(append(append([]byte{}, red...), blue...), white...)
	if err := d.Ingest(buf); err != nil {
		t.Fatal(err)
	}
	if err := d.Progress(); err != nil {
		t.Fatal(err)
	}
	got := d.Egress(3)
	want := []event.Event{
		event.PlacePixel{X: 10, Y: 0, Color: canvas.Red},
		event.PlacePixel{X: 20, Y: 10, Color: canvas.Blue},
		event.PlacePixel{X: 256, Y: 256, Color: canvas.White},
	}
	if len(got) != len(want) {
		t.Fatalf("egressed %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestPrefixFilterDropsForeignPings(t *testing.T) {
	d := NewDecoder(128, 4)
	p, err := ping.ParsePrefix("2001:0db8:85a3::/48")
	if err != nil {
		t.Fatal(err)
	}
	d.Prefix = &p

	inPrefix, _ := ping.EncodePixel(1, 2, 3, 4, 5)
	foreign, _ := ping.EncodeAddress(ping.SourceAddr, "2001:0db9::1")

	if err := d.Ingest(append(append([]byte{}, foreign...), inPrefix...)); err != nil {
		t.Fatal(err)
	}
	if err := d.Progress(); err != nil {
		t.Fatal(err)
	}
	got := d.Egress(4)
	if len(got) != 1 {
		t.Fatalf("egressed %d", len(got))
	}
	if got[0] != (event.PlacePixel{X: 1, Y: 2, Color: canvas.Color{R: 3, G: 4, B: 5}}) {
		t.Errorf("got %v", got[0])
	}
}
