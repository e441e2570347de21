package server

import (
	"errors"
	"fmt"

	"nuha.dev/ipcanvas/internal/canvas"
	"nuha.dev/ipcanvas/internal/event"
	"nuha.dev/ipcanvas/internal/ping"
)

var ErrIngestEmpty = errors.New("ingest buffer empty")
var ErrEgressFull = errors.New("egress buffer full")

// IngestFullError reports how many bytes were taken before the ingest buffer
// filled up.
type IngestFullError struct {
	Read int
}

func (e *IngestFullError) Error() string {
	return fmt.Sprintf("ingest buffer full after reading %d bytes", e.Read)
}

// Decoder turns raw bytes read from a ping connection into canvas events.
// It holds two bounded buffers: raw ingest bytes and decoded egress events.
// The caller drives it: Ingest, Progress, Egress. No io happens here.
type Decoder struct {
	ingest []byte
	egress []event.Event

	// Prefix, when set, drops events whose destination is outside the
	// canvas prefix. They still consume their 32 bytes.
	Prefix *ping.Prefix
}

func NewDecoder(ingestCapacity, egressCapacity int) *Decoder {
	if ingestCapacity <= ping.EventSize {
		panic("decoder ingest capacity must exceed one event")
	}
	if egressCapacity <= 0 {
		panic("decoder egress capacity must be positive")
	}
	return &Decoder{
		ingest: make([]byte, 0, ingestCapacity),
		egress: make([]event.Event, 0, egressCapacity),
	}
}

func NewDefaultDecoder() *Decoder {
	return NewDecoder(4096, 32)
}

// Ingest copies data into the ingest buffer up to its capacity. When the
// buffer fills mid-copy the returned IngestFullError carries how much was
// taken, the caller re-offers the rest later.
func (d *Decoder) Ingest(data []byte) error {
	avail := cap(d.ingest) - len(d.ingest)
	take := len(data)
	if take > avail {
		take = avail
	}
	d.ingest = append(d.ingest, data[:take]...)
	if take < len(data) {
		return &IngestFullError{Read: take}
	}
	return nil
}

// Progress decodes as many whole events as the buffers allow.
func (d *Decoder) Progress() error {
	if len(d.ingest) < ping.EventSize {
		return ErrIngestEmpty
	}

	offset := 0
	full := false
	var raw [ping.EventSize]byte
	for offset+ping.EventSize <= len(d.ingest) {
		if len(d.egress) >= cap(d.egress) {
			full = true
			break
		}
		copy(raw[:], d.ingest[offset:offset+ping.EventSize])
		pev := ping.ParseEvent(raw)
		if d.Prefix != nil && !d.Prefix.Matches(pev.Destination()) {
			offset += ping.EventSize
			continue
		}
		x, y, r, g, b := pev.Pixel()
		d.egress = append(d.egress, event.PlacePixel{X: x, Y: y, Color: canvas.Color{R: r, G: g, B: b}})
		offset += ping.EventSize
	}

	d.ingest = d.ingest[:copy(d.ingest, d.ingest[offset:])]

	if full {
		return ErrEgressFull
	}
	return nil
}

// Egress drains up to max decoded events.
func (d *Decoder) Egress(max int) []event.Event {
	n := len(d.egress)
	if n > max {
		n = max
	}
	out := make([]event.Event, n)
	copy(out, d.egress)
	d.egress = d.egress[:copy(d.egress, d.egress[n:])]
	return out
}

// Ready reports the number of decoded events waiting in egress.
func (d *Decoder) Ready() int {
	return len(d.egress)
}
