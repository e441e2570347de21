// Package event defines the canvas events produced by the ping server and
// the http api, and their compact downstream encoding.
package event

import (
	"encoding/binary"

	"nuha.dev/ipcanvas/internal/canvas"
)

// Bus topics.
const (
	TopicPixel = "canvas.pixel"
	TopicLabel = "canvas.label"
)

// Downstream tag bytes.
const (
	tagPixel byte = 0x00
	tagLabel byte = 0x01
)

type Event interface {
	// Encode renders the event in the downstream wire form pushed to
	// stream subscribers.
	Encode() []byte
}

// PlacePixel draws one pixel.
type PlacePixel struct {
	X     uint16
	Y     uint16
	Color canvas.Color
}

// PlaceLabel puts a short text label at a coordinate. Text is null-padded.
type PlaceLabel struct {
	X    uint16
	Y    uint16
	Text [8]byte
}

func (e PlacePixel) Encode() []byte {
	buf := make([]byte, 8)
	buf[0] = tagPixel
	binary.LittleEndian.PutUint16(buf[1:], e.X)
	binary.LittleEndian.PutUint16(buf[3:], e.Y)
	buf[5] = e.Color.R
	buf[6] = e.Color.G
	buf[7] = e.Color.B
	return buf
}

func (e PlaceLabel) Encode() []byte {
	buf := make([]byte, 13)
	buf[0] = tagLabel
	binary.LittleEndian.PutUint16(buf[1:], e.X)
	binary.LittleEndian.PutUint16(buf[3:], e.Y)
	copy(buf[5:], e.Text[:])
	return buf
}

// Apply writes the event into the shared canvas state. Out of bounds pixels
// are dropped, labels do not touch the pixel grid.
func Apply(s *canvas.Shared, e Event) error {
	switch ev := e.(type) {
	case PlacePixel:
		err := s.Set(ev.X, ev.Y, ev.Color)
		if err == canvas.ErrOutOfBounds {
			return nil
		}
		return err
	default:
		return nil
	}
}
