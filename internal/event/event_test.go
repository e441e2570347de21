package event

import (
	"bytes"
	"testing"

	"nuha.dev/ipcanvas/internal/canvas"
)

func TestEncodePixel(t *testing.T) {
	e := PlacePixel{X: 0x0102, Y: 0x0304, Color: canvas.Color{R: 10, G: 20, B: 30}}
	got := e.Encode()
	want := []byte{0x00, 0x02, 0x01, 0x04, 0x03, 10, 20, 30}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestEncodeLabel(t *testing.T) {
	e := PlaceLabel{X: 1, Y: 2}
	copy(e.Text[:], "hi")
	got := e.Encode()
	want := []byte{0x01, 1, 0, 2, 0, 'h', 'i', 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestApply(t *testing.T) {
	s := canvas.NewShared(4, 4)
	if err := Apply(s, PlacePixel{X: 1, Y: 1, Color: canvas.Red}); err != nil {
		t.Fatal(err)
	}
	col, _ := s.Get(1, 1)
	if col != canvas.Red {
		t.Errorf("got %v", col)
	}

	// out of bounds pixels are dropped, not an error
	if err := Apply(s, PlacePixel{X: 100, Y: 100, Color: canvas.Red}); err != nil {
		t.Fatal(err)
	}

	// labels do not touch the grid
	if err := Apply(s, PlaceLabel{X: 1, Y: 1}); err != nil {
		t.Fatal(err)
	}
	col, _ = s.Get(1, 1)
	if col != canvas.Red {
		t.Errorf("got %v", col)
	}
}
