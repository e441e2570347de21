package canvas

import (
	"bytes"
	"image/png"
	"testing"
)

func TestSetGet(t *testing.T) {
	c := New(10, 10)
	if err := c.Set(5, 5, Red); err != nil {
		t.Fatal(err)
	}
	col, ok := c.Get(5, 5)
	if !ok || col != Red {
		t.Errorf("got %v ok=%v", col, ok)
	}
}

func TestBigCanvasSetGet(t *testing.T) {
	c := New(4096, 4096)
	if err := c.Set(4095, 4095, Blue); err != nil {
		t.Fatal(err)
	}
	col, ok := c.Get(4095, 4095)
	if !ok || col != Blue {
		t.Errorf("got %v ok=%v", col, ok)
	}
}

func TestOutOfBounds(t *testing.T) {
	c := New(10, 10)
	if _, ok := c.Get(10, 10); ok {
		t.Error("get out of bounds should fail")
	}
	if err := c.Set(10, 0, Red); err != ErrOutOfBounds {
		t.Errorf("got %v", err)
	}
}

func TestPixelsOrder(t *testing.T) {
	c := New(2, 2)
	c.Set(0, 0, Red)
	c.Set(1, 0, Green)
	c.Set(0, 1, Blue)
	// (1,1) remains white

	var got []Pixel
	c.Pixels(func(p Pixel) { got = append(got, p) })
	want := []Pixel{
		{0, 0, Red},
		{1, 0, Green},
		{0, 1, Blue},
		{1, 1, White},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d pixels", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pixel %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestDiff(t *testing.T) {
	a := New(4, 4)
	b := New(4, 4)
	if !a.Diff(b).Empty() {
		t.Error("fresh canvases should not differ")
	}
	b.Set(1, 2, Magenta)
	b.Set(3, 3, Cyan)
	d := a.Diff(b)
	if len(d.Changed) != 2 {
		t.Fatalf("got %d changed pixels", len(d.Changed))
	}
	if d.Changed[0] != (Pixel{1, 2, Magenta}) || d.Changed[1] != (Pixel{3, 3, Cyan}) {
		t.Errorf("got %v", d.Changed)
	}
}

func TestSharedSnapshotIsolated(t *testing.T) {
	s := NewShared(8, 8)
	s.Set(2, 2, Red)
	snap := s.Snapshot()
	s.Set(2, 2, Blue)
	col, _ := snap.Get(2, 2)
	if col != Red {
		t.Error("snapshot should not see later writes")
	}
}

func TestEncodePNG(t *testing.T) {
	s := NewShared(16, 8)
	s.Set(0, 0, Black)
	data, err := s.EncodePNG()
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 8 {
		t.Errorf("bounds %v", img.Bounds())
	}
}
