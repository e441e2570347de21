package canvas

// Diff lists the pixels that changed between two canvas states.
type Diff struct {
	Changed []Pixel
}

func (d *Diff) Empty() bool {
	return len(d.Changed) == 0
}

// Diff compares c against other and returns other's value for every cell
// that differs. Cells outside other's bounds are skipped.
func (c *Canvas) Diff(other *Canvas) *Diff {
	d := &Diff{}
	for y := uint16(0); y < c.height; y++ {
		for x := uint16(0); x < c.width; x++ {
			self, _ := c.Get(x, y)
			oc, ok := other.Get(x, y)
			if !ok {
				continue
			}
			if self != oc {
				d.Changed = append(d.Changed, Pixel{X: x, Y: y, Color: oc})
			}
		}
	}
	return d
}
