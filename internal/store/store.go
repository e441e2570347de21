package store

import (
	"time"

	"nuha.dev/ipcanvas/internal/canvas"
)

// PixelStore records applied pixel events.
type PixelStore interface {
	Put(x, y uint16, c canvas.Color, srvt time.Time)
}

// SnapshotStore persists rendered canvas snapshots.
type SnapshotStore interface {
	SaveSnapshot(data []byte, t time.Time) (int64, error)
	GetSnapshot(id int64) ([]byte, error)
}
