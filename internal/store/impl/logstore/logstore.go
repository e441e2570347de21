package logstore

import (
	"time"

	"github.com/rs/zerolog/log"

	"nuha.dev/ipcanvas/internal/canvas"
)

// LogStore is the no-database fallback, it just logs every pixel.
type LogStore struct {
}

func NewStore() *LogStore {
	return &LogStore{}
}

func (l *LogStore) Put(x, y uint16, c canvas.Color, srvt time.Time) {
	log.Debug().Uint16("x", x).Uint16("y", y).
		Uint8("r", c.R).Uint8("g", c.G).Uint8("b", c.B).
		Time("server_time", srvt).Msg("pixel")
}
