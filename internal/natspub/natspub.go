// Package natspub mirrors the canvas event feed to a NATS subject so other
// services can follow the canvas without talking to this process.
package natspub

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"nuha.dev/ipcanvas/internal/canvas"
	"nuha.dev/ipcanvas/internal/event"
)

const SubjectPixel = "ipcanvas.pixel"
const SubjectLabel = "ipcanvas.label"

type Publisher struct {
	nc     *nats.Conn
	logger zerolog.Logger
}

func Connect(url string) (*Publisher, error) {
	nc, err := nats.Connect(url, nats.Name("ipcanvas"))
	if err != nil {
		return nil, err
	}
	p := &Publisher{nc: nc}
	p.logger = log.With().Str("module", "natspub").Logger()
	return p, nil
}

type pixelMsg struct {
	X     uint16       `json:"x"`
	Y     uint16       `json:"y"`
	Color canvas.Color `json:"color"`
}

type labelMsg struct {
	X    uint16 `json:"x"`
	Y    uint16 `json:"y"`
	Text string `json:"text"`
}

// Publish forwards one canvas event. Publish failures are logged, the feed
// is best effort.
func (p *Publisher) Publish(e event.Event) {
	var subject string
	var msg interface{}
	switch ev := e.(type) {
	case event.PlacePixel:
		subject = SubjectPixel
		msg = pixelMsg{X: ev.X, Y: ev.Y, Color: ev.Color}
	case event.PlaceLabel:
		subject = SubjectLabel
		n := 0
		for n < len(ev.Text) && ev.Text[n] != 0 {
			n++
		}
		msg = labelMsg{X: ev.X, Y: ev.Y, Text: string(ev.Text[:n])}
	default:
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Err(err).Msg("error encoding event")
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Err(err).Msg("error publishing event")
	}
}

func (p *Publisher) Close() {
	p.nc.Close()
}
