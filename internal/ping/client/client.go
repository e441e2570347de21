// Package client implements the sending side of the ping wire: one TCP
// connection, events written whole and in order, nothing read back.
package client

import (
	"errors"
	"fmt"
	"net"

	"nuha.dev/ipcanvas/internal/ping"
)

var ErrConnection = errors.New("unable to connect to ping service")
var ErrTransmission = errors.New("error sending ping event")

type Sender struct {
	c net.Conn
}

// Dial opens the connection to the ping service.
func Dial(addr string) (*Sender, error) {
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return &Sender{c: c}, nil
}

// Send writes one event, guarding against short writes.
func (s *Sender) Send(event []byte) error {
	if len(event) != ping.EventSize {
		return fmt.Errorf("%w: event is %d bytes", ErrTransmission, len(event))
	}
	n, err := s.c.Write(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransmission, err)
	}
	if n != len(event) {
		return fmt.Errorf("%w: short write (%d of %d bytes)", ErrTransmission, n, len(event))
	}
	return nil
}

func (s *Sender) Close() error {
	return s.c.Close()
}

// Run sends all events over a single connection, in order, and closes it on
// every exit path. No retries, no backoff.
func Run(events [][]byte, addr string) error {
	s, err := Dial(addr)
	if err != nil {
		return err
	}
	defer s.Close()
	for _, ev := range events {
		if err := s.Send(ev); err != nil {
			return err
		}
	}
	return nil
}
