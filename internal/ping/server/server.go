package server

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/mustafaturan/bus/v3"
	"github.com/phuslu/log"
	proxyproto "github.com/pires/go-proxyproto"

	"nuha.dev/ipcanvas/internal/conn"
	"nuha.dev/ipcanvas/internal/evbus"
	"nuha.dev/ipcanvas/internal/ping"
)

const (
	NEW_CONNECTION    string = "new_connection"
	CONNECTION_CLOSED string = "connection_closed"
)

type ServerConfig struct {
	ListenerAddr string
	// CanvasPrefix limits accepted destinations, empty means accept all.
	CanvasPrefix string
}

// Server accepts raw ping connections and pushes the decoded canvas events
// onto the bus.
type Server struct {
	mu          sync.Mutex
	log         log.Logger
	config      *ServerConfig
	bus         *bus.Bus
	prefix      *ping.Prefix
	listener    net.Listener
	cid_counter uint64

	conns  uint64
	events uint64
}

func NewServer(b *bus.Bus, config *ServerConfig) (*Server, error) {
	s := &Server{}
	s.log = log.DefaultLogger
	s.log.Context = log.NewContext(nil).Str("module", "ping-server").Value()
	s.config = config
	s.bus = b
	if config.CanvasPrefix != "" {
		p, err := ping.ParsePrefix(config.CanvasPrefix)
		if err != nil {
			return nil, err
		}
		s.prefix = &p
	}
	return s, nil
}

// Stats reports accepted connections and decoded events so far.
func (s *Server) Stats() (conns, events uint64) {
	return atomic.LoadUint64(&s.conns), atomic.LoadUint64(&s.events)
}

// Addr returns the bound listener address, valid after Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Listen binds the listener without accepting yet.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.config.ListenerAddr)
	if err != nil {
		s.log.Error().Err(err).Msg("unable to listen")
		return err
	}
	s.mu.Lock()
	s.listener = &proxyproto.Listener{Listener: ln}
	s.mu.Unlock()
	return nil
}

func (s *Server) Run() {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		if err := s.Listen(); err != nil {
			return
		}
		s.mu.Lock()
		ln = s.listener
		s.mu.Unlock()
	}
	s.log.Info().Msgf("starting ping-server on %s", s.config.ListenerAddr)
	for {
		_c, err := ln.Accept()
		if err != nil {
			s.log.Error().Err(err).Msg("failed to accept new connection")
			ln.Close()
			return
		}
		c := conn.NewConn(_c, atomic.AddUint64(&s.cid_counter, 1))
		atomic.AddUint64(&s.conns, 1)
		s.log.Info().Str("event", NEW_CONNECTION).EmbedObject(c).Msg("")
		go s.handle(c)
	}
}

func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
}

// handle drives one connection: read, ingest, decode, emit. The wire has no
// framing beyond the fixed event size, partial events stay buffered in the
// decoder until the rest arrives.
func (s *Server) handle(c *conn.Conn) {
	defer func() {
		c.Close()
		s.log.Info().Str("event", CONNECTION_CLOSED).EmbedObject(c).Msg("")
	}()

	dec := NewDefaultDecoder()
	dec.Prefix = s.prefix
	buf := make([]byte, 4096)
	for {
		n, err := c.Read(buf)
		if err != nil {
			if n == 0 {
				return
			}
		}
		pending := buf[:n]
		for len(pending) > 0 {
			ierr := dec.Ingest(pending)
			if full, ok := ierr.(*IngestFullError); ok {
				pending = pending[full.Read:]
			} else {
				pending = nil
			}
			s.drain(c, dec)
		}
		if err != nil {
			return
		}
	}
}

func (s *Server) drain(c *conn.Conn, dec *Decoder) {
	for {
		perr := dec.Progress()
		for _, ev := range dec.Egress(32) {
			atomic.AddUint64(&s.events, 1)
			err := evbus.Emit(context.Background(), s.bus, ev)
			if err != nil {
				s.log.Error().Err(err).EmbedObject(c).Msg("error emitting event")
			}
		}
		if perr == ErrEgressFull {
			continue
		}
		return
	}
}
