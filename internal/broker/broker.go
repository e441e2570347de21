// Package broker exposes the canvas event feed to raw TCP consumers. Events
// are batched in a write buffer; full or aged buffers are swapped to the read
// side and broadcast to every connected consumer.
package broker

import (
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"nuha.dev/ipcanvas/internal/event"
)

type Broker struct {
	logger zerolog.Logger
	config BrokerConfig
	ln     net.Listener
	rbuf   buffer
	wbuf   buffer
	wlock  *sync.Mutex

	cond  *sync.Cond
	rlock *sync.RWMutex
}

type BrokerConfig struct {
	Addr     string
	BufSize  int
	TimerDur time.Duration
}

type buffer struct {
	seq uint64
	t1  time.Time
	t2  time.Time
	buf net.Buffers
}

func new_buffer(seq uint64, len int) buffer {
	return buffer{seq: seq, buf: make(net.Buffers, 0, len)}
}

func NewBroker(config *BrokerConfig) *Broker {
	br := &Broker{}
	br.config = *config
	if br.config.TimerDur == 0 {
		br.config.TimerDur = 5 * time.Second
	}
	br.logger = log.With().Str("module", "event-broker").Logger()
	br.rlock = &sync.RWMutex{}
	br.cond = sync.NewCond(br.rlock.RLocker())
	br.wbuf = new_buffer(0, config.BufSize)
	br.wlock = &sync.Mutex{}
	return br
}

// Listen binds the consumer listener without accepting yet.
func (br *Broker) Listen() error {
	ln, err := net.Listen("tcp", br.config.Addr)
	if err != nil {
		br.logger.Err(err).Msg("unable to listen")
		return err
	}
	br.ln = ln
	return nil
}

// Addr returns the bound listener address, valid after Listen.
func (br *Broker) Addr() net.Addr {
	if br.ln == nil {
		return nil
	}
	return br.ln.Addr()
}

func (br *Broker) Run() {
	go br.timer_flusher()
	if br.ln == nil {
		if err := br.Listen(); err != nil {
			return
		}
	}
	for {
		conn, err := br.ln.Accept()
		if err != nil {
			br.logger.Err(err).Msg("failed to accept new connection")
			br.ln.Close()
			return
		}
		br.logger.Info().Str("remote", conn.RemoteAddr().String()).Msg("new broker consumer")
		bconn := brokerConn{br: br, c: conn, logger: br.logger}
		go bconn.handle()
	}
}

func (br *Broker) timer_flusher() {
	ticker := time.NewTicker(br.config.TimerDur)
	for t := range ticker.C {
		br.wlock.Lock()
		if len(br.wbuf.buf) != 0 && t.Sub(br.wbuf.t1) > br.config.TimerDur {
			br.flush()
		}
		br.wlock.Unlock()
	}
}

// Publish queues one canvas event for broadcast.
func (br *Broker) Publish(ev event.Event) {
	data := ev.Encode()
	br.wlock.Lock()
	if len(br.wbuf.buf) == 0 {
		br.wbuf.t1 = time.Now()
	}
	br.wbuf.buf = append(br.wbuf.buf, data)
	if len(br.wbuf.buf) == br.config.BufSize {
		br.flush()
	}
	br.wlock.Unlock()
}

// flush swaps the write buffer to the read side. The handoff is lossy: a
// flush that lands before the consumers wake overwrites the previous rbuf.
func (br *Broker) flush() {
	next := br.wbuf.seq + 1
	br.wbuf.t2 = time.Now()
	br.rlock.Lock()
	br.rbuf = br.wbuf
	br.rlock.Unlock()
	br.cond.Broadcast()
	br.wbuf = new_buffer(next, br.config.BufSize)
}

type brokerConn struct {
	br     *Broker
	c      net.Conn
	logger zerolog.Logger
}

func (bc *brokerConn) handle() {
	for {
		bc.br.cond.L.Lock()
		bc.br.cond.Wait()
		buf := bc.br.rbuf
		bc.br.cond.L.Unlock()
		// WriteTo consumes the buffers it writes from, every consumer
		// must write from its own copy of the slice
		bufs := make(net.Buffers, len(buf.buf))
		copy(bufs, buf.buf)
		_ = bc.c.SetWriteDeadline(time.Now().Add(time.Second))
		if _, err := bufs.WriteTo(bc.c); err != nil {
			bc.logger.Err(err).Msg("error writing buffer")
			bc.c.Close()
			return
		}
	}
}
