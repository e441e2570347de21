// Package webstream pushes the live canvas event feed to websocket clients.
package webstream

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"nuha.dev/ipcanvas/internal/canvas"
	"nuha.dev/ipcanvas/internal/sub"
	"nuha.dev/ipcanvas/internal/util"
)

type WebstreamServer struct {
	server  *http.Server
	logger  zerolog.Logger
	state   *canvas.Shared
	sublist *sub.Sublist
}

type hello struct {
	Ok     bool   `json:"ok"`
	Width  uint16 `json:"width"`
	Height uint16 `json:"height"`
}

func NewWebstream(addr string, state *canvas.Shared, sublist *sub.Sublist) *WebstreamServer {
	o := &WebstreamServer{state: state, sublist: sublist}
	o.server = &http.Server{
		Addr:           addr,
		Handler:        o,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	o.logger = log.With().Str("module", "webstream").Logger()
	return o
}

func (ws *WebstreamServer) Run() {
	go ws.pruner()
	err := ws.server.ListenAndServe()
	if err != nil {
		panic(err)
	}
}

func (ws *WebstreamServer) pruner() {
	ticker := time.NewTicker(20 * time.Second)
	for range ticker.C {
		ws.sublist.Prune()
	}
}

func (ws *WebstreamServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		ws.logger.Err(err).Msg("error while upgrading websocket")
		return
	}

	helloCtx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	err = wsjson.Write(helloCtx, c, hello{Ok: true, Width: ws.state.Width(), Height: ws.state.Height()})
	if err != nil {
		ws.logger.Err(err).Msg("error writing hello")
		c.Close(websocket.StatusInternalError, "hello failed")
		return
	}

	wc := newClient(ws, c)
	ws.logger.Info().Str("sid", wc.sid).Msg("new stream subscriber")
	ws.sublist.Subscribe(wc)
	wc.run()
}

// Client is one websocket subscriber. Events are buffered in a channel and
// dropped when the client cannot keep up.
type Client struct {
	srv     *WebstreamServer
	c       *websocket.Conn
	sid     string
	wch     chan []byte
	done    chan struct{}
	pushed  uint64
	skipped uint64
	closed  uint32
}

func newClient(srv *WebstreamServer, c *websocket.Conn) *Client {
	return &Client{
		srv:  srv,
		c:    c,
		sid:  util.GenUUID(),
		wch:  make(chan []byte, 64),
		done: make(chan struct{}),
	}
}

func (wc *Client) run() {
	go wc.readloop()
	for {
		select {
		case d := <-wc.wch:
			err := wc.c.Write(context.Background(), websocket.MessageBinary, d)
			if err != nil {
				wc.srv.logger.Err(err).Str("sid", wc.sid).Msg("error writing to subscriber")
				wc.close()
				return
			}
		case <-wc.done:
			return
		}
	}
}

// readloop only watches for the peer going away, clients send nothing after
// the handshake.
func (wc *Client) readloop() {
	for {
		_, _, err := wc.c.Read(context.Background())
		if err != nil {
			wc.close()
			return
		}
	}
}

func (wc *Client) close() {
	if atomic.CompareAndSwapUint32(&wc.closed, 0, 1) {
		wc.c.Close(websocket.StatusNormalClosure, "")
		close(wc.done)
	}
}

func (wc *Client) Push(d []byte) error {
	if wc.Closed() {
		return nil
	}
	select {
	case wc.wch <- d:
		atomic.AddUint64(&wc.pushed, 1)
	default:
		atomic.AddUint64(&wc.skipped, 1)
	}
	return nil
}

func (wc *Client) Closed() bool {
	return atomic.LoadUint32(&wc.closed) == 1
}

func (wc *Client) Name() string {
	return wc.sid
}
