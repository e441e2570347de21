package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/mustafaturan/bus/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	hashids "github.com/speps/go-hashids/v2"

	"nuha.dev/ipcanvas/internal/canvas"
	"nuha.dev/ipcanvas/internal/evbus"
	"nuha.dev/ipcanvas/internal/event"
	"nuha.dev/ipcanvas/internal/store"
	"nuha.dev/ipcanvas/internal/sub"
	"nuha.dev/ipcanvas/internal/util"
)

type ApiConfig struct {
	ListenAddr string
	// AdminTokenHash is the bcrypt hash mutating routes are checked
	// against. Empty disables mutation over http.
	AdminTokenHash string
	HashidSalt     string
}

// PingStats is implemented by the ping server.
type PingStats interface {
	Stats() (conns, events uint64)
}

type Api struct {
	r        chi.Router
	s        *http.Server
	config   *ApiConfig
	log      zerolog.Logger
	validate *validator.Validate
	hid      *hashids.HashID

	state     *canvas.Shared
	bus       *bus.Bus
	snapshots store.SnapshotStore
	pstats    PingStats
	sublist   *sub.Sublist
}

func NewApi(state *canvas.Shared, b *bus.Bus, snapshots store.SnapshotStore, pstats PingStats, sublist *sub.Sublist, config *ApiConfig) *Api {
	api := &Api{config: config}
	api.log = log.With().Str("module", "api").Logger()
	api.state = state
	api.bus = b
	api.snapshots = snapshots
	api.pstats = pstats
	api.sublist = sublist
	api.validate = validator.New()

	hd := hashids.NewData()
	hd.Salt = config.HashidSalt
	hd.MinLength = 6
	hid, err := hashids.NewWithData(hd)
	if err != nil {
		panic(err)
	}
	api.hid = hid

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Admin-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/canvas", api.getCanvas)
	r.Get("/canvas.png", api.getCanvasPNG)
	r.Get("/pixel/{x}/{y}", api.getPixel)
	r.Get("/status", api.getStatus)
	r.Get("/snapshot/{id}", api.getSnapshot)
	r.With(api.admin_verify).Post("/pixel", api.placePixel)
	r.With(api.admin_verify).Post("/label", api.placeLabel)
	r.With(api.admin_verify).Post("/snapshot", api.saveSnapshot)

	api.r = r
	api.s = &http.Server{
		Addr:           config.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	return api
}

func (api *Api) Run() {
	err := api.s.ListenAndServe()
	if err != nil {
		panic(err)
	}
}

// Handler exposes the router for tests.
func (api *Api) Handler() http.Handler {
	return api.r
}

func (api *Api) admin_verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Admin-Token")
		if api.config.AdminTokenHash == "" || !util.CheckPwd(api.config.AdminTokenHash, token) {
			api.log.Debug().Msg("rejected admin token")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type canvasMeta struct {
	Width  uint16 `json:"width"`
	Height uint16 `json:"height"`
}

func (api *Api) getCanvas(w http.ResponseWriter, r *http.Request) {
	util.JsonWrite(w, canvasMeta{Width: api.state.Width(), Height: api.state.Height()})
}

func (api *Api) getCanvasPNG(w http.ResponseWriter, r *http.Request) {
	data, err := api.state.EncodePNG()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

func (api *Api) getPixel(w http.ResponseWriter, r *http.Request) {
	x, err1 := strconv.ParseUint(chi.URLParam(r, "x"), 10, 16)
	y, err2 := strconv.ParseUint(chi.URLParam(r, "y"), 10, 16)
	if err1 != nil || err2 != nil {
		http.Error(w, "bad coordinate", http.StatusBadRequest)
		return
	}
	col, ok := api.state.Get(uint16(x), uint16(y))
	if !ok {
		http.Error(w, "out of bounds", http.StatusNotFound)
		return
	}
	util.JsonWrite(w, canvas.Pixel{X: uint16(x), Y: uint16(y), Color: col})
}

type statusResponse struct {
	PingConnections uint64 `json:"ping_connections"`
	PingEvents      uint64 `json:"ping_events"`
	Subscribers     int    `json:"subscribers"`
}

func (api *Api) getStatus(w http.ResponseWriter, r *http.Request) {
	res := statusResponse{}
	if api.pstats != nil {
		res.PingConnections, res.PingEvents = api.pstats.Stats()
	}
	res.Subscribers = api.sublist.Len()
	util.JsonWrite(w, res)
}

type placePixelRequest struct {
	X uint16 `json:"x"`
	Y uint16 `json:"y"`
	R uint8  `json:"r"`
	G uint8  `json:"g"`
	B uint8  `json:"b"`
}

func (api *Api) placePixel(w http.ResponseWriter, r *http.Request) {
	req := placePixelRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.X >= api.state.Width() || req.Y >= api.state.Height() {
		http.Error(w, "out of bounds", http.StatusBadRequest)
		return
	}
	ev := event.PlacePixel{X: req.X, Y: req.Y, Color: canvas.Color{R: req.R, G: req.G, B: req.B}}
	if err := evbus.Emit(context.Background(), api.bus, ev); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	util.JsonWrite(w, map[string]bool{"ok": true})
}

type placeLabelRequest struct {
	X    uint16 `json:"x"`
	Y    uint16 `json:"y"`
	Text string `json:"text" validate:"required,max=8"`
}

func (api *Api) placeLabel(w http.ResponseWriter, r *http.Request) {
	req := placeLabelRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := api.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ev := event.PlaceLabel{X: req.X, Y: req.Y}
	copy(ev.Text[:], req.Text)
	if err := evbus.Emit(context.Background(), api.bus, ev); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	util.JsonWrite(w, map[string]bool{"ok": true})
}

func (api *Api) saveSnapshot(w http.ResponseWriter, r *http.Request) {
	if api.snapshots == nil {
		http.Error(w, "snapshot store not configured", http.StatusServiceUnavailable)
		return
	}
	data, err := api.state.EncodePNG()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	id, err := api.snapshots.SaveSnapshot(data, time.Now().UTC())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sid, err := api.hid.EncodeInt64([]int64{id})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	util.JsonWrite(w, map[string]string{"id": sid})
}

func (api *Api) getSnapshot(w http.ResponseWriter, r *http.Request) {
	if api.snapshots == nil {
		http.Error(w, "snapshot store not configured", http.StatusServiceUnavailable)
		return
	}
	ids, err := api.hid.DecodeInt64WithError(chi.URLParam(r, "id"))
	if err != nil || len(ids) != 1 {
		http.Error(w, "bad snapshot id", http.StatusBadRequest)
		return
	}
	data, err := api.snapshots.GetSnapshot(ids[0])
	if err != nil {
		http.Error(w, "snapshot not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}
