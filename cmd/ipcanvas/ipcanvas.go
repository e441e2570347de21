package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/mustafaturan/bus/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"nuha.dev/ipcanvas/internal/broker"
	"nuha.dev/ipcanvas/internal/canvas"
	"nuha.dev/ipcanvas/internal/evbus"
	"nuha.dev/ipcanvas/internal/event"
	"nuha.dev/ipcanvas/internal/natspub"
	pingserver "nuha.dev/ipcanvas/internal/ping/server"
	"nuha.dev/ipcanvas/internal/store"
	"nuha.dev/ipcanvas/internal/store/impl/logstore"
	"nuha.dev/ipcanvas/internal/store/impl/pgstore"
	"nuha.dev/ipcanvas/internal/sub"
	"nuha.dev/ipcanvas/internal/web"
	"nuha.dev/ipcanvas/internal/web/webstream"
)

func main() {
	viper.SetDefault("ping_addr", ":7894")
	viper.SetDefault("api_addr", ":7900")
	viper.SetDefault("stream_addr", ":7901")
	viper.SetDefault("broker_addr", ":7902")
	viper.SetDefault("canvas_width", 512)
	viper.SetDefault("canvas_height", 512)
	viper.SetDefault("canvas_prefix", "2001:0db8:85a3::/48")
	viper.SetDefault("db_url", "")
	viper.SetDefault("nats_url", "")
	viper.SetDefault("admin_token_hash", "")
	viper.SetDefault("hashid_salt", "ipcanvas")
	viper.SetEnvPrefix("ipcanvas")
	viper.AutomaticEnv()

	state := canvas.NewShared(uint16(viper.GetUint("canvas_width")), uint16(viper.GetUint("canvas_height")))

	b, err := evbus.New()
	if err != nil {
		panic(err.Error())
	}

	var pixstore store.PixelStore
	var snapstore store.SnapshotStore
	if dburl := viper.GetString("db_url"); dburl != "" {
		pool, err := pgxpool.Connect(context.Background(), dburl)
		if err != nil {
			panic(err.Error())
		}
		pg := pgstore.NewStore(pool, "pixel_log", &pgstore.StoreConfig{
			BufSize:     256,
			TickerDur:   time.Second,
			MaxAgeFlush: 5 * time.Second,
		})
		pg.Run()
		pixstore = pg
		snapstore = pgstore.NewSnapshotStore(pool)
	} else {
		log.Info().Msg("no db_url configured, pixel events go to the log only")
		pixstore = logstore.NewStore()
	}

	sublist := sub.NewSublist()
	br := broker.NewBroker(&broker.BrokerConfig{Addr: viper.GetString("broker_addr"), BufSize: 64})

	var np *natspub.Publisher
	if nurl := viper.GetString("nats_url"); nurl != "" {
		np, err = natspub.Connect(nurl)
		if err != nil {
			panic(err.Error())
		}
	}

	b.RegisterHandler("canvas-state", bus.Handler{
		Matcher: "^canvas\\.",
		Handle: func(ctx context.Context, e bus.Event) {
			ev := e.Data.(event.Event)
			if err := event.Apply(state, ev); err != nil {
				log.Err(err).Msg("error applying event")
			}
		},
	})
	b.RegisterHandler("pixel-store", bus.Handler{
		Matcher: "^canvas\\.pixel$",
		Handle: func(ctx context.Context, e bus.Event) {
			pev := e.Data.(event.PlacePixel)
			pixstore.Put(pev.X, pev.Y, pev.Color, time.Now().UTC())
		},
	})
	b.RegisterHandler("stream-fanout", bus.Handler{
		Matcher: "^canvas\\.",
		Handle: func(ctx context.Context, e bus.Event) {
			ev := e.Data.(event.Event)
			sublist.Send(ev.Encode())
			br.Publish(ev)
			if np != nil {
				np.Publish(ev)
			}
		},
	})

	psrv, err := pingserver.NewServer(b, &pingserver.ServerConfig{
		ListenerAddr: viper.GetString("ping_addr"),
		CanvasPrefix: viper.GetString("canvas_prefix"),
	})
	if err != nil {
		panic(err.Error())
	}

	api := web.NewApi(state, b, snapstore, psrv, sublist, &web.ApiConfig{
		ListenAddr:     viper.GetString("api_addr"),
		AdminTokenHash: viper.GetString("admin_token_hash"),
		HashidSalt:     viper.GetString("hashid_salt"),
	})
	wstream := webstream.NewWebstream(viper.GetString("stream_addr"), state, sublist)

	go br.Run()
	go wstream.Run()
	go api.Run()
	psrv.Run()
}
