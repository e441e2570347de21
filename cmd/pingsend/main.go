// pingsend pushes a handful of hardcoded pixel ping events to the ipcanvas
// ping service, the same way the original test script did.
package main

import (
	"fmt"
	"log"
	"net"

	"github.com/spf13/viper"

	"nuha.dev/ipcanvas/internal/ping"
	"nuha.dev/ipcanvas/internal/ping/client"
)

func main() {
	viper.SetDefault("ping_host", "127.0.0.1")
	viper.SetDefault("ping_port", "7894")
	viper.SetEnvPrefix("ipcanvas")
	viper.AutomaticEnv()

	pixels := []struct {
		x, y    int
		r, g, b uint8
	}{
		{10, 20, 255, 0, 0},
		{15, 25, 255, 255, 0},
		{30, 40, 255, 255, 255},
		{256, 256, 0, 255, 0},
	}

	events := make([][]byte, 0, len(pixels))
	for _, p := range pixels {
		ev, err := ping.EncodePixel(p.x, p.y, p.r, p.g, p.b)
		if err != nil {
			log.Fatal(err)
		}
		events = append(events, ev)
	}

	addr := net.JoinHostPort(viper.GetString("ping_host"), viper.GetString("ping_port"))
	if err := client.Run(events, addr); err != nil {
		log.Fatal(err)
	}
	fmt.Println("ping events sent")
}
