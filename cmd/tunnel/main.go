// tunnel exposes the ping port of an ipcanvas instance running behind NAT.
// The instance dials out to this process once, authenticates with a shared
// token, and a yamux session is set up over that connection. Every ping
// client accepted on the external port is then forwarded through its own
// yamux stream.
package main

import (
	"crypto/tls"
	"flag"
	"io"
	"log"
	"net"
	"time"

	yamux "github.com/hashicorp/yamux"
)

var eaddr = flag.String("eaddr", ":7894", "address for external ping connections")
var taddr = flag.String("taddr", ":7893", "address for the tunnel connection")
var secret = flag.String("token", "token", "token for tunnel auth")
var certfile = flag.String("cert", "", "tls certificate file")
var keyfile = flag.String("key", "", "tls key file")

func main() {
	flag.Parse()
	log.Printf("using external addr %s and tunnel addr %s", *eaddr, *taddr)

	var err error
	var tln net.Listener
	if *certfile == "" && *keyfile == "" {
		log.Println("starting non-tls tunnel listener")
		tln, err = net.Listen("tcp", *taddr)
		if err != nil {
			panic(err)
		}
	} else {
		log.Println("starting tls tunnel listener")
		cert, err := tls.LoadX509KeyPair(*certfile, *keyfile)
		if err != nil {
			panic(err)
		}
		tc := &tls.Config{Certificates: []tls.Certificate{cert}}
		tln, err = tls.Listen("tcp", *taddr, tc)
		if err != nil {
			panic(err)
		}
	}

	for {
		yconn, err := tln.Accept()
		if err != nil {
			log.Print(err)
			continue
		}
		log.Printf("tunnel connection from %s", yconn.RemoteAddr())
		serveSession(yconn)
		time.Sleep(2 * time.Second)
		log.Println("waiting for next tunnel connection")
	}
}

func serveSession(yconn net.Conn) {
	token := make([]byte, 20)
	n, err := yconn.Read(token)
	if err != nil {
		log.Println(err)
		yconn.Close()
		return
	}
	if *secret != string(token[:n]) {
		_, _ = yconn.Write([]byte{'-'})
		yconn.Close()
		return
	}
	_, _ = yconn.Write([]byte{'+'})

	session, err := yamux.Server(yconn, nil)
	if err != nil {
		log.Printf("error setting up yamux session: %q", err)
		return
	}

	ln, err := net.Listen("tcp", *eaddr)
	if err != nil {
		panic(err)
	}
	defer func() {
		log.Print("closing external ping listener")
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Println(err)
			return
		}
		if session.IsClosed() {
			log.Print("session is closed, dropping connection")
			conn.Close()
			return
		}
		log.Printf("new ping client from %s", conn.RemoteAddr())
		go forward(session, conn)
	}
}

func forward(session *yamux.Session, conn net.Conn) {
	defer conn.Close()
	stream, err := session.OpenStream()
	if err != nil {
		log.Printf("error opening stream: %q", err)
		return
	}
	defer stream.Close()
	done := make(chan struct{})
	go func() {
		// the ping wire is one way, but drain the return path anyway
		_, _ = io.Copy(conn, stream)
		close(done)
	}()
	if _, err := io.Copy(stream, conn); err != nil {
		log.Printf("error forwarding stream %d: %q", stream.StreamID(), err)
	}
	stream.Close()
	<-done
}
