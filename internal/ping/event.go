package ping

import (
	"errors"
	"fmt"
	"net"
)

// SourceAddr is the fixed source address put in every outgoing ping event.
const SourceAddr = "2001:0db8:85a3:0000:0000:8a2e:0370:7334"

// EventSize is the wire size of one ping event: two raw IPv6 addresses,
// no framing around them.
const EventSize = 32

var ErrAddressFormat = errors.New("invalid ipv6 address literal")

// Event is one ping record as carried on the wire: the source and
// destination address of an echo request that matched the canvas prefix.
type Event struct {
	SourceAddress      [16]byte
	DestinationAddress [16]byte
}

// EncodeAddress parses both textual IPv6 addresses and returns the 32-byte
// wire form, source first.
func EncodeAddress(source, destination string) ([]byte, error) {
	src, err := parse16(source)
	if err != nil {
		return nil, err
	}
	dst, err := parse16(destination)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, EventSize)
	out = append(out, src...)
	out = append(out, dst...)
	return out, nil
}

func parse16(s string) ([]byte, error) {
	ip := net.ParseIP(s)
	if ip == nil || ip.To4() != nil {
		return nil, fmt.Errorf("%w: %q", ErrAddressFormat, s)
	}
	return ip.To16(), nil
}

// PixelAddr renders the destination address carrying a pixel draw request.
// Fields are lowercase zero-padded hex; out of range values are not clamped,
// an overlong hextet simply fails to parse later.
func PixelAddr(x, y int, r, g, b uint8) string {
	return fmt.Sprintf("2001:0db8:85a3:%04x:%04x:00%02x:00%02x:00%02x", x, y, r, g, b)
}

// EncodePixel builds the 32-byte event for drawing one pixel.
func EncodePixel(x, y int, r, g, b uint8) ([]byte, error) {
	return EncodeAddress(SourceAddr, PixelAddr(x, y, r, g, b))
}

// ParseEvent reads an event back from its wire form.
func ParseEvent(buf [EventSize]byte) Event {
	ev := Event{}
	copy(ev.SourceAddress[:], buf[:16])
	copy(ev.DestinationAddress[:], buf[16:])
	return ev
}

func (ev *Event) Bytes() []byte {
	out := make([]byte, 0, EventSize)
	out = append(out, ev.SourceAddress[:]...)
	out = append(out, ev.DestinationAddress[:]...)
	return out
}

func (ev *Event) Source() net.IP {
	return net.IP(ev.SourceAddress[:])
}

func (ev *Event) Destination() net.IP {
	return net.IP(ev.DestinationAddress[:])
}

// Pixel extracts the draw request embedded in the destination address.
// Coordinates sit in hextets 3 and 4, the color channels in the low byte of
// hextets 5, 6 and 7.
func (ev *Event) Pixel() (x, y uint16, r, g, b uint8) {
	d := ev.DestinationAddress
	x = uint16(d[6])<<8 | uint16(d[7])
	y = uint16(d[8])<<8 | uint16(d[9])
	return x, y, d[11], d[13], d[15]
}
