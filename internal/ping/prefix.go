package ping

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Prefix is an IPv6 prefix used to decide which destinations belong to the
// canvas. Kept as raw bytes + length so matching is a byte compare.
type Prefix struct {
	Address [16]byte
	Len     int
}

// ParsePrefix parses "addr/len" notation.
func ParsePrefix(s string) (Prefix, error) {
	p := Prefix{}
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return p, fmt.Errorf("%w: %q", ErrAddressFormat, s)
	}
	addr, err := parse16(parts[0])
	if err != nil {
		return p, err
	}
	plen, err := strconv.Atoi(parts[1])
	if err != nil || plen < 0 || plen > 128 {
		return p, fmt.Errorf("%w: bad prefix length in %q", ErrAddressFormat, s)
	}
	copy(p.Address[:], addr)
	p.Len = plen
	return p, nil
}

// Matches reports whether addr falls under the prefix.
func (p *Prefix) Matches(addr net.IP) bool {
	b := addr.To16()
	if b == nil {
		return false
	}
	full := p.Len / 8
	for i := 0; i < full; i++ {
		if b[i] != p.Address[i] {
			return false
		}
	}
	rem := p.Len - full*8
	if rem > 0 && full < 16 {
		mask := byte(0xFF << (8 - rem))
		if b[full]&mask != p.Address[full]&mask {
			return false
		}
	}
	return true
}

func (p Prefix) String() string {
	return net.IP(p.Address[:]).String() + "/" + strconv.Itoa(p.Len)
}
