// Package sub fans encoded canvas events out to stream subscribers.
package sub

import (
	"sync"
)

type Subscriber interface {
	Push(data []byte) error
	Closed() bool
	Name() string
}

type subflag struct {
	sub Subscriber
	err error
}

// Sublist is a pruned slice of subscribers. Send records per-subscriber
// errors, Prune compacts the slice by pulling live subscribers from the tail
// over dead slots.
type Sublist struct {
	list []subflag
	mu   sync.Mutex
}

func NewSublist() *Sublist {
	o := &Sublist{}
	o.list = make([]subflag, 0, 20)
	return o
}

func (s *Sublist) Subscribe(sub Subscriber) {
	s.mu.Lock()
	s.list = append(s.list, subflag{sub: sub})
	s.mu.Unlock()
}

func (s *Sublist) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}

func (s *Sublist) Send(d []byte) {
	s.mu.Lock()
	for i := range s.list {
		s.list[i].err = s.list[i].sub.Push(d)
	}
	s.mu.Unlock()
}

func (s *Sublist) Prune() {
	s.mu.Lock()
	defer s.mu.Unlock()
	olen := len(s.list)
	tail := olen - 1
look_bad:
	for i := 0; i < olen; i++ {
		if s.list[i].err != nil || s.list[i].sub.Closed() { //index i is bad
			//look for replacement from the tail
			for j := tail; j > i; j-- {
				if s.list[j].err == nil && !s.list[j].sub.Closed() {
					s.list[i] = s.list[j] //j is good index, replace i with j
					if i+1 == j {
						//i and j adjacent, nothing more to iterate
						s.list = s.list[:i+1]
						return
					}
					tail = j - 1
					continue look_bad
				}
			}
			//found no replacement, trim to i because i is last bad index
			s.list = s.list[:i]
			return
		} else if i == tail { //index i is not bad, and happens to be the tail
			s.list = s.list[:i+1]
			return
		}
	}
}
