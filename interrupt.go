package cia

import "strings"

// Interrupt source bits in ICR.
const (
	IntTA    = 1 << 0 // timer A underflow
	IntTB    = 1 << 1 // timer B underflow
	IntAlarm = 1 << 2 // TOD alarm
	IntSP    = 1 << 3 // serial byte received or sent
	IntFlag  = 1 << 4 // FLAG falling edge

	intSources = 0x1f
	icrIR      = 1 << 7 // read: interrupt active; write: set bits
)

type interruptState struct {
	mask    uint8
	pending uint8
}

func (s *interruptState) active() bool {
	return s.pending&s.mask != 0
}

func (s *interruptState) status() uint8 {
	v := s.pending
	if s.active() {
		v |= icrIR
	}
	return v
}

// step accumulates this tick's events. A status read replaces the pending
// bits with the events of the read tick.
func (s interruptState) step(events uint8, acc access) interruptState {
	next := s
	if acc.reads(ICR) {
		next.pending = events
	} else {
		next.pending = s.pending | events
	}
	if acc.writes(ICR) {
		if acc.data&icrIR != 0 {
			next.mask = s.mask | acc.data&intSources
		} else {
			next.mask = s.mask &^ (acc.data & intSources)
		}
	}
	return next
}

// Events is a set of interrupt source bits.
type Events uint8

func (e Events) String() string {
	var s []string
	for i, n := range []string{"TA", "TB", "ALRM", "SP", "FLG"} {
		if e&(1<<i) != 0 {
			s = append(s, n)
		}
	}
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, "|")
}
