package cia

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Handshake carries a single-event signal from the serial clock domain into
// the bus clock domain. Req is owned by the serial side, the rest by the bus
// side.
type Handshake struct {
	Req   bool
	Sync1 bool
	Sync2 bool
	Ack   bool
}

// Crossing is the strategy used to move the serial input complete event
// across clock domains. Both methods are pure.
type Crossing interface {
	// Raise is called in the serial domain once per completed byte.
	Raise(h Handshake) Handshake

	// Sample is called once per bus tick and reports the event pulse.
	Sample(h Handshake) (Handshake, bool)
}

// ToggleSync is the two stage toggle synchroniser. The serial side toggles
// Req once per byte, the bus side passes Req through two flops and pulses
// whenever the synchronised value differs from Ack. The pulse comes out of
// the third Sample after Raise.
type ToggleSync struct{}

func (ToggleSync) Raise(h Handshake) Handshake {
	h.Req = !h.Req
	return h
}

func (ToggleSync) Sample(h Handshake) (Handshake, bool) {
	next := h
	next.Sync1 = h.Req
	next.Sync2 = h.Sync1
	pulse := h.Sync2 != h.Ack
	if pulse {
		next.Ack = h.Sync2
	}
	return next, pulse
}

func (ToggleSync) String() string { return "toggle" }

// AtomicFlag treats the event as a flag set and cleared within one clock. It
// is only valid when the serial clock is sampled by the bus clock; see
// CheckCrossing.
type AtomicFlag struct{}

func (AtomicFlag) Raise(h Handshake) Handshake {
	h.Req = true
	return h
}

func (AtomicFlag) Sample(h Handshake) (Handshake, bool) {
	pulse := h.Req
	h.Req = false
	return h, pulse
}

func (AtomicFlag) String() string { return "atomic" }

// CheckCrossing reports whether x can carry events for the serial clock
// arrangement m. An externally clocked shifter runs at its own rate, so its
// events must pass through a synchroniser.
func CheckCrossing(x Crossing, m SerialClock) error {
	switch x.(type) {
	case AtomicFlag, *AtomicFlag:
		if m == ExternalClock {
			return errors.Errorf("crossing %v needs the %v serial clock", x, SharedClock)
		}
	}
	return nil
}

// ParseCrossing returns the crossing strategy with the given name.
func ParseCrossing(s string) (Crossing, error) {
	switch strings.ToLower(s) {
	case "toggle", "":
		return ToggleSync{}, nil
	case "atomic":
		return AtomicFlag{}, nil
	}
	return nil, errors.Errorf("unknown crossing %q", s)
}

// SerialClock selects how the serial input shifter is clocked.
type SerialClock int

const (
	// SharedClock samples CNT on every bus tick and shifts on its rising
	// edge.
	SharedClock SerialClock = iota

	// ExternalClock leaves the shifter to the caller, who calls ShiftIn on
	// every CNT rising edge. Step ignores the CNT input.
	ExternalClock
)

func (m SerialClock) String() string {
	switch m {
	case SharedClock:
		return "shared"
	case ExternalClock:
		return "external"
	}
	return fmt.Sprintf("SerialClock(%d)", int(m))
}

// ParseSerialClock returns the serial clock arrangement with the given name.
func ParseSerialClock(s string) (SerialClock, error) {
	switch strings.ToLower(s) {
	case "shared", "":
		return SharedClock, nil
	case "external":
		return ExternalClock, nil
	}
	return 0, errors.Errorf("unknown serial clock %q", s)
}
