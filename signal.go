package cia

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrContention is returned when more than one side drives a shared line.
var ErrContention = errors.New("bus contention")

// Level is the state of a single pin as seen by one driver.
type Level uint8

const (
	Z    Level = iota // released, high impedance
	Low               // driven low
	High              // driven high
)

func (l Level) String() string {
	switch l {
	case Z:
		return "Z"
	case Low:
		return "0"
	case High:
		return "1"
	}
	return fmt.Sprintf("Level(%d)", uint8(l))
}

// Bool reports the logic value of a driven level. Z reads as the pull level.
func (l Level) Bool(pull bool) bool {
	switch l {
	case Low:
		return false
	case High:
		return true
	}
	return pull
}

func openDrain(asserted bool) Level {
	if asserted {
		return Low
	}
	return Z
}

// Resolve returns the logic value of a line shared by drivers. An undriven
// line reads as pull. At most one driver may be active.
func Resolve(pull bool, drivers ...Level) (bool, error) {
	v := pull
	n := 0
	for _, d := range drivers {
		if d == Z {
			continue
		}
		n++
		v = d == High
	}
	if n > 1 {
		return false, errors.Wrapf(ErrContention, "%d drivers", n)
	}
	return v, nil
}

// Byte is an 8 bit tri-state value. Bits clear in Drive are released.
type Byte struct {
	Value uint8
	Drive uint8
}

// Released is a Byte that drives nothing.
var Released = Byte{}

func (b Byte) String() string {
	s := make([]byte, 8)
	for i := 0; i < 8; i++ {
		m := uint8(0x80) >> i
		switch {
		case b.Drive&m == 0:
			s[i] = 'Z'
		case b.Value&m != 0:
			s[i] = '1'
		default:
			s[i] = '0'
		}
	}
	return string(s)
}

// ResolveByte resolves eight independent lines. Undriven bits take their
// value from pull.
func ResolveByte(pull uint8, drivers ...Byte) (uint8, error) {
	var driven uint8
	v := pull
	for _, d := range drivers {
		if clash := driven & d.Drive; clash != 0 {
			return 0, errors.Wrapf(ErrContention, "bits %08b", clash)
		}
		driven |= d.Drive
		v = (v &^ d.Drive) | (d.Value & d.Drive)
	}
	return v, nil
}
