package cia

import "github.com/niklasekstrom/cia/internal/logger"

// serialState is the serial port. The in* fields belong to the serial clock
// domain when the shifter is externally clocked.
type serialState struct {
	inShift uint8
	inBits  uint8
	inHeld  uint8

	cntPrev bool
	enable  bool // output mode

	outShift uint8
	outBits  uint8
	outHeld  uint8
	pending  bool // outHeld has not been loaded yet
	reload   bool // load outHeld on the next falling edge
	running  bool
	phase    bool // CNT driven low
}

func (s *serialState) shiftIn(bit bool) bool {
	s.inShift <<= 1
	if bit {
		s.inShift |= 1
	}
	s.inBits = (s.inBits + 1) & 7
	if s.inBits == 0 {
		s.inHeld = s.inShift
		return true
	}
	return false
}

// resetOutput clears the output side. Disabling output mode goes through the
// same path as reset.
func (s *serialState) resetOutput() {
	s.outShift = 0
	s.outBits = 0
	s.outHeld = 0
	s.pending = false
	s.reload = false
	s.running = false
	s.phase = false
}

func (s *serialState) sp() Level {
	return openDrain(s.enable && s.outShift&0x80 == 0)
}

func (s *serialState) cnt() Level {
	return openDrain(s.enable && s.phase)
}

// stepSerial advances the serial port one bus tick. taUnderflow is timer A's
// underflow on this tick. It reports a serial event: a byte received or a
// byte sent.
func (c *Chip) stepSerial(cur, next *state, in Inputs, acc access, taUnderflow bool) bool {
	s := cur.serial
	n := &next.serial

	h := cur.xing
	if c.clock == SharedClock {
		n.cntPrev = in.CNT
		if !s.enable && in.CNT && !s.cntPrev {
			if n.shiftIn(in.SP) {
				h = c.crossing.Raise(h)
			}
		}
	}
	h, received := c.crossing.Sample(h)
	next.xing = h

	// SP only changes together with a falling CNT, a receiver samples it on
	// the rising edge.
	var sent bool
	switch {
	case !s.enable:
	case s.running && taUnderflow && !s.phase:
		n.phase = true
		switch {
		case s.reload:
			n.outShift = s.outHeld
			n.pending = false
			n.reload = false
		case s.outBits != 0:
			n.outShift = s.outShift << 1
		}
	case s.running && taUnderflow:
		n.phase = false
		n.outBits = (s.outBits + 1) & 7
		if n.outBits == 0 {
			sent = true
			if s.pending {
				n.reload = true
			} else {
				n.running = false
			}
		}
	case !s.running && s.pending:
		n.outShift = s.outHeld
		n.outBits = 0
		n.pending = false
		n.running = true
	}

	switch {
	case acc.writes(SDR):
		if s.enable {
			n.outHeld = acc.data
			n.pending = true
		} else {
			logger.Logf("cia", "SDR write %#02x ignored in input mode", acc.data)
		}
	case acc.writes(CRA):
		n.enable = acc.data&crSPMode != 0
		if !n.enable {
			n.resetOutput()
		}
	}

	return received || sent
}

// ShiftIn clocks one bit into the serial input shifter. It is the serial
// clock domain entry point and is only used with ExternalClock; call it on
// every CNT rising edge.
func (c *Chip) ShiftIn(sp bool) {
	if c.clock != ExternalClock || c.state.serial.enable {
		return
	}
	if c.state.serial.shiftIn(sp) {
		c.state.xing = c.crossing.Raise(c.state.xing)
	}
}
