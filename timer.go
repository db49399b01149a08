package cia

// Control register bits. Bits 1, 2 and 5 select the port B underflow output
// and the CNT count source; those are not implemented and read as zero.
const (
	crStart   = 1 << 0
	crRunMode = 1 << 3 // one-shot
	crLoad    = 1 << 4 // force load strobe
	crSPMode  = 1 << 6 // CRA: serial port output
	crCascade = 1 << 6 // CRB: count timer A underflows
	crAlarm   = 1 << 7 // CRB: TOD writes set the alarm
)

type timerState struct {
	counter uint16
	latch   uint16

	running bool
	oneShot bool
	cascade bool // timer B only
}

type timerRegs struct {
	lo, hi, cr Register
	cascade    bool
}

var (
	timerA = timerRegs{lo: TALO, hi: TAHI, cr: CRA}
	timerB = timerRegs{lo: TBLO, hi: TBHI, cr: CRB, cascade: true}
)

func (t *timerState) control() uint8 {
	var v uint8
	if t.running {
		v |= crStart
	}
	if t.oneShot {
		v |= crRunMode
	}
	if t.cascade {
		v |= crCascade
	}
	return v
}

// step advances the timer one tick. aUnderflow is timer A's underflow on this
// same tick and only matters to a cascaded timer. It returns the next state
// and whether the timer underflowed.
func (t timerState) step(regs timerRegs, acc access, aUnderflow bool) (timerState, bool) {
	next := t

	gate := !t.cascade || aUnderflow
	underflow := t.running && gate && t.counter == 0

	if t.running && gate {
		if t.counter == 0 {
			next.counter = t.latch
			if t.oneShot {
				next.running = false
			}
		} else {
			next.counter = t.counter - 1
		}
	}

	switch {
	case acc.writes(regs.lo):
		next.latch = t.latch&0xff00 | uint16(acc.data)
	case acc.writes(regs.hi):
		next.latch = t.latch&0x00ff | uint16(acc.data)<<8
		// a running continuous timer picks the new latch up at underflow
		if !t.running || t.oneShot {
			next.counter = next.latch
			if t.oneShot {
				next.running = true
			}
		}
	case acc.writes(regs.cr):
		next.running = acc.data&crStart != 0
		next.oneShot = acc.data&crRunMode != 0
		if regs.cascade {
			next.cascade = acc.data&crCascade != 0
		}
		if acc.data&crLoad != 0 {
			next.counter = t.latch
		}
	}

	return next, underflow
}
