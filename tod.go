package cia

const todMask = 0xffffff

// todState is the 24 bit time of day counter.
type todState struct {
	counter uint32
	latch   uint32
	alarm   uint32

	latched  bool
	armed    bool
	running  bool
	alarmSel bool // CRB alarm bit: writes go to the alarm register
	match    bool // counter == alarm on the previous tick

	// sync[0] and sync[1] synchronise the tick input, sync[2] is the
	// previous synchronised level for edge detection.
	sync [3]bool
}

func (t *todState) read() uint32 {
	if t.latched {
		return t.latch
	}
	return t.counter
}

func (t todState) step(in Inputs, acc access) (todState, bool) {
	next := t

	next.sync[0] = in.TOD
	next.sync[1] = t.sync[0]
	next.sync[2] = t.sync[1]
	if t.running && t.sync[1] && !t.sync[2] {
		next.counter = (t.counter + 1) & todMask
	}

	if acc.writes(CRB) {
		next.alarmSel = acc.data&crAlarm != 0
	}

	switch {
	case t.alarmSel && acc.writes(TODHI):
		next.alarm = setByte(t.alarm, 2, acc.data)
	case t.alarmSel && acc.writes(TODMID):
		next.alarm = setByte(t.alarm, 1, acc.data)
	case t.alarmSel && acc.writes(TODLO):
		next.alarm = setByte(t.alarm, 0, acc.data)
		next.armed = true

	case acc.writes(TODHI):
		next.counter = setByte(next.counter, 2, acc.data)
		next.running = false
	case acc.writes(TODMID):
		if !t.running {
			next.counter = setByte(next.counter, 1, acc.data)
		}
	case acc.writes(TODLO):
		if !t.running {
			next.counter = setByte(next.counter, 0, acc.data)
			next.running = true
		}

	case !t.alarmSel && acc.reads(TODHI):
		if !t.latched {
			next.latch = t.counter
			next.latched = true
		}
	case !t.alarmSel && acc.reads(TODLO):
		next.latched = false
	}

	match := t.running && t.armed && t.counter == t.alarm
	next.match = match
	return next, match && !t.match
}

func setByte(v uint32, n uint, b uint8) uint32 {
	shift := n * 8
	return v&^(0xff<<shift) | uint32(b)<<shift
}
