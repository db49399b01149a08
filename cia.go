// Package cia models a complex interface adapter at the register and clock
// tick level: two 8 bit ports with handshake lines, two interval timers, a
// 24 bit time of day counter with alarm, a serial port and a five source
// interrupt controller.
//
// A Chip is advanced one bus clock at a time with Step. Every unit computes
// its next state from a copy of the current state and the whole chip is
// committed at the end of the tick, so units see each other's same-tick
// pulses without ordering hazards.
package cia

import "github.com/niklasekstrom/cia/internal/logger"

// Inputs are the pin levels presented to the chip for one bus tick.
type Inputs struct {
	Reset bool // RES asserted

	CS   bool  // chip selected (the pin is active low)
	Read bool  // R/W high
	Addr uint8 // register select, low 4 bits used
	Data uint8 // data bus during a write

	PortA uint8 // external levels on the port A pins
	PortB uint8 // external levels on the port B pins

	Flag bool // FLAG line level
	TOD  bool // time of day tick input
	SP   bool // serial data line level
	CNT  bool // serial clock line level
}

// Outputs are the chip's pin drives during one bus tick.
type Outputs struct {
	Data  Byte
	PortA Byte
	PortB Byte

	PC  Level
	SP  Level
	CNT Level
	IRQ Level

	// Events holds the interrupt sources that fired this tick.
	Events Events
}

// state is the whole register state of the chip.
type state struct {
	port   portState
	timer  [2]timerState
	tod    todState
	serial serialState
	icr    interruptState
	xing   Handshake
}

func resetState() state {
	var s state
	// FLAG and CNT are pulled up
	s.port.flagPrev = true
	s.serial.cntPrev = true
	return s
}

// Chip is one interface adapter.
type Chip struct {
	state state

	crossing Crossing
	clock    SerialClock

	// port pin levels seen on the last tick, used by Peek
	pins [2]uint8
}

// Option configures a Chip.
type Option func(*Chip)

// WithCrossing sets the strategy that carries the serial input complete
// event into the bus clock domain. The default is ToggleSync. New replaces a
// crossing that CheckCrossing rejects with ToggleSync.
func WithCrossing(x Crossing) Option {
	return func(c *Chip) {
		c.crossing = x
	}
}

// WithSerialClock sets how the serial input shifter is clocked. The default
// is SharedClock.
func WithSerialClock(m SerialClock) Option {
	return func(c *Chip) {
		c.clock = m
	}
}

// New returns a chip in its reset state.
func New(opts ...Option) *Chip {
	c := &Chip{
		crossing: ToggleSync{},
		clock:    SharedClock,
		state:    resetState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := CheckCrossing(c.crossing, c.clock); err != nil {
		logger.Logf("cia", "%v, using %v", err, ToggleSync{})
		c.crossing = ToggleSync{}
	}
	return c
}

// Reset forces every register to its reset value. It may be called at any
// point between ticks.
func (c *Chip) Reset() {
	logger.Log("cia", "reset")
	c.state = resetState()
}

// Step advances the chip one bus clock and returns the pin drives for the
// tick. The data bus is driven only during a qualified read.
func (c *Chip) Step(in Inputs) Outputs {
	if in.Reset {
		c.Reset()
		return Outputs{}
	}

	cur := c.state
	next := cur
	acc := decode(in)
	c.pins = [2]uint8{in.PortA, in.PortB}

	out := cur.drives()
	if acc.read {
		out.Data = Byte{Value: cur.readback(acc.reg, c.pins), Drive: 0xff}
	}
	logWrite(acc)

	var events uint8
	var flag, ta, tb, alarm, sp bool

	next.port, flag = cur.port.step(in, acc)
	next.timer[0], ta = cur.timer[0].step(timerA, acc, false)
	next.timer[1], tb = cur.timer[1].step(timerB, acc, ta)
	next.tod, alarm = cur.tod.step(in, acc)
	sp = c.stepSerial(&cur, &next, in, acc, ta)

	if ta {
		events |= IntTA
	}
	if tb {
		events |= IntTB
	}
	if alarm {
		events |= IntAlarm
	}
	if sp {
		events |= IntSP
	}
	if flag {
		events |= IntFlag
	}
	next.icr = cur.icr.step(events, acc)
	out.Events = Events(events)

	c.state = next
	return out
}

func (s *state) drives() Outputs {
	return Outputs{
		PortA: s.port.pins(0),
		PortB: s.port.pins(1),
		PC:    openDrain(s.port.pcPulse),
		SP:    s.serial.sp(),
		CNT:   s.serial.cnt(),
		IRQ:   openDrain(s.icr.active()),
	}
}

// Drives returns the pin drives the chip presents on the next tick, before
// any bus access. A harness uses it to resolve shared lines ahead of Step.
func (c *Chip) Drives() Outputs {
	return c.state.drives()
}

// Peek returns what a read of r would return now, without side effects.
func (c *Chip) Peek(r Register) uint8 {
	return c.state.readback(r&0xf, c.pins)
}

// IRQ reports whether the interrupt output is asserted.
func (c *Chip) IRQ() bool {
	return c.state.icr.active()
}
