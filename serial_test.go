package cia

import (
	"fmt"
	"testing"

	"github.com/matryer/is"
	"github.com/niklasekstrom/cia/internal/logger"
)

// startOutput runs timer A with latch 1, so it underflows every other tick,
// and selects serial output.
func startOutput(b *bench) {
	b.write(TALO, 1)
	b.write(TAHI, 0)
	b.write(CRA, crStart|crSPMode)
}

// receive decodes bytes from recorded SP and CNT drives, sampling SP when
// CNT is released.
func receive(outs []Outputs) []uint8 {
	var got []uint8
	var v uint8
	n := 0
	prev := Z
	for _, o := range outs {
		if prev == Low && o.CNT == Z {
			v <<= 1
			if o.SP == Z {
				v |= 1
			}
			n++
			if n == 8 {
				got = append(got, v)
				v, n = 0, 0
			}
		}
		prev = o.CNT
	}
	return got
}

func TestSerialOutputByte(t *testing.T) {
	is := is.New(t)
	b := newBench(t)

	startOutput(b)
	start := len(b.outs)
	b.write(SDR, 0xa5)
	b.ticks(40)

	is.Equal(receive(b.outs[start:]), []uint8{0xa5})
	is.Equal(b.count(start, IntSP), 1)
	is.True(!b.c.state.serial.running)
}

func TestSerialOutputTakes16Underflows(t *testing.T) {
	is := is.New(t)
	b := newBench(t)

	startOutput(b)
	b.write(SDR, 0xff)
	b.tick() // loads the shift register
	is.True(b.c.state.serial.running)

	start := len(b.outs)
	for b.count(start, IntSP) == 0 {
		b.tick()
		is.True(len(b.outs)-start < 100) // transfer never completed
	}
	is.Equal(b.count(start, IntTA), 16)
}

func TestSerialOutputQueued(t *testing.T) {
	is := is.New(t)
	b := newBench(t)

	startOutput(b)
	start := len(b.outs)
	b.write(SDR, 0x5a)
	b.ticks(6)
	is.True(b.c.state.serial.running)
	b.write(SDR, 0x3c)
	is.True(b.c.state.serial.pending)
	b.ticks(80)

	is.Equal(receive(b.outs[start:]), []uint8{0x5a, 0x3c})
	is.Equal(b.count(start, IntSP), 2)
	is.True(!b.c.state.serial.running)
}

func TestSerialDisableMidTransfer(t *testing.T) {
	is := is.New(t)
	b := newBench(t)

	// the disabling write lands while CNT is released
	startOutput(b)
	b.write(SDR, 0x81)
	b.ticks(9)
	b.write(SDR, 0x42)
	is.True(!b.c.state.serial.phase)
	s := b.c.state.serial
	is.True(s.running)
	is.True(s.pending)

	start := len(b.outs)
	b.write(CRA, crStart)

	want := s
	want.outShift = 0
	want.outBits = 0
	want.outHeld = 0
	want.pending = false
	want.reload = false
	want.running = false
	want.phase = false
	want.enable = false
	is.Equal(b.c.state.serial, want)

	out := b.tick()
	is.Equal(out.SP, Z)
	is.Equal(out.CNT, Z)

	// input mode ignores SDR writes for output
	b.write(SDR, 0x99)
	is.Equal(b.c.state.serial, want)
	b.ticks(40)
	is.Equal(b.count(start, IntSP), 0)
}

// sendBit drives SP and clocks CNT low then high.
func sendBit(b *bench, bit bool) {
	b.extSP = Low
	if bit {
		b.extSP = High
	}
	b.extCNT = Low
	b.tick()
	b.extCNT = High
	b.tick()
}

func sendByte(b *bench, v uint8) {
	for i := 7; i >= 0; i-- {
		sendBit(b, v&(1<<i) != 0)
	}
}

func TestSerialInputSharedClock(t *testing.T) {
	for _, x := range []Crossing{ToggleSync{}, AtomicFlag{}} {
		t.Run(fmt.Sprint(x), func(t *testing.T) {
			is := is.New(t)
			b := newBench(t, WithCrossing(x))

			start := len(b.outs)
			sendByte(b, 0xc3)
			b.ticks(4)
			is.Equal(b.read(SDR), uint8(0xc3))
			is.Equal(b.count(start, IntSP), 1)

			sendByte(b, 0x3c)
			b.ticks(4)
			is.Equal(b.read(SDR), uint8(0x3c))
			is.Equal(b.count(start, IntSP), 2)
		})
	}
}

func TestSerialInputExternalClock(t *testing.T) {
	is := is.New(t)
	b := newBench(t, WithSerialClock(ExternalClock))

	start := len(b.outs)
	for i := 7; i >= 0; i-- {
		b.c.ShiftIn(0x96&(1<<i) != 0)
		// the bus side CNT input is not used
		b.extCNT = Low
		b.tick()
		b.extCNT = High
		b.tick()
	}
	b.ticks(4)
	is.Equal(b.c.Peek(SDR), uint8(0x96))
	is.Equal(b.count(start, IntSP), 1)
}

func TestExternalClockKeepsSynchroniser(t *testing.T) {
	is := is.New(t)
	is.NoErr(CheckCrossing(AtomicFlag{}, SharedClock))
	is.NoErr(CheckCrossing(ToggleSync{}, ExternalClock))
	is.True(CheckCrossing(AtomicFlag{}, ExternalClock) != nil)
	is.True(CheckCrossing(&AtomicFlag{}, ExternalClock) != nil)

	logger.Clear()
	b := newBench(t, WithCrossing(AtomicFlag{}), WithSerialClock(ExternalClock))
	is.Equal(b.c.crossing, Crossing(ToggleSync{}))
	is.Equal(len(logger.Entries()), 1) // replacement is logged

	for i := 0; i < 8; i++ {
		b.c.ShiftIn(true)
	}
	is.True(b.tick().Events&IntSP == 0)
	is.True(b.tick().Events&IntSP == 0)
	is.True(b.tick().Events&IntSP != 0) // through both synchroniser stages
	is.Equal(b.read(SDR), uint8(0xff))
}

func TestSerialInputIgnoredInOutputMode(t *testing.T) {
	is := is.New(t)
	b := newBench(t, WithSerialClock(ExternalClock))

	b.write(CRA, crSPMode)
	for i := 0; i < 8; i++ {
		b.c.ShiftIn(true)
	}
	b.ticks(4)
	is.Equal(b.c.Peek(SDR), uint8(0))
	is.Equal(b.c.state.serial.inBits, uint8(0))
}

func TestCrossingLatency(t *testing.T) {
	is := is.New(t)

	var h Handshake
	var x ToggleSync
	h = x.Raise(h)
	var pulses []bool
	for i := 0; i < 5; i++ {
		var p bool
		h, p = x.Sample(h)
		pulses = append(pulses, p)
	}
	is.Equal(pulses, []bool{false, false, true, false, false})

	var a AtomicFlag
	h = a.Raise(Handshake{})
	h, p := a.Sample(h)
	is.True(p)
	_, p = a.Sample(h)
	is.True(!p)
}

func TestSerialLoopback(t *testing.T) {
	is := is.New(t)
	tx := newBench(t)
	rx := newBench(t)

	startOutput(tx)

	var got []uint8
	step := func(f func()) {
		rx.extSP, rx.extCNT = tx.c.state.serial.sp(), tx.c.state.serial.cnt()
		f()
		if rx.tick().Events&IntSP != 0 {
			got = append(got, rx.c.Peek(SDR))
		}
	}

	step(func() { tx.write(SDR, 0xe1) })
	for i := 0; i < 8; i++ {
		step(func() { tx.tick() })
	}
	step(func() { tx.write(SDR, 0x17) })
	for i := 0; i < 80; i++ {
		step(func() { tx.tick() })
	}

	is.Equal(got, []uint8{0xe1, 0x17})
	is.Equal(tx.count(0, IntSP), 2)
}
