package cia

import (
	"testing"

	"github.com/matryer/is"
)

func TestInterruptMaskSetClear(t *testing.T) {
	is := is.New(t)
	b := newBench(t)

	b.write(ICR, 0x81)
	is.Equal(b.c.state.icr.mask, uint8(0x01))
	b.write(ICR, 0x94)
	is.Equal(b.c.state.icr.mask, uint8(0x15))
	b.write(ICR, 0x01)
	is.Equal(b.c.state.icr.mask, uint8(0x14))
	b.write(ICR, 0x7f)
	is.Equal(b.c.state.icr.mask, uint8(0x00))
}

// oneShotA sets up timer A to underflow once, n+1 ticks after the call.
func oneShotA(b *bench, n uint8) {
	b.write(CRA, crRunMode)
	b.write(TALO, n)
	b.write(TAHI, 0)
}

func TestInterruptPendingReplaceOnRead(t *testing.T) {
	is := is.New(t)
	b := newBench(t)

	oneShotA(b, 2)
	b.ticks(5)
	b.in.Flag = false
	b.tick()
	b.in.Flag = true
	b.ticks(2)

	is.Equal(b.read(ICR), uint8(IntTA|IntFlag))
	is.Equal(b.read(ICR), uint8(0))

	// an event on the read tick survives the read
	b.in.Flag = false
	is.Equal(b.read(ICR), uint8(0))
	b.in.Flag = true
	b.tick()
	is.Equal(b.read(ICR), uint8(IntFlag))
	is.Equal(b.read(ICR), uint8(0))
}

func TestInterruptStatusActiveBit(t *testing.T) {
	is := is.New(t)
	b := newBench(t)

	b.write(ICR, 0x80|IntTA)
	oneShotA(b, 2)
	b.ticks(5)
	b.in.Flag = false
	b.tick()
	b.in.Flag = true
	b.tick()

	// pending sources, plus bit 7 because timer A is unmasked
	is.Equal(b.read(ICR), uint8(icrIR|IntTA|IntFlag))

	b.write(ICR, IntTA)
	b.in.Flag = false
	b.tick()
	b.in.Flag = true
	b.tick()
	is.Equal(b.read(ICR), uint8(IntFlag)) // masked source, bit 7 clear
}

func TestInterruptOutput(t *testing.T) {
	is := is.New(t)
	b := newBench(t)

	b.write(ICR, 0x80|IntTA)
	oneShotA(b, 1)
	out := b.tick()
	is.Equal(out.IRQ, Z)
	out = b.tick()
	is.True(out.Events&IntTA != 0)
	is.Equal(out.IRQ, Z) // the pending bit is stored at the end of the tick
	is.True(b.c.IRQ())
	out = b.tick()
	is.Equal(out.IRQ, Low)

	is.Equal(b.read(ICR), uint8(icrIR|IntTA))
	out = b.tick()
	is.Equal(out.IRQ, Z)
	is.True(!b.c.IRQ())
}

func TestInterruptMaskedPendingStays(t *testing.T) {
	is := is.New(t)
	b := newBench(t)

	oneShotA(b, 0)
	b.ticks(3)
	is.True(!b.c.IRQ())

	// unmasking a stored event raises the output
	b.write(ICR, 0x80|IntTA)
	is.True(b.c.IRQ())
	is.Equal(b.read(ICR), uint8(icrIR|IntTA))
	is.True(!b.c.IRQ())
}

func TestEventsString(t *testing.T) {
	is := is.New(t)
	is.Equal(Events(0).String(), "-")
	is.Equal(Events(IntTA|IntFlag).String(), "TA|FLG")
}
