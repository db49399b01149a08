package main

import (
	"fmt"
	"io"
	"os"

	"github.com/niklasekstrom/cia"
)

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// tracer prints reads and, optionally, the pins on every tick.
type tracer struct {
	w     io.Writer
	ticks bool
	color bool
}

func (t *tracer) paint(code, s string) string {
	if !t.color {
		return s
	}
	return code + s + ansiReset
}

func (t *tracer) tick(n int, in cia.Inputs, out cia.Outputs) {
	if !t.ticks {
		return
	}
	bus := "--"
	switch {
	case in.Reset:
		bus = "RES"
	case in.CS && in.Read:
		bus = fmt.Sprintf("R %-6s", cia.Register(in.Addr&0xf))
	case in.CS:
		bus = fmt.Sprintf("W %-6s %02x", cia.Register(in.Addr&0xf), in.Data)
	}
	irq := out.IRQ.String()
	if out.IRQ == cia.Low {
		irq = t.paint(ansiRed, irq)
	}
	ev := out.Events.String()
	if out.Events != 0 {
		ev = t.paint(ansiBold, ev)
	}
	fmt.Fprintf(t.w, "%6d %-16s pa=%s pb=%s pc=%s sp=%s cnt=%s irq=%s %s\n",
		n, bus, out.PortA, out.PortB, out.PC, out.SP, out.CNT, irq, ev)
}

func (t *tracer) read(r cia.Register, v uint8) {
	fmt.Fprintf(t.w, "read %-6s = %#02x\n", r, v)
}

func useColor(mode string, fd uintptr) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return os.Getenv("NO_COLOR") == "" && isTerminal(fd)
}
