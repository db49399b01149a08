// ciasim runs register scripts against the interface adapter model.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/niklasekstrom/cia"
	"github.com/niklasekstrom/cia/internal/logger"
	"github.com/pkg/errors"
)

func main() {
	var cli struct {
		Run  runCmd  `cmd:"" help:"run a register script"`
		Regs regsCmd `cmd:"" help:"print the register map"`
	}

	ctx := kong.Parse(&cli, kong.Description("cycle level interface adapter simulator"))
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

type runCmd struct {
	Script      string `arg:"" type:"existingfile" help:"path to the script"`
	Crossing    string `default:"toggle" enum:"toggle,atomic" help:"serial input domain crossing (${enum})"`
	SerialClock string `name:"serial-clock" default:"shared" enum:"shared,external" help:"serial input clocking (${enum})"`
	Trace       bool   `help:"print every tick"`
	Log         bool   `help:"echo the chip log to stderr"`
	Color       string `default:"auto" enum:"auto,always,never" help:"colour the trace (${enum})"`
}

func (r *runCmd) Run() error {
	if r.Log {
		logger.SetEcho(os.Stderr)
	}

	x, err := cia.ParseCrossing(r.Crossing)
	if err != nil {
		return err
	}
	clock, err := cia.ParseSerialClock(r.SerialClock)
	if err != nil {
		return err
	}
	if err := cia.CheckCrossing(x, clock); err != nil {
		return err
	}

	f, err := os.Open(r.Script)
	if err != nil {
		return err
	}
	defer f.Close()
	prog, err := parse(f)
	if err != nil {
		return errors.Wrap(err, r.Script)
	}

	tr := &tracer{
		w:     os.Stdout,
		ticks: r.Trace,
		color: useColor(r.Color, os.Stdout.Fd()),
	}
	s := newSim(cia.New(cia.WithCrossing(x), cia.WithSerialClock(clock)), clock, tr)
	if err := s.exec(prog); err != nil {
		return errors.Wrap(err, r.Script)
	}
	fmt.Fprintf(os.Stdout, "%d ticks\n", s.n)
	return nil
}

type regsCmd struct{}

func (regsCmd) Run() error {
	for r := cia.PRA; r <= cia.CRB; r++ {
		fmt.Printf("%x %s\n", uint8(r), r)
	}
	return nil
}
