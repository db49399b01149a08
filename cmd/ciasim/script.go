package main

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/niklasekstrom/cia"
	"github.com/pkg/errors"
)

// A script is one command per line:
//
//	write <reg> <byte>         bus write
//	read <reg> [<byte>]        bus read, optionally checked
//	tick [<n>]                 idle bus ticks
//	set pa|pb <byte> [<mask>]  drive port pins from outside, mask defaults to 0xff
//	set flag|tod|sp|cnt 0|1|z  drive or release an input line
//	pulse tod|flag|cnt [<n>]   clock an input line n times
//	irq 0|1                    check the interrupt output, 1 is asserted
//	reset                      assert reset for one tick
//
// Registers are names (PRA, TALO, ...) or hex addresses. Numbers use Go
// literal syntax. Everything after # is a comment.
type command struct {
	line int
	op   string
	reg  cia.Register
	pin  string
	val  uint8
	mask uint8
	n    int

	check bool
	level cia.Level
}

func parse(r io.Reader) ([]command, error) {
	var prog []command
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		f := strings.Fields(text)
		if len(f) == 0 {
			continue
		}
		c, err := parseCommand(f)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		c.line = line
		prog = append(prog, c)
	}
	return prog, sc.Err()
}

func parseCommand(f []string) (command, error) {
	c := command{op: strings.ToLower(f[0]), n: 1, mask: 0xff}
	args := f[1:]
	var err error

	switch c.op {
	case "write":
		if len(args) != 2 {
			return c, errors.New("write needs a register and a value")
		}
		if c.reg, err = cia.ParseRegister(args[0]); err != nil {
			return c, err
		}
		c.val, err = parseByte(args[1])
	case "read":
		if len(args) < 1 || len(args) > 2 {
			return c, errors.New("read needs a register and an optional value")
		}
		if c.reg, err = cia.ParseRegister(args[0]); err != nil {
			return c, err
		}
		if len(args) == 2 {
			c.check = true
			c.val, err = parseByte(args[1])
		}
	case "tick":
		if len(args) > 1 {
			return c, errors.New("tick takes an optional count")
		}
		if len(args) == 1 {
			c.n, err = parseCount(args[0])
		}
	case "set":
		if len(args) < 2 {
			return c, errors.New("set needs a pin and a value")
		}
		c.pin = strings.ToLower(args[0])
		switch c.pin {
		case "pa", "pb":
			if len(args) > 3 {
				return c, errors.New("too many arguments")
			}
			if c.val, err = parseByte(args[1]); err != nil {
				return c, err
			}
			if len(args) == 3 {
				c.mask, err = parseByte(args[2])
			}
		case "flag", "tod", "sp", "cnt":
			if len(args) != 2 {
				return c, errors.New("too many arguments")
			}
			c.level, err = parseLevel(args[1])
		default:
			return c, errors.Errorf("unknown pin %q", c.pin)
		}
	case "pulse":
		if len(args) < 1 || len(args) > 2 {
			return c, errors.New("pulse needs a line and an optional count")
		}
		c.pin = strings.ToLower(args[0])
		switch c.pin {
		case "tod", "flag", "cnt":
		default:
			return c, errors.Errorf("cannot pulse %q", c.pin)
		}
		if len(args) == 2 {
			c.n, err = parseCount(args[1])
		}
	case "irq":
		if len(args) != 1 {
			return c, errors.New("irq needs 0 or 1")
		}
		c.level, err = parseLevel(args[0])
		if c.level == cia.Z {
			err = errors.New("irq needs 0 or 1")
		}
	case "reset":
		if len(args) != 0 {
			return c, errors.New("reset takes no arguments")
		}
	default:
		return c, errors.Errorf("unknown command %q", f[0])
	}
	return c, err
}

func parseByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, errors.Errorf("bad byte %q", s)
	}
	return uint8(v), nil
}

func parseCount(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, errors.Errorf("bad count %q", s)
	}
	return v, nil
}

func parseLevel(s string) (cia.Level, error) {
	switch strings.ToLower(s) {
	case "0":
		return cia.Low, nil
	case "1":
		return cia.High, nil
	case "z":
		return cia.Z, nil
	}
	return cia.Z, errors.Errorf("bad level %q", s)
}
