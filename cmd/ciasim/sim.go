package main

import (
	"github.com/niklasekstrom/cia"
	"github.com/pkg/errors"
)

// sim runs a script against one chip. Everything outside the chip is modelled
// as external drivers on the shared lines.
type sim struct {
	chip  *cia.Chip
	clock cia.SerialClock
	tr    *tracer

	extA, extB cia.Byte
	extFlag    cia.Level
	extSP      cia.Level
	extCNT     cia.Level
	tod        cia.Level
	n          int
}

func newSim(chip *cia.Chip, clock cia.SerialClock, tr *tracer) *sim {
	return &sim{chip: chip, clock: clock, tr: tr}
}

// cycle resolves every shared line against the chip's drives and advances
// the chip one tick.
func (s *sim) cycle(in cia.Inputs) (cia.Outputs, error) {
	drv := s.chip.Drives()

	var err error
	if in.PortA, err = cia.ResolveByte(0xff, drv.PortA, s.extA); err != nil {
		return cia.Outputs{}, errors.Wrapf(err, "tick %d: port A", s.n)
	}
	if in.PortB, err = cia.ResolveByte(0xff, drv.PortB, s.extB); err != nil {
		return cia.Outputs{}, errors.Wrapf(err, "tick %d: port B", s.n)
	}
	if in.SP, err = cia.Resolve(true, drv.SP, s.extSP); err != nil {
		return cia.Outputs{}, errors.Wrapf(err, "tick %d: SP", s.n)
	}
	if in.CNT, err = cia.Resolve(true, drv.CNT, s.extCNT); err != nil {
		return cia.Outputs{}, errors.Wrapf(err, "tick %d: CNT", s.n)
	}
	in.Flag = s.extFlag.Bool(true)
	in.TOD = s.tod.Bool(false)

	var host cia.Byte
	if in.CS && !in.Read {
		host = cia.Byte{Value: in.Data, Drive: 0xff}
	}

	out := s.chip.Step(in)
	if _, err := cia.ResolveByte(0xff, host, out.Data); err != nil {
		return out, errors.Wrapf(err, "tick %d: data bus", s.n)
	}

	s.tr.tick(s.n, in, out)
	s.n++
	return out, nil
}

func (s *sim) idle(n int) error {
	for i := 0; i < n; i++ {
		if _, err := s.cycle(cia.Inputs{}); err != nil {
			return err
		}
	}
	return nil
}

func (s *sim) exec(prog []command) error {
	for _, c := range prog {
		if err := s.do(c); err != nil {
			return errors.Wrapf(err, "line %d", c.line)
		}
	}
	return nil
}

func (s *sim) do(c command) error {
	switch c.op {
	case "write":
		_, err := s.cycle(cia.Inputs{CS: true, Addr: uint8(c.reg), Data: c.val})
		return err

	case "read":
		out, err := s.cycle(cia.Inputs{CS: true, Read: true, Addr: uint8(c.reg)})
		if err != nil {
			return err
		}
		s.tr.read(c.reg, out.Data.Value)
		if c.check && out.Data.Value != c.val {
			return errors.Errorf("read %s = %#02x, want %#02x", c.reg, out.Data.Value, c.val)
		}
		return nil

	case "tick":
		return s.idle(c.n)

	case "set":
		switch c.pin {
		case "pa":
			s.extA = cia.Byte{Value: c.val, Drive: c.mask}
		case "pb":
			s.extB = cia.Byte{Value: c.val, Drive: c.mask}
		case "flag":
			s.extFlag = c.level
		case "tod":
			s.tod = c.level
		case "sp":
			s.extSP = c.level
		case "cnt":
			s.extCNT = c.level
		}
		return nil

	case "pulse":
		for i := 0; i < c.n; i++ {
			if err := s.pulse(c.pin); err != nil {
				return err
			}
		}
		return nil

	case "irq":
		if got, want := s.chip.IRQ(), c.level == cia.High; got != want {
			return errors.Errorf("irq asserted %v, want %v", got, want)
		}
		return nil

	case "reset":
		_, err := s.cycle(cia.Inputs{Reset: true})
		return err
	}
	return errors.Errorf("unknown command %q", c.op)
}

func (s *sim) pulse(pin string) error {
	switch pin {
	case "tod":
		// long enough to pass the synchroniser
		s.tod = cia.High
		if err := s.idle(3); err != nil {
			return err
		}
		s.tod = cia.Low
		return s.idle(3)

	case "flag":
		s.extFlag = cia.Low
		if err := s.idle(1); err != nil {
			return err
		}
		s.extFlag = cia.Z
		return s.idle(1)

	case "cnt":
		if s.clock == cia.ExternalClock {
			drv := s.chip.Drives()
			sp, err := cia.Resolve(true, drv.SP, s.extSP)
			if err != nil {
				return errors.Wrap(err, "SP")
			}
			s.chip.ShiftIn(sp)
			return s.idle(2)
		}
		s.extCNT = cia.Low
		if err := s.idle(1); err != nil {
			return err
		}
		s.extCNT = cia.Z
		return s.idle(1)
	}
	return errors.Errorf("cannot pulse %q", pin)
}
