package cia

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/niklasekstrom/cia/internal/logger"
	"github.com/pkg/errors"
)

// Register is a 4 bit register select address.
//
// Reading ICR returns the pending interrupt sources in bits 4..0 with bit 7
// set when any of them is unmasked (the IRQ output is asserted), and clears
// them. Writing ICR sets the mask bits given in bits 4..0 when bit 7 is set,
// and clears them otherwise.
type Register uint8

const (
	PRA    Register = 0x0 // port A data
	PRB    Register = 0x1 // port B data
	DDRA   Register = 0x2 // port A direction
	DDRB   Register = 0x3 // port B direction
	TALO   Register = 0x4 // timer A low byte
	TAHI   Register = 0x5 // timer A high byte
	TBLO   Register = 0x6 // timer B low byte
	TBHI   Register = 0x7 // timer B high byte
	TODLO  Register = 0x8 // time of day bits 7..0
	TODMID Register = 0x9 // time of day bits 15..8
	TODHI  Register = 0xa // time of day bits 23..16
	UNUSED Register = 0xb // reads as zero
	SDR    Register = 0xc // serial data
	ICR    Register = 0xd // interrupt status (read), mask (write)
	CRA    Register = 0xe // control A
	CRB    Register = 0xf // control B
)

var registerNames = [16]string{
	"PRA", "PRB", "DDRA", "DDRB",
	"TALO", "TAHI", "TBLO", "TBHI",
	"TODLO", "TODMID", "TODHI", "UNUSED",
	"SDR", "ICR", "CRA", "CRB",
}

func (r Register) String() string {
	if r > 0xf {
		return fmt.Sprintf("Register(%#x)", uint8(r))
	}
	return registerNames[r]
}

// ParseRegister accepts a register name (case insensitive) or a hex address.
func ParseRegister(s string) (Register, error) {
	for i, n := range registerNames {
		if strings.EqualFold(s, n) {
			return Register(i), nil
		}
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 8)
	if err != nil || v > 0xf {
		return 0, errors.Errorf("unknown register %q", s)
	}
	return Register(v), nil
}

type access struct {
	read, write bool
	reg         Register
	data        uint8
}

func decode(in Inputs) access {
	return access{
		read:  in.CS && in.Read,
		write: in.CS && !in.Read,
		reg:   Register(in.Addr & 0xf),
		data:  in.Data,
	}
}

func (a access) writes(r Register) bool { return a.write && a.reg == r }

func (a access) reads(r Register) bool { return a.read && a.reg == r }

// readback multiplexes the addressed unit onto the data output. It is a
// function of current state only; read side effects are applied by the units.
func (s *state) readback(r Register, pins [2]uint8) uint8 {
	switch r {
	case PRA:
		return s.port.read(0, pins[0])
	case PRB:
		return s.port.read(1, pins[1])
	case DDRA:
		return s.port.ddr[0]
	case DDRB:
		return s.port.ddr[1]
	case TALO:
		return uint8(s.timer[0].counter)
	case TAHI:
		return uint8(s.timer[0].counter >> 8)
	case TBLO:
		return uint8(s.timer[1].counter)
	case TBHI:
		return uint8(s.timer[1].counter >> 8)
	case TODLO:
		return uint8(s.tod.read())
	case TODMID:
		return uint8(s.tod.read() >> 8)
	case TODHI:
		return uint8(s.tod.read() >> 16)
	case SDR:
		return s.serial.inHeld
	case ICR:
		return s.icr.status()
	case CRA:
		v := s.timer[0].control()
		if s.serial.enable {
			v |= crSPMode
		}
		return v
	case CRB:
		v := s.timer[1].control()
		if s.tod.alarmSel {
			v |= crAlarm
		}
		return v
	default:
		return 0
	}
}

func logWrite(acc access) {
	if acc.writes(UNUSED) {
		logger.Logf("cia", "write %#02x to unused register %s ignored", acc.data, acc.reg)
	}
}
