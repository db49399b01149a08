package cia

// portState holds ports A and B (index 0 and 1) and the handshake lines.
type portState struct {
	data [2]uint8
	ddr  [2]uint8

	pcPulse  bool // PC is driven low this tick
	flagPrev bool // FLAG level sampled on the previous tick
}

func (p *portState) pins(i int) Byte {
	return Byte{Value: p.data[i] & p.ddr[i], Drive: p.ddr[i]}
}

func (p *portState) read(i int, ext uint8) uint8 {
	return (p.data[i] & p.ddr[i]) | (ext &^ p.ddr[i])
}

func (p portState) step(in Inputs, acc access) (portState, bool) {
	next := p
	switch {
	case acc.writes(PRA):
		next.data[0] = acc.data
	case acc.writes(PRB):
		next.data[1] = acc.data
	case acc.writes(DDRA):
		next.ddr[0] = acc.data
	case acc.writes(DDRB):
		next.ddr[1] = acc.data
	}

	// PC goes low on the tick after a port B write, for one tick
	next.pcPulse = acc.writes(PRB)

	next.flagPrev = in.Flag
	return next, p.flagPrev && !in.Flag
}
