// Package cpu implements the Sharp LR35902 fetch-decode-execute core:
// register file, stack, interrupt pipeline, HALT, and dispatch over the
// data-driven direct/CB-prefixed opcode tables built in opcodes.go. There
// is no per-opcode switch; the tables carry the per-opcode differences as
// data and dispatch matches on the family tag alone.
package cpu

import (
	"fmt"

	"gbcore/internal/addr"
	"gbcore/internal/alu"
	"gbcore/internal/bitutil"
	"gbcore/internal/bus"
	"gbcore/internal/gberr"
	"gbcore/internal/memory"
)

const cbPrefix = 0xCB

// CPU holds the full architectural register state plus the scheduling
// fields the cooperative step loop needs (idle_time, write_listener).
// IE and IF are deliberately not duplicated here: both live in
// memory-mapped storage (IE inside HighRAM, IF inside the registers
// component), and the bus is their single source of truth — cpu reads
// them through bus.Read so they can never drift out of sync with a
// peripheral's own view of the same byte.
type CPU struct {
	A, F, B, C, D, E, H, L byte
	SP, PC                 uint16

	IME    bool
	Halted bool

	idleTime      int
	writeListener uint16

	HighRAM *memory.Component
	bus     *bus.Bus
}

// New constructs a CPU wired to b. Call Plug before running it.
func New(b *bus.Bus) *CPU {
	return &CPU{bus: b}
}

// Plug allocates and maps the CPU's high-RAM component (0xFF80..0xFFFF,
// which includes the IE register as its final byte) onto the bus.
func (c *CPU) Plug() error {
	hram, err := memory.Create(int(addr.HighRAMEnd-addr.HighRAMStart) + 1)
	if err != nil {
		return err
	}
	c.HighRAM = hram
	return c.bus.Plug(c.HighRAM, addr.HighRAMStart, addr.HighRAMEnd)
}

// WriteListener returns the address of this step's most recent store, or 0
// if there was none. A single-slot mailbox, not a queue.
func (c *CPU) WriteListener() uint16 { return c.writeListener }

// RequestInterrupt sets bit i of IF via a bus write so that any listener
// watching REG_IF observes the address.
func (c *CPU) RequestInterrupt(bit uint) error {
	cur := c.bus.Read(addr.RegIF)
	return c.writeAt(addr.RegIF, bitutil.BitSet(cur, int(bit)))
}

func (c *CPU) readAt(a uint16) byte { return c.bus.Read(a) }

func (c *CPU) read16At(a uint16) (uint16, error) { return c.bus.Read16(a) }

func (c *CPU) writeAt(a uint16, v byte) error {
	if err := c.bus.Write(a, v); err != nil {
		return err
	}
	c.writeListener = a
	return nil
}

func (c *CPU) write16At(a uint16, v uint16) error {
	if err := c.bus.Write16(a, v); err != nil {
		return err
	}
	c.writeListener = a
	return nil
}

func (c *CPU) readDataAfterOpcode() byte            { return c.readAt(c.PC + 1) }
func (c *CPU) readAddrAfterOpcode() (uint16, error) { return c.read16At(c.PC + 1) }

func (c *CPU) push16(v uint16) error {
	c.SP -= 2
	return c.write16At(c.SP, v)
}

func (c *CPU) pop16() (uint16, error) {
	v, err := c.read16At(c.SP)
	if err != nil {
		return 0, err
	}
	c.SP += 2
	return v, nil
}

// Tick advances the CPU by one emulated step: reset the write listener,
// burn one idle cycle if mid-instruction, otherwise run the
// interrupt-or-fetch logic, then consume one more idle cycle so the
// instruction's remaining cycles-1 are paid off by subsequent ticks.
func (c *CPU) Tick() error {
	c.writeListener = 0
	if c.idleTime > 0 {
		c.idleTime--
		return nil
	}
	if err := c.fetchOrInterrupt(); err != nil {
		return err
	}
	if c.idleTime > 0 {
		c.idleTime--
	}
	return nil
}

func (c *CPU) fetchOrInterrupt() error {
	ie := c.readAt(addr.RegIE)
	ifReg := c.readAt(addr.RegIF)
	pending := ie & ifReg

	if c.IME && pending != 0 {
		c.Halted = false
		c.IME = false
		bit := lowestSetBit(pending)
		if err := c.writeAt(addr.RegIF, bitutil.BitUnset(ifReg, bit)); err != nil {
			return err
		}
		if err := c.push16(c.PC); err != nil {
			return err
		}
		c.PC = addr.VectorFor(uint(bit))
		c.idleTime += 5
		return nil
	}
	if c.Halted {
		if pending != 0 {
			c.Halted = false
		}
		return nil
	}
	return c.fetchAndDispatch()
}

func lowestSetBit(v byte) int {
	for i := 0; i < 8; i++ {
		if v&(1<<uint(i)) != 0 {
			return i
		}
	}
	return 0
}

func (c *CPU) fetchAndDispatch() error {
	opcode := c.readAt(c.PC)
	var e opEntry
	if opcode == cbPrefix {
		e = cbTable[c.readAt(c.PC+1)]
	} else {
		e = direct[opcode]
	}
	return c.dispatch(e)
}

func (c *CPU) carryIn() byte {
	if c.F&alu.FlagC != 0 {
		return 1
	}
	return 0
}

func (c *CPU) ccHolds(cc int) bool {
	switch cc {
	case 0:
		return c.F&alu.FlagZ == 0
	case 1:
		return c.F&alu.FlagZ != 0
	case 2:
		return c.F&alu.FlagC == 0
	case 3:
		return c.F&alu.FlagC != 0
	}
	return false
}

func (c *CPU) regOrHL(k regKind) (byte, error) {
	if k == regHLIndirect {
		return c.readAt(c.getPair(pairHL)), nil
	}
	return c.regGet(k), nil
}

func (c *CPU) setRegOrHL(k regKind, v byte) error {
	if k == regHLIndirect {
		return c.writeAt(c.getPair(pairHL), v)
	}
	c.regSet(k, v)
	return nil
}

func sext8(v byte) int16 { return int16(int8(v)) }

// dispatch is the single family match; every opcode difference lives in
// the table entry, not in a per-opcode case here.
func (c *CPU) dispatch(e opEntry) error {
	advance := e.bytes
	switch e.fam {
	case famErr:
		return fmt.Errorf("%w: opcode %#02x", gberr.ErrInstr, c.readAt(c.PC))

	case famNop, famStop:
		// no-op beyond PC advance

	case famHalt:
		c.Halted = true

	case famEDI:
		c.IME = e.alt

	case famLdRR:
		v, err := c.regOrHL(e.reg2)
		if err != nil {
			return err
		}
		if err := c.setRegOrHL(e.reg, v); err != nil {
			return err
		}

	case famLdRImm:
		v := c.readDataAfterOpcode()
		if err := c.setRegOrHL(e.reg, v); err != nil {
			return err
		}

	case famLdR16Imm:
		v, err := c.readAddrAfterOpcode()
		if err != nil {
			return err
		}
		c.setPair(e.pair, v)

	case famLdR16AddrA:
		hl := c.getPair(pairHL)
		var target uint16
		switch e.ldAddrMode {
		case 0:
			target = c.getPair(pairBC)
		case 1:
			target = c.getPair(pairDE)
		default:
			target = hl
		}
		if e.toA {
			c.A = c.readAt(target)
		} else if err := c.writeAt(target, c.A); err != nil {
			return err
		}
		switch e.ldAddrMode {
		case 2:
			c.setPair(pairHL, hl+1)
		case 3:
			c.setPair(pairHL, hl-1)
		}

	case famLdA16A:
		target, err := c.readAddrAfterOpcode()
		if err != nil {
			return err
		}
		if e.toA {
			c.A = c.readAt(target)
		} else if err := c.writeAt(target, c.A); err != nil {
			return err
		}

	case famLdhA8A:
		target := 0xFF00 + uint16(c.readDataAfterOpcode())
		if e.toA {
			c.A = c.readAt(target)
		} else if err := c.writeAt(target, c.A); err != nil {
			return err
		}

	case famLdhCA:
		target := 0xFF00 + uint16(c.C)
		if e.toA {
			c.A = c.readAt(target)
		} else if err := c.writeAt(target, c.A); err != nil {
			return err
		}

	case famLdA16SP:
		target, err := c.readAddrAfterOpcode()
		if err != nil {
			return err
		}
		if err := c.write16At(target, c.SP); err != nil {
			return err
		}

	case famLdSPHL:
		c.SP = c.getPair(pairHL)

	case famLdHLSPs8:
		s8 := c.readDataAfterOpcode()
		r := alu.Add16Low(c.SP, uint16(sext8(s8)))
		c.setPair(pairHL, r.Value)
		c.F = r.Flags &^ (alu.FlagZ | alu.FlagN)

	case famAddSPs8:
		s8 := c.readDataAfterOpcode()
		r := alu.Add16Low(c.SP, uint16(sext8(s8)))
		c.SP = r.Value
		c.F = r.Flags &^ (alu.FlagZ | alu.FlagN)

	case famIncR8:
		v, err := c.regOrHL(e.reg)
		if err != nil {
			return err
		}
		r := alu.Add8(v, 1, 0)
		r.Flags = (r.Flags &^ alu.FlagC) | (c.F & alu.FlagC)
		c.F = r.Flags
		if err := c.setRegOrHL(e.reg, byte(r.Value)); err != nil {
			return err
		}

	case famDecR8:
		v, err := c.regOrHL(e.reg)
		if err != nil {
			return err
		}
		r := alu.Sub8(v, 1, 0)
		r.Flags = (r.Flags &^ alu.FlagC) | (c.F & alu.FlagC)
		c.F = r.Flags
		if err := c.setRegOrHL(e.reg, byte(r.Value)); err != nil {
			return err
		}

	case famIncR16:
		c.setPair(e.pair, c.getPair(e.pair)+1)

	case famDecR16:
		c.setPair(e.pair, c.getPair(e.pair)-1)

	case famAddHLR16:
		r := alu.Add16High(c.getPair(pairHL), c.getPair(e.pair))
		c.setPair(pairHL, r.Value)
		c.F = r.Flags

	case famAluRR:
		v, err := c.regOrHL(e.reg)
		if err != nil {
			return err
		}
		c.doAlu(e.alu, v)

	case famAluImm:
		c.doAlu(e.alu, c.readDataAfterOpcode())

	case famRotA:
		r := c.doRot(e.rot, c.A)
		r.Flags &^= alu.FlagZ
		c.A = byte(r.Value)
		c.F = r.Flags

	case famDAA:
		c.daa()

	case famCPL:
		c.A = ^c.A
		c.F |= alu.FlagH | alu.FlagN

	case famSCCF:
		if e.alt {
			c.F = (c.F & alu.FlagZ) | ((c.F ^ alu.FlagC) & alu.FlagC)
		} else {
			c.F = (c.F & alu.FlagZ) | alu.FlagC
		}

	case famPush:
		if err := c.push16(c.getPair(e.pair)); err != nil {
			return err
		}

	case famPop:
		v, err := c.pop16()
		if err != nil {
			return err
		}
		c.setPair(e.pair, v)

	case famJP:
		target, err := c.readAddrAfterOpcode()
		if err != nil {
			return err
		}
		c.PC = target
		advance = 0

	case famJPHL:
		c.PC = c.getPair(pairHL)
		advance = 0

	case famJPCond:
		target, err := c.readAddrAfterOpcode()
		if err != nil {
			return err
		}
		if c.ccHolds(e.cc) {
			c.PC = target
			c.idleTime += e.xtra
			advance = 0
		}

	case famJR:
		off := sext8(c.readDataAfterOpcode())
		c.PC = uint16(int32(c.PC) + int32(e.bytes) + int32(off))
		advance = 0

	case famJRCond:
		off := sext8(c.readDataAfterOpcode())
		if c.ccHolds(e.cc) {
			c.PC = uint16(int32(c.PC) + int32(e.bytes) + int32(off))
			c.idleTime += e.xtra
			advance = 0
		}

	case famCall:
		target, err := c.readAddrAfterOpcode()
		if err != nil {
			return err
		}
		if err := c.push16(c.PC + uint16(e.bytes)); err != nil {
			return err
		}
		c.PC = target
		advance = 0

	case famCallCond:
		target, err := c.readAddrAfterOpcode()
		if err != nil {
			return err
		}
		if c.ccHolds(e.cc) {
			if err := c.push16(c.PC + uint16(e.bytes)); err != nil {
				return err
			}
			c.PC = target
			c.idleTime += e.xtra
			advance = 0
		}

	case famRet:
		target, err := c.pop16()
		if err != nil {
			return err
		}
		c.PC = target
		advance = 0

	case famRetCond:
		if c.ccHolds(e.cc) {
			target, err := c.pop16()
			if err != nil {
				return err
			}
			c.PC = target
			c.idleTime += e.xtra
			advance = 0
		}

	case famReti:
		target, err := c.pop16()
		if err != nil {
			return err
		}
		c.PC = target
		c.IME = true
		advance = 0

	case famRst:
		if err := c.push16(c.PC + uint16(e.bytes)); err != nil {
			return err
		}
		c.PC = e.rst
		advance = 0

	case famCBRot:
		v, err := c.regOrHL(e.reg)
		if err != nil {
			return err
		}
		r := c.doRot(e.rot, v)
		c.F = r.Flags
		if err := c.setRegOrHL(e.reg, byte(r.Value)); err != nil {
			return err
		}

	case famCBBit:
		v, err := c.regOrHL(e.reg)
		if err != nil {
			return err
		}
		set := bitutil.BitGet(v, e.bit)
		c.F = (c.F & alu.FlagC) | alu.FlagH
		if !set {
			c.F |= alu.FlagZ
		}

	case famCBRes:
		v, err := c.regOrHL(e.reg)
		if err != nil {
			return err
		}
		if err := c.setRegOrHL(e.reg, bitutil.BitUnset(v, e.bit)); err != nil {
			return err
		}

	case famCBSet:
		v, err := c.regOrHL(e.reg)
		if err != nil {
			return err
		}
		if err := c.setRegOrHL(e.reg, bitutil.BitSet(v, e.bit)); err != nil {
			return err
		}
	}

	if advance != 0 {
		c.PC += uint16(advance)
	}
	c.idleTime += e.cycles
	return nil
}

func (c *CPU) doAlu(op aluOp, y byte) {
	var r alu.Result
	switch op {
	case aluAdd:
		r = alu.Add8(c.A, y, 0)
	case aluAdc:
		r = alu.Add8(c.A, y, c.carryIn())
	case aluSub:
		r = alu.Sub8(c.A, y, 0)
	case aluSbc:
		r = alu.Sub8(c.A, y, c.carryIn())
	case aluAnd:
		r = alu.And8(c.A, y)
	case aluXor:
		r = alu.Xor8(c.A, y)
	case aluOr:
		r = alu.Or8(c.A, y)
	case aluCp:
		r = alu.Sub8(c.A, y, 0)
	}
	c.F = r.Flags
	if op != aluCp {
		c.A = byte(r.Value)
	}
}

func (c *CPU) doRot(op rotOp, x byte) alu.Result {
	switch op {
	case rotRLC:
		return alu.Rotate(x, bitutil.Left)
	case rotRRC:
		return alu.Rotate(x, bitutil.Right)
	case rotRL:
		return alu.CarryRotate(x, bitutil.Left, c.F)
	case rotRR:
		return alu.CarryRotate(x, bitutil.Right, c.F)
	case rotSLA:
		return alu.Shift(x, bitutil.Left)
	case rotSRA:
		return alu.ShiftRA(x)
	case rotSWAP:
		v := bitutil.Merge4(bitutil.Msb4(x), bitutil.Lsb4(x))
		var f byte
		if v == 0 {
			f = alu.FlagZ
		}
		return alu.Result{Value: uint16(v), Flags: f}
	case rotSRL:
		return alu.Shift(x, bitutil.Right)
	}
	return alu.Result{}
}

// daa adjusts A into packed BCD after an 8-bit add or subtract, with the N
// flag distinguishing which.
func (c *CPU) daa() {
	a := c.A
	var adjust byte
	carry := c.F&alu.FlagC != 0
	half := c.F&alu.FlagH != 0
	sub := c.F&alu.FlagN != 0
	if sub {
		if half {
			adjust += 0x06
		}
		if carry {
			adjust += 0x60
		}
		a -= adjust
	} else {
		if half || bitutil.Lsb4(a) > 0x09 {
			adjust += 0x06
		}
		if carry || a > 0x99 {
			adjust += 0x60
			carry = true
		}
		a += adjust
	}
	c.A = a
	var f byte
	if a == 0 {
		f |= alu.FlagZ
	}
	if sub {
		f |= alu.FlagN
	}
	if carry {
		f |= alu.FlagC
	}
	c.F = f
}
