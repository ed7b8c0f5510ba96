package vm

// ops_system.go implements the 0x73 SYSTEM opcode: ECALL, EBREAK, SRET, MRET, SFENCE.VMA, and
// the six CSR instructions (CSRRW/S/C and their _I immediate forms). It also covers 0x0f FENCE,
// which this core treats as a no-op since there is only one hart and memory ordering within it is
// already sequential.

const (
	funct12ECALL    = 0x000
	funct12EBREAK   = 0x001
	funct12SRET     = 0x102
	funct12MRET     = 0x302
	funct7SFENCEVMA = 0b0001001
)

func (h *Hart) execFence(w rawInstruction) error {
	return nil
}

func (h *Hart) execSystem(w rawInstruction) error {
	funct12 := uint32(w>>20) & 0xfff

	switch w.funct3() {
	case 0b000:
		switch {
		case w.funct7() == funct7SFENCEVMA:
			return nil // SFENCE.VMA: no-op, there is no TLB to invalidate.
		case funct12 == funct12ECALL:
			return h.execECALL()
		case funct12 == funct12EBREAK:
			return ExcBreakpoint
		case funct12 == funct12SRET:
			h.sret()
			return nil
		case funct12 == funct12MRET:
			h.mret()
			return nil
		default:
			return ExcIllegalInstruction
		}
	case 0b001:
		return h.execCSR(w, csrOpWrite, false)
	case 0b010:
		return h.execCSR(w, csrOpSet, false)
	case 0b011:
		return h.execCSR(w, csrOpClear, false)
	case 0b101:
		return h.execCSR(w, csrOpWrite, true)
	case 0b110:
		return h.execCSR(w, csrOpSet, true)
	case 0b111:
		return h.execCSR(w, csrOpClear, true)
	default:
		return ExcIllegalInstruction
	}
}

func (h *Hart) execECALL() error {
	switch h.Mode {
	case User:
		return ExcEnvironmentCallFromUMode
	case Supervisor:
		return ExcEnvironmentCallFromSMode
	default:
		return ExcEnvironmentCallFromMMode
	}
}

type csrOp uint8

const (
	csrOpWrite csrOp = iota
	csrOpSet
	csrOpClear
)

// execCSR implements the CSRRW/S/C family: read the old value into a temporary, compute the new
// value from rs1 (or, for the _I forms, the zero-extended rs1 field used as a 5-bit immediate),
// write it to the CSR, and only then assign the temporary to rd — in that order, so an rd that is
// also rs1 does not alter the operand.
func (h *Hart) execCSR(w rawInstruction, op csrOp, immediate bool) error {
	addr := Reg(uint32(w>>20) & 0xfff)

	var operand Reg
	if immediate {
		operand = Reg(w.rs1()) // rs1 field reused as a 5-bit zero-extended immediate.
	} else {
		operand = h.Regs[w.rs1()]
	}

	old := h.CSR.Read(addr)

	var next Reg

	switch op {
	case csrOpWrite:
		next = operand
	case csrOpSet:
		next = old | operand
	case csrOpClear:
		next = old &^ operand
	}

	// CSRRS/C(I) with a zero operand leave next == old, so writing unconditionally here still
	// matches the architectural no-write case.
	h.CSR.Write(addr, next)
	h.Regs[w.rd()] = old

	return nil
}
