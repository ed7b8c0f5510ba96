package vm

// ops_load.go implements the 0x03 LOAD opcode: LB/LH/LW/LD sign-extended, LBU/LHU/LWU
// zero-extended.

func (h *Hart) execLoad(w rawInstruction) error {
	addr := Reg(int64(h.Regs[w.rs1()]) + w.immI())

	var size uint
	var signed bool

	switch w.funct3() {
	case 0b000:
		size, signed = 8, true // LB
	case 0b001:
		size, signed = 16, true // LH
	case 0b010:
		size, signed = 32, true // LW
	case 0b011:
		size, signed = 64, true // LD
	case 0b100:
		size, signed = 8, false // LBU
	case 0b101:
		size, signed = 16, false // LHU
	case 0b110:
		size, signed = 32, false // LWU
	default:
		return ExcIllegalInstruction
	}

	phys, err := h.Translate(addr, AccessLoad)
	if err != nil {
		return err
	}

	val, err := h.Bus.Load(phys, size)
	if err != nil {
		return err
	}

	if signed {
		h.Regs[w.rd()] = Reg(signExtend(uint64(val), size))
	} else {
		h.Regs[w.rd()] = val
	}

	return nil
}
