package vm

// ops_amo.go implements the 0x2f AMO opcode subset this core models: AMOADD.W/D, AMOSWAP.W/D.
// There is exactly one hart, so these are implemented as a plain load-compute-store sequence;
// rd receives the pre-update memory value.

func (h *Hart) execAMO(w rawInstruction) error {
	addr := h.Regs[w.rs1()]

	var size uint
	switch w.funct3() {
	case 0b010:
		size = 32
	case 0b011:
		size = 64
	default:
		return ExcIllegalInstruction
	}

	phys, err := h.Translate(addr, AccessLoad)
	if err != nil {
		return err
	}

	old, err := h.Bus.Load(phys, size)
	if err != nil {
		return err
	}

	if size == 32 {
		old = Reg(signExtend(uint64(old), 32))
	}

	rs2 := h.Regs[w.rs2()]
	funct5 := w.funct7() >> 2

	var updated Reg

	switch funct5 {
	case 0b00000: // AMOADD
		updated = old + rs2
	case 0b00001: // AMOSWAP
		updated = rs2
	default:
		return ExcIllegalInstruction
	}

	storePhys, err := h.Translate(addr, AccessStore)
	if err != nil {
		return err
	}

	if err := h.Bus.Store(storePhys, size, updated); err != nil {
		return err
	}

	h.Regs[w.rd()] = old

	return nil
}
