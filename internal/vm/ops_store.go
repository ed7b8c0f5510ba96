package vm

// ops_store.go implements the 0x23 STORE opcode: SB/SH/SW/SD.

func (h *Hart) execStore(w rawInstruction) error {
	addr := Reg(int64(h.Regs[w.rs1()]) + w.immS())
	val := h.Regs[w.rs2()]

	var size uint

	switch w.funct3() {
	case 0b000:
		size = 8 // SB
	case 0b001:
		size = 16 // SH
	case 0b010:
		size = 32 // SW
	case 0b011:
		size = 64 // SD
	default:
		return ExcIllegalInstruction
	}

	phys, err := h.Translate(addr, AccessStore)
	if err != nil {
		return err
	}

	return h.Bus.Store(phys, size, val)
}
