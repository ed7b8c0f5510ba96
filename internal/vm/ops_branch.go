package vm

// ops_branch.go implements control transfer and upper-immediate instructions: BEQ/BNE/BLT/BGE/
// BLTU/BGEU (0x63), JAL (0x6f), JALR (0x67), LUI (0x37), AUIPC (0x17).
//
// h.PC has already been advanced past the instruction by the time these run, so
// "the instruction's own address" is h.PC-4 throughout.

func (h *Hart) execBranch(w rawInstruction) error {
	rs1 := h.Regs[w.rs1()]
	rs2 := h.Regs[w.rs2()]

	var taken bool

	switch w.funct3() {
	case 0b000:
		taken = rs1 == rs2 // BEQ
	case 0b001:
		taken = rs1 != rs2 // BNE
	case 0b100:
		taken = int64(rs1) < int64(rs2) // BLT
	case 0b101:
		taken = int64(rs1) >= int64(rs2) // BGE
	case 0b110:
		taken = rs1 < rs2 // BLTU
	case 0b111:
		taken = rs1 >= rs2 // BGEU
	default:
		return ExcIllegalInstruction
	}

	if taken {
		h.PC = Reg(int64(h.PC-4) + w.immB())
	}

	return nil
}

func (h *Hart) execJAL(w rawInstruction) error {
	h.Regs[w.rd()] = h.PC // return address: instruction after the jump.
	h.PC = Reg(int64(h.PC-4) + w.immJ())

	return nil
}

func (h *Hart) execJALR(w rawInstruction) error {
	target := Reg(int64(h.Regs[w.rs1()])+w.immI()) &^ 1
	link := h.PC // post-increment pc, per the JAL/JALR return-address decision in DESIGN.md.

	h.Regs[w.rd()] = link
	h.PC = target

	return nil
}

func (h *Hart) execLUI(w rawInstruction) error {
	h.Regs[w.rd()] = Reg(w.immU())
	return nil
}

func (h *Hart) execAUIPC(w rawInstruction) error {
	h.Regs[w.rd()] = Reg(int64(h.PC-4) + w.immU())
	return nil
}
