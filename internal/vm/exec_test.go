package vm

import "testing"

// TestAddImmediate covers scenario 1: addi x1, x0, 42 at the reset PC sets x1 and advances pc.
func TestAddImmediate(tt *testing.T) {
	img := asm(encodeI(opOpImm, 1, 0b000, X0, 42))
	h, _ := NewTestHart(tt, img)

	if err := h.Step(); err != nil {
		tt.Fatalf("step: %v", err)
	}

	if h.Regs[1] != 42 {
		tt.Errorf("x1 = %d, want 42", h.Regs[1])
	}

	if h.PC != MemoryBase+4 {
		tt.Errorf("pc = %s, want %s", h.PC, Reg(MemoryBase+4))
	}
}

// TestStoreLoadSignExtend covers scenario 2: lui/addi build 0xFFF, sw/lw round-trips it through
// RAM at MemoryBase, and LW's sign extension leaves the positive word 0xFFF unchanged.
func TestStoreLoadSignExtend(tt *testing.T) {
	img := asm(
		encodeU(opLUI, 1, 0x1000),                 // lui x1, 0x1      -> x1 = 0x1000
		encodeI(opOpImm, 1, 0b000, 1, -1),         // addi x1, x1, -1  -> x1 = 0xFFF
		encodeS(opStore, 0b010, 3, 1, 0),          // sw x1, 0(x3)
		encodeI(opLoad, 2, 0b010, 3, 0),           // lw x2, 0(x3)
	)

	h, _ := NewTestHart(tt, img)
	h.Regs[3] = MemoryBase // x3 points at the start of RAM.

	for i := 0; i < 4; i++ {
		if err := h.Step(); err != nil {
			tt.Fatalf("step %d: %v", i, err)
		}
	}

	if h.Regs[2] != Reg(0x0000_0000_0000_0FFF) {
		tt.Errorf("x2 = %#x, want %#x", h.Regs[2], Reg(0xFFF))
	}
}

// TestECALLFromMachine covers scenario 3: ECALL from M-mode traps in M with medeleg=0.
func TestECALLFromMachine(tt *testing.T) {
	img := asm(encodeI(opSystem, X0, 0b000, X0, funct12ECALL))
	h, _ := NewTestHart(tt, img)

	ecallPC := h.PC

	if err := h.Step(); err != nil {
		tt.Fatalf("step: %v", err)
	}

	if h.Mode != Machine {
		tt.Errorf("mode = %s, want Machine", h.Mode)
	}

	if mepc := h.CSR.RawRead(CSRMepc); mepc != ecallPC {
		tt.Errorf("mepc = %s, want %s", mepc, ecallPC)
	}

	if mcause := h.CSR.RawRead(CSRMcause); mcause != Reg(ExcEnvironmentCallFromMMode) {
		tt.Errorf("mcause = %d, want %d", mcause, ExcEnvironmentCallFromMMode)
	}

	if h.PC != h.CSR.RawRead(CSRMtvec) {
		tt.Errorf("pc = %s, want mtvec %s", h.PC, h.CSR.RawRead(CSRMtvec))
	}
}

// TestSATPEnablesPaging covers scenario 4: writing satp with mode=8 (Sv39) and a page table base
// enables paging for the next fetch.
func TestSATPEnablesPaging(tt *testing.T) {
	h, _ := NewTestHart(tt, nil)

	ppn := Reg(0x83000) // arbitrary page table base ppn.
	satp := (Reg(8) << 60) | ppn

	h.CSR.Write(CSRSatp, satp)

	enabled, root := h.CSR.satpPaging()
	if !enabled {
		tt.Fatal("paging not enabled after satp write")
	}

	if want := ppn * 4096; root != want {
		tt.Errorf("page table root = %#x, want %#x", root, want)
	}
}
