package vm

// csr.go implements the control/status register file: a flat, 4096-entry word array with alias
// semantics for the S-mode views of M-mode registers. A flat array with accessor methods that
// special-case the privileged fields fits better here than modelling each CSR as its own type
// with virtual dispatch — the set of special cases is small and fixed.

import "fmt"

// CSR addresses used by this core. Unlisted addresses are plain read/write words.
const (
	CSRSstatus Reg = 0x100
	CSRSie     Reg = 0x104
	CSRStvec   Reg = 0x105
	CSRSscratch Reg = 0x140
	CSRSepc    Reg = 0x141
	CSRScause  Reg = 0x142
	CSRStval   Reg = 0x143
	CSRSip     Reg = 0x144
	CSRSatp    Reg = 0x180

	CSRMstatus  Reg = 0x300
	CSRMisa     Reg = 0x301
	CSRMedeleg  Reg = 0x302
	CSRMideleg  Reg = 0x303
	CSRMie      Reg = 0x304
	CSRMtvec    Reg = 0x305
	CSRMscratch Reg = 0x340
	CSRMepc     Reg = 0x341
	CSRMcause   Reg = 0x342
	CSRMtval    Reg = 0x343
	CSRMip      Reg = 0x344
	CSRMhartid  Reg = 0xf14
)

// mstatus/sstatus bit positions.
const (
	statusSIE  = 1 << 1
	statusMIE  = 1 << 3
	statusSPIE = 1 << 5
	statusMPIE = 1 << 7
	statusSPP  = 1 << 8
	statusMPPShift = 11
	statusMPPMask  = 0b11 << statusMPPShift
)

// mip/mie bit positions (interrupt pending/enable).
const (
	ipSSIP = 1 << 1
	ipMSIP = 1 << 3
	ipSTIP = 1 << 5
	ipMTIP = 1 << 7
	ipSEIP = 1 << 9
	ipMEIP = 1 << 11
)

// sstatusMask selects the bits of mstatus that are visible through the sstatus alias.
const sstatusMask = statusSIE | statusSPIE | statusSPP | (0b11 << 13) | (1 << 19) | (1 << 18) | (1 << 62) | (1 << 63)

// CSRFile is the 4096-entry control/status register array.
type CSRFile struct {
	regs [4096]Reg
}

// Read returns the value of the CSR at addr, applying the S-mode alias rules.
func (c *CSRFile) Read(addr Reg) Reg {
	switch addr {
	case CSRSie:
		return c.regs[CSRMie] & c.regs[CSRMideleg]
	case CSRSip:
		return c.regs[CSRMip] & c.regs[CSRMideleg]
	case CSRSstatus:
		return c.regs[CSRMstatus] & sstatusMask
	default:
		return c.regs[addr&0xfff]
	}
}

// Write stores value into the CSR at addr, applying the S-mode alias rules. satp is stored as a
// plain word: Translate derives the paging state from it on every access, so a satp write takes
// effect at the next memory access.
func (c *CSRFile) Write(addr Reg, value Reg) {
	switch addr {
	case CSRSie:
		mideleg := c.regs[CSRMideleg]
		c.regs[CSRMie] = (c.regs[CSRMie] &^ mideleg) | (value & mideleg)
	case CSRSip:
		mideleg := c.regs[CSRMideleg]
		c.regs[CSRMip] = (c.regs[CSRMip] &^ mideleg) | (value & mideleg)
	case CSRSstatus:
		c.regs[CSRMstatus] = (c.regs[CSRMstatus] &^ Reg(sstatusMask)) | (value & sstatusMask)
	default:
		c.regs[addr&0xfff] = value
	}
}

// RawWrite stores value directly into the indexed slot, bypassing alias rules. Used by trap
// delivery and MRET/SRET, which operate on the canonical M-mode register directly.
func (c *CSRFile) RawWrite(addr Reg, value Reg) {
	c.regs[addr&0xfff] = value
}

// RawRead returns the indexed slot directly, bypassing alias rules.
func (c *CSRFile) RawRead(addr Reg) Reg {
	return c.regs[addr&0xfff]
}

func (c *CSRFile) String() string {
	return fmt.Sprintf(
		"mstatus:%s mtvec:%s mepc:%s mcause:%s\nsstatus:%s stvec:%s sepc:%s scause:%s",
		c.RawRead(CSRMstatus), c.RawRead(CSRMtvec), c.RawRead(CSRMepc), c.RawRead(CSRMcause),
		c.Read(CSRSstatus), c.RawRead(CSRStvec), c.RawRead(CSRSepc), c.RawRead(CSRScause),
	)
}

// satpPaging reports whether satp selects Sv39 (mode field == 8) and, if so, the physical base
// address of the root page table.
func (c *CSRFile) satpPaging() (enabled bool, pageTable Reg) {
	satp := c.RawRead(CSRSatp)
	mode := satp >> 60

	if mode != 8 {
		return false, 0
	}

	ppn := satp & ((1 << 44) - 1)

	return true, ppn * 4096
}
