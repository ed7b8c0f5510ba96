package vm

// mmu.go implements Sv39 address translation: a 3-level page table walk over 9+9+9+12 bit
// virtual addresses, with megapage/gigapage superpage support.

// AccessType distinguishes the permission bit a translation must find set.
type AccessType uint8

const (
	AccessInstruction AccessType = iota
	AccessLoad
	AccessStore
)

// Page table entry bit fields.
const (
	pteV = 1 << 0
	pteR = 1 << 1
	pteW = 1 << 2
	pteX = 1 << 3
	pteU = 1 << 4
	pteA = 1 << 6
	pteD = 1 << 7

	ptePPNShift = 10
)

// Translate converts virtual address va to a physical address, walking Sv39's three levels when
// paging is enabled and returning the page-fault exception matching kind when a walk fails. With
// paging disabled (satp.MODE != Sv39) translation is the identity function, as is always the case
// in Machine mode regardless of satp.
func (h *Hart) Translate(va Reg, kind AccessType) (Reg, error) {
	enabled, root := h.CSR.satpPaging()
	if !enabled || h.Mode == Machine {
		return va, nil
	}

	vpn := [3]Reg{
		(va >> 12) & 0x1ff,
		(va >> 21) & 0x1ff,
		(va >> 30) & 0x1ff,
	}

	pageFault := func() error {
		switch kind {
		case AccessInstruction:
			return ExcInstructionPageFault
		case AccessStore:
			return ExcStoreAMOPageFault
		default:
			return ExcLoadPageFault
		}
	}

	a := root

	for level := 2; ; level-- {
		pteAddr := a + vpn[level]*8

		pteVal, err := h.Bus.Load(pteAddr, 64)
		if err != nil {
			return 0, pageFault()
		}

		if pteVal&pteV == 0 || (pteVal&pteR == 0 && pteVal&pteW != 0) {
			return 0, pageFault()
		}

		leaf := pteVal&(pteR|pteW|pteX) != 0
		if !leaf {
			if level == 0 {
				return 0, pageFault()
			}

			a = ((pteVal >> ptePPNShift) & 0xfff_ffff_ffff) * 4096

			continue
		}

		if err := h.checkPermission(pteVal, kind); err != nil {
			return 0, err
		}

		// Superpage misalignment: a megapage/gigapage PTE must have zero in the PPN bits below
		// its level.
		ppn := (pteVal >> ptePPNShift) & 0xfff_ffff_ffff
		for l := 0; l < level; l++ {
			if (ppn>>(9*l))&0x1ff != 0 {
				return 0, pageFault()
			}
		}

		pageOffset := va & 0xfff
		physPPN := ppn

		for l := 0; l < level; l++ {
			mask := Reg(0x1ff) << (9 * l)
			physPPN = (physPPN &^ mask) | (vpn[l] << (9 * l))
		}

		return (physPPN << 12) | pageOffset, nil
	}
}

// checkPermission validates the leaf PTE's R/W/X/U bits against the requested access and the
// hart's current privilege mode.
func (h *Hart) checkPermission(pte Reg, kind AccessType) error {
	pageFault := func() error {
		switch kind {
		case AccessInstruction:
			return ExcInstructionPageFault
		case AccessStore:
			return ExcStoreAMOPageFault
		default:
			return ExcLoadPageFault
		}
	}

	if h.Mode == User && pte&pteU == 0 {
		return pageFault()
	}

	if h.Mode == Supervisor && pte&pteU != 0 {
		// SUM is not modeled; supervisor code never accesses U-mode pages.
		return pageFault()
	}

	switch kind {
	case AccessInstruction:
		if pte&pteX == 0 {
			return pageFault()
		}
	case AccessLoad:
		if pte&pteR == 0 {
			return pageFault()
		}
	case AccessStore:
		if pte&pteW == 0 {
			return pageFault()
		}
	}

	return nil
}
