package vm

// clint.go is the core-local interruptor: software and timer interrupts for the single
// modelled hart.

// CLINT's MMIO window.
const (
	CLINTBase Reg = 0x0200_0000
	CLINTSize Reg = 0x10000

	clintMSIP     Reg = 0x0000 // 4 bytes.
	clintMTimeCmp Reg = 0x4000 // 8 bytes.
	clintMTime    Reg = 0xbff8 // 8 bytes.
)

// CLINT holds the core-local interrupt registers.
type CLINT struct {
	msip     uint32
	mtimecmp uint64
	mtime    uint64
}

// NewCLINT creates a zeroed CLINT.
func NewCLINT() *CLINT {
	return &CLINT{}
}

// Load reads a CLINT register. Only 32- and 64-bit accesses, at the offsets above, are
// supported; anything else is a load access fault.
func (c *CLINT) Load(offset Reg, size uint) (Reg, error) {
	switch {
	case offset == clintMSIP && size == 32:
		return Reg(c.msip), nil
	case offset == clintMTimeCmp && size == 64:
		return Reg(c.mtimecmp), nil
	case offset == clintMTime && size == 64:
		return Reg(c.mtime), nil
	default:
		return 0, ExcLoadAccessFault
	}
}

// Store writes a CLINT register.
func (c *CLINT) Store(offset Reg, size uint, value Reg) error {
	switch {
	case offset == clintMSIP && size == 32:
		c.msip = uint32(value)
	case offset == clintMTimeCmp && size == 64:
		c.mtimecmp = uint64(value)
	case offset == clintMTime && size == 64:
		c.mtime = uint64(value)
	default:
		return ExcStoreAMOAccessFault
	}

	return nil
}

// Tick advances mtime by one and reports whether the timer interrupt condition now holds
// (mtime >= mtimecmp). The caller is responsible for setting mip.MTIP accordingly.
func (c *CLINT) Tick() bool {
	c.mtime++
	return c.mtime >= c.mtimecmp
}

// SoftwareInterruptPending reports whether msip's low bit, the only bit this core models, is
// set.
func (c *CLINT) SoftwareInterruptPending() bool {
	return c.msip&1 != 0
}
