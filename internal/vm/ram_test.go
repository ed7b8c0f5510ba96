package vm

import "testing"

func TestRAMRoundTrip(tt *testing.T) {
	sizes := []uint{8, 16, 32, 64}

	for _, size := range sizes {
		size := size

		tt.Run("", func(tt *testing.T) {
			ram := NewRAM(nil)

			var value Reg
			switch size {
			case 8:
				value = 0xAB
			case 16:
				value = 0xABCD
			case 32:
				value = 0xDEADBEEF
			case 64:
				value = 0x0123456789ABCDEF
			}

			if err := ram.Store(0x10, size, value); err != nil {
				tt.Fatalf("store: %v", err)
			}

			got, err := ram.Load(0x10, size)
			if err != nil {
				tt.Fatalf("load: %v", err)
			}

			if got != value {
				tt.Errorf("size %d: got %#x, want %#x", size, got, value)
			}
		})
	}
}

func TestRAMLoadSignExtendsByte(tt *testing.T) {
	ram := NewRAM(nil)

	if err := ram.Store(0, 8, 0xFF); err != nil {
		tt.Fatalf("store: %v", err)
	}

	val, err := ram.Load(0, 8)
	if err != nil {
		tt.Fatalf("load: %v", err)
	}

	rd := Reg(signExtend(uint64(val), 8))

	if rd != ^Reg(0) {
		tt.Errorf("sign-extended byte = %#x, want all-ones", rd)
	}
}

func TestRAMUnsupportedSize(tt *testing.T) {
	ram := NewRAM(nil)

	if _, err := ram.Load(0, 24); err != ExcLoadAddressMisaligned {
		tt.Errorf("load err = %v, want ExcLoadAddressMisaligned", err)
	}

	if err := ram.Store(0, 24, 1); err != ExcStoreAMOAddressMisaligned {
		tt.Errorf("store err = %v, want ExcStoreAMOAddressMisaligned", err)
	}
}
