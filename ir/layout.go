package ir

// RegisterSize is the size of one constant register: a 16-byte row of
// four 32-bit components.
const RegisterSize = 16

// MemberLayout is the placement of one constant buffer member.
type MemberLayout struct {
	Offset int
	Size   int
}

// Register returns the constant register holding the member.
func (l MemberLayout) Register() int {
	return l.Offset / RegisterSize
}

// Component returns the first 32-bit component of the member within its
// register, 0 to 3.
func (l MemberLayout) Component() int {
	return l.Offset % RegisterSize / 4
}

// Layout places the members of cb in declaration order using std140 rules.
// Scalars align to 4 bytes, two-component vectors to 8, wider vectors to
// 16. An NxN matrix is N rows, each aligned and padded to 16 bytes.
// Layout returns one entry per member and the block size rounded up to a
// whole register.
func (cb ConstantBuffer) Layout() ([]MemberLayout, int) {
	out := make([]MemberLayout, len(cb.Members))
	offset := 0
	for i, v := range cb.Members {
		align, size := std140(v.Type)
		offset = alignUp(offset, align)
		out[i] = MemberLayout{Offset: offset, Size: size}
		offset += size
	}
	return out, alignUp(offset, RegisterSize)
}

func std140(t Type) (align, size int) {
	switch {
	case t.IsMatrix():
		return RegisterSize, RegisterSize * t.Size()
	case t.IsValue():
		n := t.Size()
		switch n {
		case 1:
			return 4, 4
		case 2:
			return 8, 8
		default:
			return RegisterSize, 4 * n
		}
	}
	return 4, 0
}

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}
