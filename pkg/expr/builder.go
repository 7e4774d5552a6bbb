package expr

// Builder mints fresh symbolic bytes. The small amount of constant folding
// the plugin relies on (byte extraction from a segment constant, concat of
// adjacent constants, reversal for endness) is done by the package-level
// ExtractByte, ConcatBytes and Reverse functions.
type Builder struct{}

// FreshByte mints an unconstrained 8-bit symbolic expression under the given
// name. The caller is responsible for disambiguating names (e.g. bottom
// placeholders are named after the id/address/offset that produced them, so
// repeated calls for the same cell deterministically return the same
// variable rather than a freshly counted one).
func (b *Builder) FreshByte(name string) *BVS {
	return &BVS{Name: name, Bits: 8}
}

// ExtractByte pulls byte index `offset` (0 = least significant byte) out of
// a wider expression. If src is a concrete constant the byte is folded
// immediately; otherwise an Extract node is produced.
func ExtractByte(src Expression, offset int) Expression {
	if v, ok := src.(*BVV); ok {
		shift := uint(offset) * 8
		return &BVV{Value: (v.Value >> shift) & 0xff, Bits: 8}
	}
	if v, ok := src.(*Blob); ok {
		// Blob.Data is stored most-significant-byte first; offset 0 is the
		// least significant byte of the segment, matching BVV's convention.
		idx := len(v.Data) - 1 - offset
		return &BVV{Value: uint64(v.Data[idx]), Bits: 8}
	}
	low := offset * 8
	high := low + 7
	return &Extract{High: high, Low: low, Inner: src}
}

// ConcatBytes concatenates byte expressions with parts[0] as the most
// significant byte, folding a run of constants into a single BVV.
func ConcatBytes(parts ...Expression) Expression {
	if len(parts) == 0 {
		return nil
	}
	if len(parts) == 1 {
		return parts[0]
	}
	allConst := true
	for _, p := range parts {
		if _, ok := p.(*BVV); !ok {
			allConst = false
			break
		}
	}
	if allConst {
		var value uint64
		width := 0
		for _, p := range parts {
			v := p.(*BVV)
			value = (value << uint(v.Bits)) | (v.Value & mask(v.Bits))
			width += v.Bits
		}
		return &BVV{Value: value, Bits: width}
	}
	return &Concat{Args: parts}
}

// Reverse reverses the byte order of an 8*n-bit expression built from a
// Concat of single bytes (or a constant), implementing endness conversion
// without consulting the solver. A single byte is returned unchanged.
func Reverse(e Expression) Expression {
	w := e.Width()
	if w%8 != 0 {
		return e
	}
	n := w / 8
	if n <= 1 {
		return e
	}
	if v, ok := e.(*BVV); ok {
		var out uint64
		for i := 0; i < n; i++ {
			byteVal := (v.Value >> uint(i*8)) & 0xff
			out |= byteVal << uint((n-1-i)*8)
		}
		return &BVV{Value: out, Bits: w}
	}
	if c, ok := e.(*Concat); ok && len(c.Args) == n {
		rev := make([]Expression, n)
		for i, a := range c.Args {
			rev[n-1-i] = a
		}
		return ConcatBytes(rev...)
	}
	parts := make([]Expression, n)
	for i := 0; i < n; i++ {
		parts[n-1-i] = ExtractByte(e, i)
	}
	return ConcatBytes(parts...)
}

// Slice extracts byte `offset` from data of known width in bits, used when
// slicing a store's data expression into per-offset bytes.
func Slice(data Expression, offset int) Expression {
	return ExtractByte(data, offset)
}

func mask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(bits)) - 1
}
