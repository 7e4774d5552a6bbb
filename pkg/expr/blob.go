package expr

// Blob is a concrete, arbitrary-length byte constant — the expression a
// memory backer segment is loaded as (spec §4.7): "one expression per
// segment, bytes share provenance". Unlike BVV (capped at 64 bits), Blob
// can represent an entire binary section.
type Blob struct {
	Name string
	Data []byte
}

func (b *Blob) Width() int      { return len(b.Data) * 8 }
func (b *Blob) expressionNode() {}
