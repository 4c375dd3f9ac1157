package addressing

// Scheme selects how an address is mapped to a set.
type Scheme int

const (
	// Indexed maps every address to exactly one set using the bits above the
	// block offset.
	Indexed Scheme = iota

	// FullyAssociative places every block in the single set, so no index
	// bits are taken from the address.
	FullyAssociative
)

func (s Scheme) String() string {
	switch s {
	case Indexed:
		return "indexed"
	case FullyAssociative:
		return "fully-associative"
	default:
		return "unknown"
	}
}

// A Decoder splits addresses into offset, index and tag for a fixed geometry.
type Decoder struct {
	geometry  Geometry
	scheme    Scheme
	indexBits int
}

// NewDecoder creates a decoder. A fully-associative decoder treats the whole
// cache as one set regardless of the associativity recorded in g.
func NewDecoder(g Geometry, scheme Scheme) Decoder {
	d := Decoder{
		geometry: g,
		scheme:   scheme,
	}

	if scheme == Indexed {
		d.indexBits = g.IndexBits()
	}

	return d
}

// Geometry returns the geometry that the decoder was built for.
func (d Decoder) Geometry() Geometry {
	return d.geometry
}

// NumSets returns the number of sets that the decoder can produce.
func (d Decoder) NumSets() int {
	if d.scheme == FullyAssociative {
		return 1
	}

	return d.geometry.NumSets
}

// Decode returns the offset, set index and tag of an address.
func (d Decoder) Decode(addr uint64) (offset uint64, index int, tag uint64) {
	offset = addr & (BlockBytes - 1)

	if d.scheme == FullyAssociative {
		return offset, 0, addr >> OffsetBits
	}

	index = int((addr >> OffsetBits) % uint64(d.geometry.NumSets))
	tag = addr >> (OffsetBits + d.indexBits)

	return offset, index, tag
}
