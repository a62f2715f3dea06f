package objectstore

// Kind tags a stored value so backend routing is an explicit write-time
// decision instead of runtime type inspection.
type Kind int

const (
	// KindRecord is small, frequently mutated structured data (session
	// state, cached tool specs). Routed to the fast backend unless it
	// exceeds the blob threshold.
	KindRecord Kind = iota
	// KindDocument is library content headed for archival.
	KindDocument
	// KindBlob is opaque bytes of arbitrary size.
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindDocument:
		return "document"
	case KindBlob:
		return "blob"
	default:
		return "unknown"
	}
}

// DefaultBlobThreshold is the size above which records are routed to the
// durable backend anyway.
const DefaultBlobThreshold = 256 * 1024

// Descriptor describes a value at write time.
type Descriptor struct {
	Kind Kind
	Size int
}

// Durable reports whether the descriptor routes to the durable backend.
func (d Descriptor) Durable(threshold int) bool {
	if threshold <= 0 {
		threshold = DefaultBlobThreshold
	}
	return d.Kind != KindRecord || d.Size > threshold
}
