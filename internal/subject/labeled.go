package subject

// Labeled is a Subject[uint64] that also owns a short label. The label is
// never read by any extraction.
type Labeled struct {
	Subject[uint64]
	Label *string
}

func NewLabeled(size int, label string) *Labeled {
	return &Labeled{
		Subject: *New(size, Identity),
		Label:   &label,
	}
}

// IntoElements consumes l and returns its elements. The label is dropped
// without being dereferenced and l is left in its zero state.
func (l *Labeled) IntoElements() []uint64 {
	// Only slice and pointer headers are copied into the closure.
	elements := func(owned Labeled) []uint64 {
		return owned.Elements
	}(*l)
	*l = Labeled{}
	if elements == nil {
		return []uint64{}
	}
	return elements
}
