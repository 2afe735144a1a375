package plink

// IDSet is a set of variant identifiers. Sets handed to the filters are
// treated as read-only snapshots so they can be shared between workers
// without locking.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	out := make(IDSet, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func (s IDSet) Has(id string) bool {
	_, exists := s[id]
	return exists
}

func (s IDSet) Len() int {
	return len(s)
}

// Intersect returns the identifiers present in both sets.
func (s IDSet) Intersect(other IDSet) IDSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}

	out := make(IDSet)
	for id := range small {
		if large.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}
