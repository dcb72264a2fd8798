package csvstream

// Record is one logical row: an ordered sequence of field strings. Field
// order is significant; uniqueness is not required. A zero-length Record is
// what a blank input line parses to.
type Record []string

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	copy(out, r)
	return out
}
