package entities

// IndexKey identifies one helper index file.
type IndexKey struct {
	PrimaryID    string
	RelatedModel string
}

// ForeignKeyIndex maps a stringified primary value to the foreign values
// collected for it, in table scan order.
type ForeignKeyIndex map[string][]any

// Add appends value under key and reports whether it was indexed.
// Blank values and blank keys are ignored.
func (idx ForeignKeyIndex) Add(key, value any) bool {
	if IsBlank(value) {
		return false
	}
	k, ok := KeyString(key)
	if !ok {
		return false
	}
	idx[k] = append(idx[k], value)
	return true
}

// Lookup returns the values for a key.
func (idx ForeignKeyIndex) Lookup(key string) ([]any, bool) {
	v, ok := idx[key]
	if !ok || len(v) == 0 {
		return nil, false
	}
	return v, true
}

// First returns the first value for a key.
func (idx ForeignKeyIndex) First(key string) (any, bool) {
	v, ok := idx.Lookup(key)
	if !ok {
		return nil, false
	}
	return v[0], true
}
