package entities

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DatabaseIDField holds the source primary key of an exported record.
const DatabaseIDField = "database_id"

// Link object types written into reference objects.
const (
	LinkTypeEntry = "Entry"
	LinkTypeFile  = "File"
)

// Record is one exported entity, decoded from its JSON file.
// Numbers are kept as json.Number so untouched fields round-trip exactly.
type Record map[string]any

// ID returns the stringified database_id of the record.
func (r Record) ID() (string, bool) {
	return KeyString(r[DatabaseIDField])
}

// Present reports whether field holds a non-blank value.
func (r Record) Present(field string) bool {
	return !IsBlank(r[field])
}

// ReferenceObject is the injected value for direct reference kinds.
type ReferenceObject struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// AsValue converts the reference to the generic JSON shape stored in records.
func (o ReferenceObject) AsValue() map[string]any {
	return map[string]any{"type": o.Type, "id": o.ID}
}

// Row is one source table row keyed by column name.
type Row map[string]any

// IsBlank reports whether v is absent for indexing and linking purposes:
// nil, or a string containing only whitespace.
func IsBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []byte:
		return strings.TrimSpace(string(t)) == ""
	case json.Number:
		return t == ""
	default:
		return false
	}
}

// KeyString renders a scalar value the way it appears as an index key or
// inside a generated entry id. Blank values yield false.
func KeyString(v any) (string, bool) {
	if IsBlank(v) {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return strings.Trim(string(b), `"`), true
	}
}
