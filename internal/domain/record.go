package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one row of an entity list as returned by the remote API.
// Keys are the API's JSON field names; numbers decode as float64.
type Record map[string]any

// ID returns the API-assigned identifier, or 0 when absent.
func (r Record) ID() int64 {
	if n, ok := r.Int("id"); ok {
		return n
	}
	return 0
}

// Int reads a numeric field (float64/int/json.Number/numeric string).
func (r Record) Int(name string) (int64, bool) {
	switch v := r[name].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	}
	return 0, false
}

// Str renders a field for display. Missing and null values render as "".
func (r Record) Str(name string) string {
	switch v := r[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Bool reads a boolean field.
func (r Record) Bool(name string) bool {
	b, _ := r[name].(bool)
	return b
}

// Clone returns a shallow copy; field values are scalars so this is enough
// to keep a shadow copy independent of the list it was taken from.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge returns a copy of r with every patch field applied on top.
func (r Record) Merge(patch map[string]any) Record {
	out := r.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Option is one selectable value of a reference collection.
type Option struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// Scope carries the path parameters that parent-scoped entities need
// (team slug for activities/tourists, table slug for reference tables).
type Scope struct {
	Team string
	Slug string
}

// Claims are the session token's public claims.
type Claims struct {
	ID      int64
	Name    string
	IsAdmin bool
}

// Session is the caller's identity as seen by the core: the raw token is
// only forwarded, never validated here.
type Session struct {
	Token  string
	Claims Claims
	// UI identifies the browser whose accordion state is stored.
	UI string
}

func (s Session) Authenticated() bool { return s.Token != "" }
