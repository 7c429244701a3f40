// Package form is the field-descriptor driven form engine shared by every
// entity editor and creator: it parses submitted values into a typed patch,
// evaluates per-field rules and whole-form refinements, and prepares the
// controls a template renders.
package form

import "strconv"

// Kind selects the control and the parsed value type of a field.
type Kind string

const (
	Text     Kind = "text"
	Email    Kind = "email"
	Tel      Kind = "tel"
	Password Kind = "password"
	Date     Kind = "date"
	DateTime Kind = "datetime-local"
	Number   Kind = "number"
	Checkbox Kind = "checkbox"
	Select   Kind = "select"
)

// Rule is one validator tag plus the message shown when it fails.
type Rule struct {
	Tag     string
	Message string
}

type Field struct {
	Name  string
	Label string
	Kind  Kind
	Rules []Rule

	// Key is the patch key when the API writes the field under another
	// name than it reads it; empty means Name.
	Key string

	// Ref names the reference collection a Select draws its options from;
	// Display is the record key holding the denormalized label.
	Ref     string
	Display string

	// Optional fields left blank are omitted from the patch and skip their rules.
	Optional bool
	// Secret fields are never seeded from the record and never shown in view mode.
	Secret bool
}

// PatchKey is the name the field is sent under.
func (f Field) PatchKey() string {
	if f.Key != "" {
		return f.Key
	}
	return f.Name
}

// Min is shorthand for a minimum length (strings) or value (numbers) rule.
func Min(n int, msg string) Rule { return Rule{Tag: "min=" + strconv.Itoa(n), Message: msg} }

func EmailRule(msg string) Rule { return Rule{Tag: "email", Message: msg} }
