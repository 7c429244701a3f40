package form

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Errors maps a field name to the message rendered beneath its control.
type Errors map[string]string

func (e Errors) Empty() bool { return len(e) == 0 }

// Patch is the typed result of a successful parse: only declared fields,
// foreign keys as int64, numbers as float64, checkboxes as bool. A blank
// optional select is present with a nil value.
type Patch map[string]any

type Schema struct {
	Fields      []Field
	Refinements []Refinement
}

// Field returns the descriptor named name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Parse converts submitted form values into a Patch. Refinements run only
// once every field passed its own rules; a non-empty Errors means the
// patch must not be sent anywhere.
func (s Schema) Parse(values url.Values) (Patch, Errors) {
	patch := Patch{}
	errs := Errors{}

	for _, f := range s.Fields {
		raw := values.Get(f.Name)
		key := f.PatchKey()
		switch f.Kind {
		case Checkbox:
			patch[key] = raw == "on" || raw == "true" || raw == "1"

		case Select:
			if strings.TrimSpace(raw) == "" {
				if f.Optional {
					// explicit null so a merge clears the previous reference
					patch[key] = nil
				} else {
					errs[f.Name] = "Required"
				}
				continue
			}
			n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				errs[f.Name] = "Expected number"
				continue
			}
			if msg, ok := check(n, f.Rules); !ok {
				errs[f.Name] = msg
				continue
			}
			patch[key] = n

		case Number:
			if strings.TrimSpace(raw) == "" {
				if !f.Optional {
					errs[f.Name] = "Required"
				}
				continue
			}
			n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				errs[f.Name] = "Expected number"
				continue
			}
			if msg, ok := check(n, f.Rules); !ok {
				errs[f.Name] = msg
				continue
			}
			patch[key] = n

		default:
			if raw == "" && f.Optional {
				continue
			}
			if msg, ok := check(raw, f.Rules); !ok {
				errs[f.Name] = msg
				continue
			}
			patch[key] = raw
		}
	}

	if !errs.Empty() {
		return nil, errs
	}
	for _, r := range s.Refinements {
		if !r.Valid(patch) {
			errs[r.Target] = r.Message
		}
	}
	if !errs.Empty() {
		return nil, errs
	}
	return patch, nil
}

func check(v any, rules []Rule) (string, bool) {
	for _, r := range rules {
		if err := validate.Var(v, r.Tag); err != nil {
			return r.Message, false
		}
	}
	return "", true
}
