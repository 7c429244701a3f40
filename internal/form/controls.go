package form

import (
	"strconv"
	"strings"

	"gezgi_admin/internal/domain"
)

// Choice is one <option> of a select control.
type Choice struct {
	Value    string
	Label    string
	Selected bool
}

// Control is everything a template needs to draw one field.
type Control struct {
	Field
	Value   string
	Checked bool
	Choices []Choice
	Error   string
}

// Defaults seeds form values from a record's current field values.
// Secret fields stay empty.
func (s Schema) Defaults(rec domain.Record) map[string]string {
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		if f.Secret {
			continue
		}
		out[f.Name] = valueOf(f, rec)
	}
	return out
}

func valueOf(f Field, rec domain.Record) string {
	switch f.Kind {
	case Checkbox:
		if rec.Bool(f.Name) {
			return "true"
		}
		return ""
	case Select:
		if n, ok := rec.Int(f.Name); ok && n != 0 {
			return strconv.FormatInt(n, 10)
		}
		return ""
	case Date:
		return clip(rec.Str(f.Name), 10)
	case DateTime:
		return clip(rec.Str(f.Name), 16)
	default:
		return rec.Str(f.Name)
	}
}

// clip trims ISO timestamps to what date/datetime-local inputs accept.
func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Controls builds one control per field. current is the record under edit
// (nil for the creator); values holds the draft or seeded values.
func (s Schema) Controls(values map[string]string, errs map[string]string, current domain.Record, refs map[string][]domain.Option) []Control {
	out := make([]Control, 0, len(s.Fields))
	for _, f := range s.Fields {
		c := Control{Field: f, Value: values[f.Name], Error: errs[f.Name]}
		switch f.Kind {
		case Checkbox:
			c.Checked = c.Value == "true" || c.Value == "on"
		case Select:
			c.Choices = SelectOptions(f, current, refs[f.Ref], c.Value)
		}
		out = append(out, c)
	}
	return out
}

// SelectOptions lists the record's current value first, then every other
// reference option; optional selects also offer a blank choice. When the
// current id is missing from refs an option is synthesized from the
// denormalized display string so the select never shows an empty or
// invalid selection.
func SelectOptions(f Field, current domain.Record, refs []domain.Option, selected string) []Choice {
	var out []Choice
	var curID int64
	if current != nil {
		curID, _ = current.Int(f.Name)
	}
	if curID != 0 {
		label := current.Str(f.Display)
		for _, o := range refs {
			if o.ID == curID && label == "" {
				label = o.Label
			}
		}
		if label == "" {
			label = "#" + strconv.FormatInt(curID, 10)
		}
		out = append(out, Choice{Value: strconv.FormatInt(curID, 10), Label: label})
		if f.Optional {
			out = append(out, Choice{Value: "", Label: "None"})
		}
	} else {
		out = append(out, Choice{Value: "", Label: "Select " + strings.ToLower(f.Label)})
	}
	for _, o := range refs {
		if o.ID == curID {
			continue
		}
		out = append(out, Choice{Value: strconv.FormatInt(o.ID, 10), Label: o.Label})
	}
	for i := range out {
		out[i].Selected = out[i].Value == selected
	}
	return out
}
