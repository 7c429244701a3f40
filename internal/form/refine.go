package form

// Refinement is a whole-form rule. Its message is attached to Target.
type Refinement struct {
	Target  string
	Message string
	Valid   func(Patch) bool
}

// ExactlyOneOf requires that exactly one of fields holds a non-nil value.
// Zero and two-or-more are rejected alike.
func ExactlyOneOf(target, msg string, fields ...string) Refinement {
	return Refinement{
		Target:  target,
		Message: msg,
		Valid: func(p Patch) bool {
			n := 0
			for _, f := range fields {
				if v, ok := p[f]; ok && v != nil {
					n++
				}
			}
			return n == 1
		},
	}
}

// Equal requires two fields to hold the same value. Both absent passes,
// which lets an optional password pair be left blank on edit.
func Equal(a, b, msg string) Refinement {
	return Refinement{
		Target:  b,
		Message: msg,
		Valid: func(p Patch) bool {
			return p[a] == p[b]
		},
	}
}
