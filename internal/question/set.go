package question

import "fmt"

// ExpansionMode selects how a question set combines its axes.
type ExpansionMode int

const (
	// ModeCross expands the full Cartesian product across all axes.
	// The first-declared axis varies slowest, the last fastest.
	ModeCross ExpansionMode = iota

	// ModeZip pairs axes positionally, one question per index. All axes
	// must have the same length. This is a caller-chosen mode for inputs
	// that are already paired (e.g. an organization with its country),
	// never inferred from the data.
	ModeZip
)

// Axis is one named, ordered list of candidate substitution values.
type Axis struct {
	Name   string
	Values []string
}

// Set expands a template and its substitution axes into concrete questions.
//
// MaxQuestions caps the expansion: 0 means unlimited, any positive value
// truncates after the expansion order is fixed. Truncation is a cost
// control, not a sampling strategy; the retained prefix is not
// representative of the full product.
type Set struct {
	Axes         []Axis
	Template     string
	Schema       string
	MaxQuestions int
	Mode         ExpansionMode
}

// NewSet builds a cross-product question set over the given axes.
func NewSet(template, schema string, axes ...Axis) Set {
	return Set{Axes: axes, Template: template, Schema: schema, Mode: ModeCross}
}

// NewZippedSet builds a positionally paired question set. Use when the axes
// are pre-paired and a linear, not cross, combination is intended.
func NewZippedSet(template, schema string, axes ...Axis) Set {
	return Set{Axes: axes, Template: template, Schema: schema, Mode: ModeZip}
}

// Expand produces the ordered question list. Deterministic for fixed inputs.
// Returns a ConfigurationError when a template placeholder has no matching
// axis, an axis is never consumed by the template, or a referenced axis is
// empty.
func (s Set) Expand() ([]Question, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	var questions []Question
	switch s.Mode {
	case ModeZip:
		questions = s.expandZip()
	default:
		questions = s.expandCross()
	}

	if s.MaxQuestions > 0 && len(questions) > s.MaxQuestions {
		questions = questions[:s.MaxQuestions]
	}
	return questions, nil
}

// Size returns the number of questions Expand would yield, before the
// MaxQuestions cap is applied.
func (s Set) Size() int {
	if len(s.Axes) == 0 {
		return 0
	}
	if s.Mode == ModeZip {
		return len(s.Axes[0].Values)
	}
	n := 1
	for _, ax := range s.Axes {
		n *= len(ax.Values)
	}
	return n
}

func (s Set) validate() error {
	if s.Template == "" {
		return configErrorf("template is empty")
	}
	if len(s.Axes) == 0 {
		return configErrorf("no substitution axes declared")
	}

	byName := make(map[string]Axis, len(s.Axes))
	for _, ax := range s.Axes {
		if _, dup := byName[ax.Name]; dup {
			return configErrorf("axis %q declared twice", ax.Name)
		}
		byName[ax.Name] = ax
	}

	referenced := Placeholders(s.Template)
	refSet := make(map[string]bool, len(referenced))
	for _, name := range referenced {
		refSet[name] = true
		ax, ok := byName[name]
		if !ok {
			return configErrorf("template placeholder {%s} has no matching axis", name)
		}
		if len(ax.Values) == 0 {
			return configErrorf("axis %q is empty but referenced by the template", name)
		}
	}
	for _, ax := range s.Axes {
		if !refSet[ax.Name] {
			return configErrorf("axis %q is never consumed by the template", ax.Name)
		}
	}

	if s.Mode == ModeZip {
		want := len(s.Axes[0].Values)
		for _, ax := range s.Axes[1:] {
			if len(ax.Values) != want {
				return configErrorf("zipped axes must have equal length: %q has %d values, %q has %d",
					s.Axes[0].Name, want, ax.Name, len(ax.Values))
			}
		}
	}
	return nil
}

func (s Set) expandCross() []Question {
	total := s.Size()
	questions := make([]Question, 0, total)

	// Odometer over axis indices; the last-declared axis ticks fastest.
	idx := make([]int, len(s.Axes))
	for n := 0; n < total; n++ {
		bindings := make(map[string]string, len(s.Axes))
		for i, ax := range s.Axes {
			bindings[ax.Name] = ax.Values[idx[i]]
		}
		questions = append(questions, Question{
			Template: s.Template,
			Bindings: bindings,
			Schema:   s.Schema,
		})

		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(s.Axes[i].Values) {
				break
			}
			idx[i] = 0
		}
	}
	return questions
}

func (s Set) expandZip() []Question {
	n := len(s.Axes[0].Values)
	questions := make([]Question, 0, n)
	for i := 0; i < n; i++ {
		bindings := make(map[string]string, len(s.Axes))
		for _, ax := range s.Axes {
			bindings[ax.Name] = ax.Values[i]
		}
		questions = append(questions, Question{
			Template: s.Template,
			Bindings: bindings,
			Schema:   s.Schema,
		})
	}
	return questions
}

// String describes the set for logs.
func (s Set) String() string {
	mode := "cross"
	if s.Mode == ModeZip {
		mode = "zip"
	}
	return fmt.Sprintf("Set{axes=%d mode=%s size=%d cap=%d}", len(s.Axes), mode, s.Size(), s.MaxQuestions)
}
