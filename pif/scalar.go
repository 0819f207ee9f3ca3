package pif

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/citrinelab/citrine/pkg/errors"
)

// Scalar is a single PIF value. On the wire a scalar may appear as a bare
// JSON number, a string (numeric, "5.3+/-0.1", or free text like "BCC"), or
// an object {"value": ..., "uncertainty": ...}. All three decode into this
// type; encoding uses the object form only when an uncertainty is present.
type Scalar struct {
	raw            string
	num            float64
	numeric        bool
	uncertainty    float64
	hasUncertainty bool
}

// NewScalar creates a numeric scalar.
func NewScalar(value float64) Scalar {
	return Scalar{num: value, numeric: true}
}

// NewScalarWithUncertainty creates a numeric scalar with a one-sigma
// uncertainty.
func NewScalarWithUncertainty(value, uncertainty float64) Scalar {
	return Scalar{num: value, numeric: true, uncertainty: uncertainty, hasUncertainty: true}
}

// NewStringScalar creates a textual scalar. If the text parses as a number
// the scalar is numeric as well.
func NewStringScalar(value string) Scalar {
	s := Scalar{raw: value}
	if n, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		s.num = n
		s.numeric = true
	}
	return s
}

// ParseScalar interprets a textual value the way string scalars decode:
// "5.3" is numeric, "5.3+/-0.1" carries an uncertainty, anything else is
// free text.
func ParseScalar(text string) Scalar {
	return parseScalarText(text)
}

// IsNumeric reports whether the scalar holds a number.
func (s Scalar) IsNumeric() bool { return s.numeric }

// Number returns the numeric value, 0 for textual scalars.
func (s Scalar) Number() float64 { return s.num }

// Uncertainty returns the one-sigma uncertainty and whether one was given.
func (s Scalar) Uncertainty() (float64, bool) { return s.uncertainty, s.hasUncertainty }

// String returns the textual form of the scalar.
func (s Scalar) String() string {
	if s.raw != "" {
		return s.raw
	}
	if !s.numeric {
		return ""
	}
	text := strconv.FormatFloat(s.num, 'g', -1, 64)
	if s.hasUncertainty {
		text += "+/-" + strconv.FormatFloat(s.uncertainty, 'g', -1, 64)
	}
	return text
}

// scalarObject is the wire object form.
type scalarObject struct {
	Value       json.RawMessage `json:"value"`
	Uncertainty *float64        `json:"uncertainty,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.numeric && s.hasUncertainty {
		return json.Marshal(struct {
			Value       float64 `json:"value"`
			Uncertainty float64 `json:"uncertainty"`
		}{s.num, s.uncertainty})
	}
	if s.numeric && s.raw == "" {
		return json.Marshal(s.num)
	}
	return json.Marshal(s.raw)
}

// UnmarshalJSON implements json.Unmarshaler for the three wire forms.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*s = Scalar{}
		return nil
	}

	switch trimmed[0] {
	case '{':
		var obj scalarObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return errors.NewParseError(trimmed, -1, "malformed scalar object")
		}
		if len(obj.Value) > 0 {
			var inner Scalar
			if err := inner.UnmarshalJSON(obj.Value); err != nil {
				return err
			}
			*s = inner
		} else {
			*s = Scalar{}
		}
		if obj.Uncertainty != nil {
			s.uncertainty = *obj.Uncertainty
			s.hasUncertainty = true
		}
		return nil
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return errors.NewParseError(trimmed, -1, "malformed scalar string")
		}
		*s = parseScalarText(text)
		return nil
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return errors.NewParseError(trimmed, -1, "scalar is neither number, string, nor object")
		}
		*s = NewScalar(n)
		return nil
	}
}

// uncertainty separators accepted in string scalars, checked in order.
var uncertaintySeps = []string{"+/-", "+-", "±"}

// parseScalarText interprets a string scalar, splitting off a trailing
// uncertainty when one of the separators is present and both halves parse
// as numbers. Anything else is kept as free text.
func parseScalarText(text string) Scalar {
	for _, sep := range uncertaintySeps {
		idx := strings.Index(text, sep)
		if idx < 0 {
			continue
		}
		left := strings.TrimSpace(text[:idx])
		right := strings.TrimSpace(text[idx+len(sep):])
		v, errV := strconv.ParseFloat(left, 64)
		u, errU := strconv.ParseFloat(right, 64)
		if errV == nil && errU == nil {
			return NewScalarWithUncertainty(v, u)
		}
	}
	return NewStringScalar(text)
}
