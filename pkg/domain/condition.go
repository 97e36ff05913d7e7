package domain

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Operator combines answer values within a condition, or conditions
// within a group.
type Operator string

const (
	// OperatorOR is satisfied by any overlap with the expected values.
	OperatorOR Operator = "OR"
	// OperatorAND requires every expected value to be selected.
	OperatorAND Operator = "AND"
)

// Valid reports whether the operator is one of the two known values.
func (o Operator) Valid() bool {
	return o == OperatorOR || o == OperatorAND
}

// Condition compares one source question's collected answer against a
// configured set of option labels.
type Condition struct {
	SourceID string   `json:"source_question_id" yaml:"source_question_id" mapstructure:"source_question_id"`
	Operator Operator `json:"operator" yaml:"operator" mapstructure:"operator"`
	Values   []string `json:"values" yaml:"values" mapstructure:"values"`
}

// ConditionalDisplay is the full visibility rule for a question: one or
// more conditions plus a group operator combining their results.
type ConditionalDisplay struct {
	Conditions    []Condition `json:"conditions" yaml:"conditions" mapstructure:"conditions"`
	GroupOperator Operator    `json:"group_operator" yaml:"group_operator" mapstructure:"group_operator"`
}

// legacyConditional is the historical single-condition record shape,
// with the condition fields inlined at the top level.
type legacyConditional struct {
	SourceID string   `json:"dependent_on_question_id" yaml:"dependent_on_question_id" mapstructure:"dependent_on_question_id"`
	Values   []string `json:"show_when_answer_equals" yaml:"show_when_answer_equals" mapstructure:"show_when_answer_equals"`
	Operator Operator `json:"logical_operator" yaml:"logical_operator" mapstructure:"logical_operator"`
}

// Empty reports whether the rule carries no conditions at all, either
// because it is absent or because a malformed record degraded on load.
// An empty rule never restricts visibility.
func (cd *ConditionalDisplay) Empty() bool {
	return cd == nil || len(cd.Conditions) == 0
}

// Clone returns a deep copy, or nil for nil.
func (cd *ConditionalDisplay) Clone() *ConditionalDisplay {
	if cd == nil {
		return nil
	}
	out := &ConditionalDisplay{
		GroupOperator: cd.GroupOperator,
		Conditions:    make([]Condition, len(cd.Conditions)),
	}
	for i, c := range cd.Conditions {
		cc := c
		cc.Values = make([]string, len(c.Values))
		copy(cc.Values, c.Values)
		out.Conditions[i] = cc
	}
	return out
}

// UnmarshalJSON upgrades the legacy single-condition shape to the
// canonical form transparently, so stored records of either vintage
// decode into the same in-memory representation. MarshalJSON is the
// default: new saves always persist the canonical shape.
func (cd *ConditionalDisplay) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("conditional_display is not an object: %w", err)
	}

	cd.setNormalized(NormalizeConditional(raw))
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML-backed stores.
func (cd *ConditionalDisplay) UnmarshalYAML(unmarshal func(any) error) error {
	var raw map[string]any
	if err := unmarshal(&raw); err != nil {
		return fmt.Errorf("conditional_display is not a mapping: %w", err)
	}

	cd.setNormalized(NormalizeConditional(raw))
	return nil
}

// setNormalized absorbs a normalization result on the decode path. A
// malformed rule becomes the empty rule (zero conditions), which every
// consumer reads as "always visible"; failing the whole question decode
// over one corrupt rule would take the form down instead.
func (cd *ConditionalDisplay) setNormalized(norm *ConditionalDisplay, err error) {
	if err != nil || norm == nil {
		*cd = ConditionalDisplay{}
		return
	}
	*cd = *norm
}

// NormalizeConditional parses any historically valid conditional_display
// value into the canonical form. It accepts:
//
//   - nil (question is unconditional) -> nil
//   - a canonical *ConditionalDisplay or ConditionalDisplay -> deep copy
//   - a decoded map in canonical shape (has "conditions")
//   - a decoded map in the legacy single-condition shape
//
// Anything else returns ErrMalformedConditional; callers degrade that to
// "no condition" so a corrupt record renders always-visible instead of
// crashing the form. The input is never mutated.
func NormalizeConditional(raw any) (*ConditionalDisplay, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case *ConditionalDisplay:
		if v == nil || len(v.Conditions) == 0 {
			return nil, nil
		}
		return v.Clone(), nil
	case ConditionalDisplay:
		if len(v.Conditions) == 0 {
			return nil, nil
		}
		return v.Clone(), nil
	case map[string]any:
		return normalizeMap(v)
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrMalformedConditional, raw)
	}
}

func normalizeMap(raw map[string]any) (*ConditionalDisplay, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	if _, ok := raw["conditions"]; ok {
		var cd ConditionalDisplay
		if err := decodeStrictEnough(raw, &cd); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedConditional, err)
		}
		if len(cd.Conditions) == 0 {
			return nil, nil
		}
		applyDefaults(&cd)
		return &cd, nil
	}

	if _, ok := raw["dependent_on_question_id"]; ok {
		var legacy legacyConditional
		if err := decodeStrictEnough(raw, &legacy); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedConditional, err)
		}
		cd := ConditionalDisplay{
			GroupOperator: OperatorAND,
			Conditions: []Condition{{
				SourceID: legacy.SourceID,
				Operator: legacy.Operator,
				Values:   legacy.Values,
			}},
		}
		applyDefaults(&cd)
		return &cd, nil
	}

	return nil, fmt.Errorf("%w: neither canonical nor legacy shape", ErrMalformedConditional)
}

// applyDefaults fills missing operators: AND for the group (every
// condition must hold) and OR per condition (any expected value
// matches), which is how legacy records without an explicit
// logical_operator behaved.
func applyDefaults(cd *ConditionalDisplay) {
	if !cd.GroupOperator.Valid() {
		cd.GroupOperator = OperatorAND
	}
	for i := range cd.Conditions {
		if !cd.Conditions[i].Operator.Valid() {
			cd.Conditions[i].Operator = OperatorOR
		}
	}
}

func decodeStrictEnough(raw map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
