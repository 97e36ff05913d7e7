package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// QuestionStatus marks whether a question is offered to customers.
type QuestionStatus string

const (
	StatusActive   QuestionStatus = "active"
	StatusInactive QuestionStatus = "inactive"
)

// Option is one selectable answer of a multiple-choice question.
// Stored records carry options either as plain label strings or as
// objects with a "text" label plus optional cost/image metadata; both
// shapes decode into this struct.
type Option struct {
	Text     string  `json:"text" yaml:"text" mapstructure:"text"`
	Cost     float64 `json:"cost,omitempty" yaml:"cost,omitempty" mapstructure:"cost"`
	ImageURL string  `json:"image_url,omitempty" yaml:"image_url,omitempty" mapstructure:"image_url"`
}

// UnmarshalJSON accepts both the bare-string and the object shape.
func (o *Option) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*o = Option{Text: label}
		return nil
	}

	type plain Option
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("answer option is neither string nor object: %w", err)
	}
	*o = Option(p)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML-backed stores.
func (o *Option) UnmarshalYAML(unmarshal func(any) error) error {
	var label string
	if err := unmarshal(&label); err == nil {
		*o = Option{Text: label}
		return nil
	}

	type plain Option
	var p plain
	if err := unmarshal(&p); err != nil {
		return fmt.Errorf("answer option is neither string nor object: %w", err)
	}
	*o = Option(p)
	return nil
}

// Question is one item of an intake form, positioned by step and
// in-step order. Questions are soft-deleted, never removed, so answers
// already collected against them keep a valid reference.
type Question struct {
	ID             string              `json:"question_id" yaml:"question_id" mapstructure:"question_id"`
	Step           int                 `json:"step_number" yaml:"step_number" mapstructure:"step_number"`
	Order          int                 `json:"display_order_in_step" yaml:"display_order_in_step" mapstructure:"display_order_in_step"`
	Text           string              `json:"question_text" yaml:"question_text" mapstructure:"question_text"`
	MultipleChoice bool                `json:"is_multiple_choice" yaml:"is_multiple_choice" mapstructure:"is_multiple_choice"`
	MultiSelect    bool                `json:"allow_multiple_selections" yaml:"allow_multiple_selections" mapstructure:"allow_multiple_selections"`
	Options        []Option            `json:"answer_options,omitempty" yaml:"answer_options,omitempty" mapstructure:"answer_options"`
	Status         QuestionStatus      `json:"status" yaml:"status" mapstructure:"status"`
	Deleted        bool                `json:"is_deleted,omitempty" yaml:"is_deleted,omitempty" mapstructure:"is_deleted"`
	Conditional    *ConditionalDisplay `json:"conditional_display,omitempty" yaml:"conditional_display,omitempty" mapstructure:"conditional_display"`
}

// OptionLabels returns the ordered selectable labels of the question.
// Non-multiple-choice questions have no selectable set and therefore
// cannot act as condition sources.
func (q Question) OptionLabels() []string {
	if !q.MultipleChoice || len(q.Options) == 0 {
		return nil
	}
	labels := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		labels = append(labels, opt.Text)
	}
	return labels
}

// Clone returns a deep copy so stores can hand out isolated values.
func (q Question) Clone() Question {
	out := q
	if q.Options != nil {
		out.Options = make([]Option, len(q.Options))
		copy(out.Options, q.Options)
	}
	out.Conditional = q.Conditional.Clone()
	return out
}

// Before reports whether q sits strictly earlier in flow order than
// other (step first, then in-step order).
func (q Question) Before(other Question) bool {
	if q.Step != other.Step {
		return q.Step < other.Step
	}
	return q.Order < other.Order
}

// SortQuestions orders a list by step then in-step order, in place.
// Stores do not guarantee ordering; callers normalize with this.
func SortQuestions(questions []Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Before(questions[j])
	})
}
