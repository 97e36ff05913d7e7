package domain

// AnswerValue is what the quote form records for one question. The
// wire shapes vary with the question type and client version: a single
// label string, a list of labels (multi-select), or records exposing a
// "text" field (options chosen with their metadata attached). All of
// them flatten through SelectedLabels.
type AnswerValue any

// Answers maps question id to the collected answer for that question.
type Answers map[string]AnswerValue

// SelectedLabels normalizes any supported answer shape into the flat
// set of chosen option labels. Unknown shapes yield an empty set, which
// evaluates as "nothing selected" rather than failing.
func SelectedLabels(value AnswerValue) map[string]bool {
	selected := make(map[string]bool)
	collectLabels(value, selected)
	return selected
}

func collectLabels(value AnswerValue, into map[string]bool) {
	switch v := value.(type) {
	case nil:
	case string:
		if v != "" {
			into[v] = true
		}
	case []string:
		for _, s := range v {
			if s != "" {
				into[s] = true
			}
		}
	case Option:
		collectLabels(v.Text, into)
	case *Option:
		if v != nil {
			collectLabels(v.Text, into)
		}
	case map[string]any:
		if text, ok := v["text"].(string); ok {
			collectLabels(text, into)
		}
	case []any:
		for _, item := range v {
			collectLabels(item, into)
		}
	}
}
