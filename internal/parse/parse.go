package parse

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Candidate is one raw (label, confidence) pair extracted from a completion
// response before taxonomy filtering. Confidence stays untyped here because
// models return numbers, numeric strings, or garbage interchangeably.
type Candidate struct {
	Label      string
	Confidence any
}

// arrayKeys are object keys commonly used by models to wrap the label array.
var arrayKeys = []string{"output", "result", "labels", "data", "classifications", "predictions", "items"}

const nestedSearchDepth = 5

// strategy is one tagged extraction attempt over the decoded payload.
// Strategies run in order; the first match wins.
type strategy struct {
	name    string
	extract func(v any) ([]any, bool)
}

var strategies = []strategy{
	{"array", extractArray},
	{"known-key", extractKnownKey},
	{"nested", extractNested},
	{"flat-pairs", extractFlatPairs},
}

// Parse turns a raw completion text into candidate label pairs. The service
// is not guaranteed to return a clean JSON array, so four shapes are
// tolerated: a direct array, an object wrapping the array under a known key,
// an array nested at unknown depth, and a flat object with paired
// label/confidence keys. Every failure condition yields its own diagnostic.
func Parse(raw string) ([]Candidate, error) {
	cleaned := StripFences(raw)

	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch decoded.(type) {
	case []any, map[string]any:
	default:
		return nil, fmt.Errorf("response must be a JSON array or object, got %T", decoded)
	}

	for _, s := range strategies {
		items, ok := s.extract(decoded)
		if !ok {
			continue
		}
		cands, err := validateItems(items)
		if err != nil {
			return nil, err
		}
		return cands, nil
	}

	obj := decoded.(map[string]any)
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return nil, fmt.Errorf("no label array found in response (keys: %s)", strings.Join(keys, ", "))
}

// StripFences removes a markdown code-fence wrapper (```json ... ```).
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func extractArray(v any) ([]any, bool) {
	arr, ok := v.([]any)
	return arr, ok
}

func extractKnownKey(v any) ([]any, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	for _, key := range arrayKeys {
		if arr, ok := obj[key].([]any); ok {
			return arr, true
		}
	}
	return nil, false
}

func extractNested(v any) ([]any, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	for _, value := range obj {
		if arr := findLabelArray(value, nestedSearchDepth); arr != nil {
			return arr, true
		}
	}
	return nil, false
}

// findLabelArray walks nested values looking for a non-empty array whose
// first element is an object carrying a "label" or "name" field.
func findLabelArray(v any, depth int) []any {
	if depth <= 0 {
		return nil
	}
	switch t := v.(type) {
	case []any:
		if len(t) == 0 {
			return nil
		}
		first, ok := t[0].(map[string]any)
		if !ok {
			return nil
		}
		if _, has := first["label"]; has {
			return t
		}
		if _, has := first["name"]; has {
			return t
		}
	case map[string]any:
		for _, value := range t {
			if arr := findLabelArray(value, depth-1); arr != nil {
				return arr
			}
		}
	}
	return nil
}

// extractFlatPairs reconstructs the array from flat objects such as
// {"label1": "Đất đai", "confidence1": 0.9, "label2": ..., "confidence2": ...}
// or from unnumbered but equal-length label*/conf* key sets paired by
// sorted key order.
func extractFlatPairs(v any) ([]any, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}

	var items []any
	for i := 1; ; i++ {
		label, hasLabel := obj[fmt.Sprintf("label%d", i)]
		conf, hasConf := obj[fmt.Sprintf("confidence%d", i)]
		if !hasLabel || !hasConf {
			break
		}
		f, ok := toFloat(conf)
		if !ok {
			return nil, false
		}
		items = append(items, map[string]any{"label": label, "confidence": f})
	}
	if len(items) > 0 {
		return items, true
	}

	var labelKeys, confKeys []string
	for k := range obj {
		lower := strings.ToLower(k)
		switch {
		case strings.Contains(lower, "label"):
			labelKeys = append(labelKeys, k)
		case strings.Contains(lower, "confidence") || strings.Contains(lower, "conf"):
			confKeys = append(confKeys, k)
		}
	}
	if len(labelKeys) == 0 || len(labelKeys) != len(confKeys) {
		return nil, false
	}
	sort.Strings(labelKeys)
	sort.Strings(confKeys)
	for i := range labelKeys {
		f, ok := toFloat(obj[confKeys[i]])
		if !ok {
			return nil, false
		}
		items = append(items, map[string]any{"label": obj[labelKeys[i]], "confidence": f})
	}
	return items, true
}

func validateItems(items []any) ([]Candidate, error) {
	cands := make([]Candidate, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d is not an object", i)
		}

		label, has := obj["label"]
		if !has {
			return nil, fmt.Errorf("item %d missing 'label' field", i)
		}
		name, ok := label.(string)
		if !ok {
			return nil, fmt.Errorf("item %d label must be a string", i)
		}

		conf, has := obj["confidence"]
		if !has {
			return nil, fmt.Errorf("item %d missing 'confidence' field", i)
		}
		f, ok := toFloat(conf)
		if !ok {
			return nil, fmt.Errorf("item %d confidence must be a number", i)
		}
		if f < 0.0 || f > 1.0 {
			return nil, fmt.Errorf("item %d confidence must be between 0.0 and 1.0", i)
		}

		cands = append(cands, Candidate{Label: name, Confidence: conf})
	}
	return cands, nil
}

// toFloat coerces JSON scalar values (numbers or numeric strings) to float64.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
