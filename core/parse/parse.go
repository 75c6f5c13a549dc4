package parse

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// StringAs parses raw model output into the target type T.
//
// Primitive targets (string, bool, int, uint, float) are converted directly.
// Complex targets (structs, maps, slices) go through JSON unmarshaling with a
// layered recovery strategy: markdown code fences are stripped first, and if
// unmarshaling still fails the content is run through jsonrepair and retried.
// Models routinely emit single quotes, unquoted keys, trailing commas, or a
// fenced block around otherwise valid JSON; recovery handles all of those.
//
// Example usage:
//
//	type Triage struct {
//	    Category string `json:"category"`
//	}
//
//	// Valid JSON
//	triage, err := parse.StringAs[Triage](`{"category":"it"}`)
//
//	// Fenced and slightly malformed JSON (auto-repaired)
//	triage, err := parse.StringAs[Triage]("```json\n{category: 'it'}\n```")
//
//	// Primitives
//	count, err := parse.StringAs[int]("42")
func StringAs[T any](content string) (T, error) {
	var result T

	cleaned := StripCodeFence(content)

	switch reflect.TypeFor[T]().Kind() {
	case reflect.String:
		reflect.ValueOf(&result).Elem().SetString(cleaned)
		return result, nil

	case reflect.Bool:
		value, err := strconv.ParseBool(strings.TrimSpace(cleaned))
		if err != nil {
			return result, fmt.Errorf("failed to parse content as bool: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetBool(value)
		return result, nil

	case reflect.Float32, reflect.Float64:
		value, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as float: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetFloat(value)
		return result, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		value, err := strconv.ParseInt(strings.TrimSpace(cleaned), 10, 64)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as int: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetInt(value)
		return result, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		value, err := strconv.ParseUint(strings.TrimSpace(cleaned), 10, 64)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as uint: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetUint(value)
		return result, nil

	default:
		if err := json.Unmarshal([]byte(cleaned), &result); err == nil {
			return result, nil
		}

		repaired, repairErr := jsonrepair.JSONRepair(cleaned)
		if repairErr != nil {
			return result, fmt.Errorf("failed to parse content as %T: repair failed: %w", result, repairErr)
		}

		if err := json.Unmarshal([]byte(repaired), &result); err != nil {
			return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w (repaired: %s)",
				result, err, repaired)
		}
		return result, nil
	}
}

// StripCodeFence removes a surrounding markdown code fence (``` or ```json)
// from model output. Content without a fence is returned trimmed but
// otherwise untouched.
func StripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)

	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	withoutOpening := strings.TrimPrefix(trimmed, "```")
	if newline := strings.IndexByte(withoutOpening, '\n'); newline >= 0 {
		// Drop the language tag on the opening fence line, if any.
		firstLine := strings.TrimSpace(withoutOpening[:newline])
		if firstLine == "" || isFenceLanguageTag(firstLine) {
			withoutOpening = withoutOpening[newline+1:]
		}
	}

	withoutClosing := strings.TrimSuffix(strings.TrimSpace(withoutOpening), "```")
	return strings.TrimSpace(withoutClosing)
}

// isFenceLanguageTag reports whether a fence header looks like a language
// tag (letters and digits only), as opposed to content starting with ```.
func isFenceLanguageTag(header string) bool {
	for _, char := range header {
		if (char < 'a' || char > 'z') && (char < 'A' || char > 'Z') && (char < '0' || char > '9') {
			return false
		}
	}
	return true
}
