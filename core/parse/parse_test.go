package parse

import (
	"reflect"
	"testing"
)

type triageResult struct {
	Category  string `json:"category"`
	Certainty int    `json:"certainty"`
}

func TestStringAsPrimitives(t *testing.T) {
	if got, err := StringAs[string]("plain text"); err != nil || got != "plain text" {
		t.Errorf("string: got %q, err %v", got, err)
	}
	if got, err := StringAs[int]("42"); err != nil || got != 42 {
		t.Errorf("int: got %d, err %v", got, err)
	}
	if got, err := StringAs[bool]("true"); err != nil || !got {
		t.Errorf("bool: got %v, err %v", got, err)
	}
	if got, err := StringAs[float64]("3.14"); err != nil || got != 3.14 {
		t.Errorf("float: got %v, err %v", got, err)
	}
	if got, err := StringAs[uint]("7"); err != nil || got != 7 {
		t.Errorf("uint: got %d, err %v", got, err)
	}
}

func TestStringAsPrimitiveErrors(t *testing.T) {
	if _, err := StringAs[int]("not a number"); err == nil {
		t.Error("expected an error for a non-numeric int")
	}
	if _, err := StringAs[bool]("maybe"); err == nil {
		t.Error("expected an error for an unparsable bool")
	}
}

func TestStringAsStruct(t *testing.T) {
	got, err := StringAs[triageResult](`{"category":"it","certainty":90}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Category != "it" || got.Certainty != 90 {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestStringAsRepairsMalformedJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unquoted keys and single quotes", `{category: 'it', certainty: 90}`},
		{"trailing comma", `{"category":"it","certainty":90,}`},
		{"fenced block", "```json\n{\"category\":\"it\",\"certainty\":90}\n```"},
		{"fenced and malformed", "```\n{category: 'it', certainty: 90}\n```"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := StringAs[triageResult](test.content)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Category != "it" || got.Certainty != 90 {
				t.Errorf("unexpected result: %+v", got)
			}
		})
	}
}

func TestStringAsSliceAndMap(t *testing.T) {
	gotSlice, err := StringAs[[]string](`["zh","ja","fr"]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(gotSlice, []string{"zh", "ja", "fr"}) {
		t.Errorf("unexpected slice: %v", gotSlice)
	}

	gotMap, err := StringAs[map[string]string](`{"lang":"fr"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMap["lang"] != "fr" {
		t.Errorf("unexpected map: %v", gotMap)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := StripCodeFence(test.content); got != test.want {
				t.Errorf("expected %q, got %q", test.want, got)
			}
		})
	}
}
