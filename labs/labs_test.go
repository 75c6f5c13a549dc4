package labs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leofalp/flowlab/core/state"
	"github.com/leofalp/flowlab/providers/ai"
	"github.com/leofalp/flowlab/providers/fetch"
)

// scriptedCompleter answers by matching a substring of the system prompt,
// so each agent of a lab can be given its own canned reply.
type scriptedCompleter struct {
	answers map[string]string
	failing error
}

func (completer *scriptedCompleter) Complete(ctx context.Context, request ai.Request) (string, error) {
	if completer.failing != nil {
		return "", completer.failing
	}
	for marker, answer := range completer.answers {
		if strings.Contains(request.SystemPrompt, marker) {
			return answer, nil
		}
	}
	return "", errors.New("no scripted answer for request")
}

func TestContractReviewRunsAllStages(t *testing.T) {
	completer := &scriptedCompleter{answers: map[string]string{
		"contract language reviewer": "clarity findings",
		"legal risk assessor":        "risk findings",
		"contract revision":          "revision findings",
	}}

	workflow, err := ContractReview(completer)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	finalRecord, err := workflow.Run(context.Background(), state.Record{FieldContractContent: "the contract text"})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	if got := finalRecord.String(FieldTextReview); got != "clarity findings" {
		t.Errorf("unexpected text review: %q", got)
	}
	if got := finalRecord.String(FieldLegalReview); got != "risk findings" {
		t.Errorf("unexpected legal review: %q", got)
	}
	if got := finalRecord.String(FieldRevisionSuggestions); got != "revision findings" {
		t.Errorf("unexpected revision suggestions: %q", got)
	}
}

func TestContractReviewPropagatesCompleterFailure(t *testing.T) {
	completerFailure := errors.New("provider unavailable")
	workflow, err := ContractReview(&scriptedCompleter{failing: completerFailure})
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	if _, err := workflow.Run(context.Background(), state.Record{FieldContractContent: "text"}); !errors.Is(err, completerFailure) {
		t.Errorf("expected the completer failure, got %v", err)
	}
}

func TestSupportRoutesToSpecialist(t *testing.T) {
	tests := []struct {
		name         string
		triageAnswer string
		wantCategory string
		wantResponse string
	}{
		{"hr question", `{"category": "hr"}`, CategoryHR, "hr answer"},
		{"it question", `{"category": "it"}`, CategoryIT, "it answer"},
		{"compliance question", `{"category": "compliance"}`, CategoryCompliance, "compliance answer"},
		{"fenced json", "```json\n{\"category\": \"hr\"}\n```", CategoryHR, "hr answer"},
		{"malformed json repaired", `{category: 'compliance'}`, CategoryCompliance, "compliance answer"},
		{"unknown category falls back to it", `{"category": "facilities"}`, CategoryIT, "it answer"},
		{"nonsense falls back to it", "I think this is about printers", CategoryIT, "it answer"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			completer := &scriptedCompleter{answers: map[string]string{
				"triage agent":       test.triageAnswer,
				"HR support":         "hr answer",
				"IT support":         "it answer",
				"compliance support": "compliance answer",
			}}

			workflow, err := Support(completer)
			if err != nil {
				t.Fatalf("unexpected build error: %v", err)
			}

			finalRecord, err := workflow.Run(context.Background(), state.Record{FieldUserQuestion: "how do I do the thing?"})
			if err != nil {
				t.Fatalf("unexpected run error: %v", err)
			}

			if got := finalRecord.String(FieldQuestionCategory); got != test.wantCategory {
				t.Errorf("expected category %q, got %q", test.wantCategory, got)
			}
			if got := finalRecord.String(FieldAgentResponse); got != test.wantResponse {
				t.Errorf("expected response %q, got %q", test.wantResponse, got)
			}
		})
	}
}

func TestTranslationFansOutAndAggregates(t *testing.T) {
	completer := &scriptedCompleter{answers: map[string]string{
		"Traditional Chinese translator": "chinese text",
		"Japanese translator":            "japanese text",
		"French translator":              "french text",
	}}

	workflow, err := Translation(completer)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	finalRecord, err := workflow.Run(context.Background(), state.Record{FieldSourceContent: "the manual"})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	if got := finalRecord.String(FieldChineseTranslation); got != "chinese text" {
		t.Errorf("unexpected chinese translation: %q", got)
	}
	if got := finalRecord.String(FieldJapaneseTranslation); got != "japanese text" {
		t.Errorf("unexpected japanese translation: %q", got)
	}
	if got := finalRecord.String(FieldFrenchTranslation); got != "french text" {
		t.Errorf("unexpected french translation: %q", got)
	}

	report := finalRecord.String(FieldFinalReport)
	for _, fragment := range []string{"the manual", "chinese text", "japanese text", "french text"} {
		if !strings.Contains(report, fragment) {
			t.Errorf("expected the report to contain %q, got %q", fragment, report)
		}
	}
}

func TestResearchReadsAndSummarizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "text/html")
		writer.Write([]byte(`<html><body><h1>Quarterly Report</h1><p>Revenue grew.</p></body></html>`))
	}))
	defer server.Close()

	completer := &scriptedCompleter{answers: map[string]string{
		"research assistant": "the page reports revenue growth",
	}}

	workflow, err := Research(completer, fetch.NewReader())
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	finalRecord, err := workflow.Run(context.Background(), state.Record{FieldPageURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	if !strings.Contains(finalRecord.String(FieldPageMarkdown), "Quarterly Report") {
		t.Errorf("expected the page markdown in state, got %q", finalRecord.String(FieldPageMarkdown))
	}
	if got := finalRecord.String(FieldSummary); got != "the page reports revenue growth" {
		t.Errorf("unexpected summary: %q", got)
	}
}
