package labs

import (
	"context"
	"fmt"

	"github.com/leofalp/flowlab/core/graph"
	"github.com/leofalp/flowlab/core/state"
	"github.com/leofalp/flowlab/providers/ai"
)

// Contract review field names.
const (
	FieldContractContent     = "contract_content"
	FieldTextReview          = "text_review"
	FieldLegalReview         = "legal_review"
	FieldRevisionSuggestions = "revision_suggestions"
)

const textReviewPrompt = `You are a professional contract language reviewer.

Review the wording of the contract and point out:
1. Passages whose wording is unclear
2. Terms that could be read in more than one way
3. Vague or undefined clauses
4. Potential gray areas

List each finding with the clause it refers to, then give an overall
clarity score from 1 to 10.`

const legalReviewPrompt = `You are a professional legal risk assessor.

Evaluate the legal risks of the contract:
1. One-sided clauses that clearly favor one party
2. Whether liability limits are reasonable
3. Clauses that may violate consumer protection or other regulations
4. Overly broad disclaimers
5. Whether rights and obligations are balanced

For each risk state the clause, a risk level (high/medium/low), and the
possible legal consequences. Finish with an overall risk score from 1 to 10,
where 10 is the highest risk.`

const revisionPrompt = `You are a professional contract revision consultant.

Based on the language review and the legal risk assessment, propose concrete
revisions: suggest a fix for each problematic clause, show the before and
after wording, explain the reason, and order the suggestions from most to
least important. Revised clauses must be unambiguous, balanced, compliant,
and protect both parties.`

// ContractReview builds the sequential review pipeline: three specialists run
// one after another, each reading the previous stage's finding from the state
// record and contributing its own field.
//
//	Start -> text_review -> legal_review -> revision_suggestions -> End
//
// The initial record must carry FieldContractContent.
func ContractReview(completer ai.Completer, opts ...graph.Option) (*graph.Graph, error) {
	textReview := func(ctx context.Context, snapshot state.Record) (any, error) {
		finding, err := completer.Complete(ctx, ai.Request{
			SystemPrompt: textReviewPrompt,
			Prompt:       fmt.Sprintf("Review the following contract:\n\n%s", snapshot.String(FieldContractContent)),
			Temperature:  ai.TemperatureOf(0.3),
		})
		if err != nil {
			return nil, err
		}
		return state.Update{FieldTextReview: finding}, nil
	}

	legalReview := func(ctx context.Context, snapshot state.Record) (any, error) {
		finding, err := completer.Complete(ctx, ai.Request{
			SystemPrompt: legalReviewPrompt,
			Prompt: fmt.Sprintf("Assess the legal risks of the following contract:\n\n[Contract]\n%s\n\n[Language review, for reference]\n%s",
				snapshot.String(FieldContractContent), snapshot.String(FieldTextReview)),
			Temperature: ai.TemperatureOf(0.3),
		})
		if err != nil {
			return nil, err
		}
		return state.Update{FieldLegalReview: finding}, nil
	}

	revisionSuggestions := func(ctx context.Context, snapshot state.Record) (any, error) {
		finding, err := completer.Complete(ctx, ai.Request{
			SystemPrompt: revisionPrompt,
			Prompt: fmt.Sprintf("Propose revisions based on these review results:\n\n[Original contract]\n%s\n\n[Language review]\n%s\n\n[Legal risk assessment]\n%s",
				snapshot.String(FieldContractContent), snapshot.String(FieldTextReview), snapshot.String(FieldLegalReview)),
			Temperature: ai.TemperatureOf(0.3),
		})
		if err != nil {
			return nil, err
		}
		return state.Update{FieldRevisionSuggestions: finding}, nil
	}

	return graph.NewBuilder(opts...).
		AddNode("text_review", textReview).
		AddNode("legal_review", legalReview).
		AddNode("revision_suggestions", revisionSuggestions).
		SetEntry("text_review").
		AddEdge("text_review", "legal_review").
		AddEdge("legal_review", "revision_suggestions").
		AddEdge("revision_suggestions", graph.End).
		Build()
}
