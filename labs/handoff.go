package labs

import (
	"context"
	"fmt"

	"github.com/leofalp/flowlab/core/graph"
	"github.com/leofalp/flowlab/core/parse"
	"github.com/leofalp/flowlab/core/state"
	"github.com/leofalp/flowlab/providers/ai"
)

// Support triage field names.
const (
	FieldUserQuestion     = "user_question"
	FieldQuestionCategory = "question_category"
	FieldAgentResponse    = "agent_response"
)

// Support categories. Unrecognized triage output falls back to CategoryIT,
// the most common kind of question.
const (
	CategoryHR         = "hr"
	CategoryIT         = "it"
	CategoryCompliance = "compliance"
)

const triagePrompt = `You are the triage agent of an internal employee support system.
Analyze the employee's question and decide which department should handle it.

Categories:
1. hr - payroll, benefits, leave, attendance, recruiting, training, performance reviews, employee relations
2. it - system usage, account management, password resets, software installation, hardware issues, network, VPN, email
3. compliance - regulations, company policy, internal audit, risk management, data protection, NDAs

Answer with a JSON object of the form {"category": "hr"} and nothing else.`

const hrPrompt = `You are the internal HR support specialist.
You answer employee questions about payroll and bonuses, benefits, leave
policies, attendance rules, internal transfers and promotions, and training.
Answer in a professional, friendly tone. If the question falls outside your
area, suggest the right department to contact.`

const itPrompt = `You are the internal IT support specialist.
You answer employee questions about accounts and permissions, internal
systems, software such as Office 365 and VPN clients, hardware issues,
network connectivity, and information security. Answer patiently; for
technical issues give step-by-step instructions, and direct the employee to
file a service ticket when on-site support is needed.`

const compliancePrompt = `You are the internal compliance support specialist.
You answer employee questions about regulations, company policy and codes of
conduct, data protection, NDAs, conflicts of interest, internal audits, and
risk management. Answer carefully; for questions with legal exposure, advise
the employee to consult the legal department.`

// triageDecision is the JSON shape the triage model is asked to produce.
type triageDecision struct {
	Category string `json:"category"`
}

// Support builds the handoff topology: a triage agent classifies the
// question, and a conditional edge hands the conversation to the matching
// specialist.
//
//	Start -> triage -(question_category)-> hr | it | compliance -> End
//
// The initial record must carry FieldUserQuestion. The triage output is
// decoded leniently (code fences and malformed JSON are repaired); anything
// that still is not a known category falls back to CategoryIT.
func Support(completer ai.Completer, opts ...graph.Option) (*graph.Graph, error) {
	triage := func(ctx context.Context, snapshot state.Record) (any, error) {
		answer, err := completer.Complete(ctx, ai.Request{
			SystemPrompt: triagePrompt,
			Prompt:       fmt.Sprintf("Classify the following question: %s", snapshot.String(FieldUserQuestion)),
			Temperature:  ai.TemperatureOf(0.0),
		})
		if err != nil {
			return nil, err
		}

		category := CategoryIT
		if decision, parseErr := parse.StringAs[triageDecision](answer); parseErr == nil {
			switch decision.Category {
			case CategoryHR, CategoryIT, CategoryCompliance:
				category = decision.Category
			}
		}

		return state.Update{FieldQuestionCategory: category}, nil
	}

	specialist := func(systemPrompt string) graph.HandlerFunc {
		return func(ctx context.Context, snapshot state.Record) (any, error) {
			answer, err := completer.Complete(ctx, ai.Request{
				SystemPrompt: systemPrompt,
				Prompt:       snapshot.String(FieldUserQuestion),
				Temperature:  ai.TemperatureOf(0.7),
			})
			if err != nil {
				return nil, err
			}
			return state.Update{FieldAgentResponse: answer}, nil
		}
	}

	routeToSpecialist := func(snapshot state.Record) string {
		switch snapshot.String(FieldQuestionCategory) {
		case CategoryHR:
			return CategoryHR
		case CategoryCompliance:
			return CategoryCompliance
		default:
			return CategoryIT
		}
	}

	return graph.NewBuilder(opts...).
		AddNode("triage", triage).
		AddNode(CategoryHR, specialist(hrPrompt)).
		AddNode(CategoryIT, specialist(itPrompt)).
		AddNode(CategoryCompliance, specialist(compliancePrompt)).
		SetEntry("triage").
		AddConditionalEdge("triage", routeToSpecialist, CategoryHR, CategoryIT, CategoryCompliance).
		AddEdge(CategoryHR, graph.End).
		AddEdge(CategoryIT, graph.End).
		AddEdge(CategoryCompliance, graph.End).
		Build()
}
