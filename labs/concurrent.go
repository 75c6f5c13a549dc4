package labs

import (
	"context"
	"fmt"

	"github.com/leofalp/flowlab/core/graph"
	"github.com/leofalp/flowlab/core/state"
	"github.com/leofalp/flowlab/providers/ai"
)

// Translation field names.
const (
	FieldSourceContent       = "source_content"
	FieldChineseTranslation  = "chinese_translation"
	FieldJapaneseTranslation = "japanese_translation"
	FieldFrenchTranslation   = "french_translation"
	FieldFinalReport         = "final_report"
)

const translatorPromptTemplate = `You are a professional English-to-%s translator.

Translate the product manual into %s.

Translation principles:
1. Keep the professional tone and style of the original
2. Use natural, fluent phrasing
3. Use the standard industry translations for technical terms
4. Keep product names in English (add a translated note when helpful)

Output only the translation, with no extra commentary.`

// Translation builds the concurrent topology: the source text fans out to
// three translator agents that run in parallel, and an aggregator composes
// the final report once all three have merged their fields.
//
//	Start -> {chinese, japanese, french} -> aggregator -> End
//
// The initial record must carry FieldSourceContent. The aggregator is a pure
// node: it only formats fields that are already in the state record.
func Translation(completer ai.Completer, opts ...graph.Option) (*graph.Graph, error) {
	translator := func(language, field string) graph.HandlerFunc {
		return func(ctx context.Context, snapshot state.Record) (any, error) {
			translated, err := completer.Complete(ctx, ai.Request{
				SystemPrompt: fmt.Sprintf(translatorPromptTemplate, language, language),
				Prompt:       fmt.Sprintf("Translate the following product manual into %s:\n\n%s", language, snapshot.String(FieldSourceContent)),
				Temperature:  ai.TemperatureOf(0.7),
			})
			if err != nil {
				return nil, err
			}
			return state.Update{field: translated}, nil
		}
	}

	aggregate := func(ctx context.Context, snapshot state.Record) (any, error) {
		report := fmt.Sprintf(`Multi-language translation report

[Original (English)]
%s

[Traditional Chinese]
%s

[Japanese]
%s

[French]
%s`,
			snapshot.String(FieldSourceContent),
			snapshot.String(FieldChineseTranslation),
			snapshot.String(FieldJapaneseTranslation),
			snapshot.String(FieldFrenchTranslation),
		)
		return state.Update{FieldFinalReport: report}, nil
	}

	return graph.NewBuilder(opts...).
		AddNode("chinese_translator", translator("Traditional Chinese", FieldChineseTranslation)).
		AddNode("japanese_translator", translator("Japanese", FieldJapaneseTranslation)).
		AddNode("french_translator", translator("French", FieldFrenchTranslation)).
		AddNode("aggregator", aggregate).
		AddFanOut(graph.Start, "chinese_translator", "japanese_translator", "french_translator").
		AddEdge("chinese_translator", "aggregator").
		AddEdge("japanese_translator", "aggregator").
		AddEdge("french_translator", "aggregator").
		AddEdge("aggregator", graph.End).
		Build()
}
