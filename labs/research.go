package labs

import (
	"context"
	"fmt"

	"github.com/leofalp/flowlab/core/graph"
	"github.com/leofalp/flowlab/core/state"
	"github.com/leofalp/flowlab/providers/ai"
	"github.com/leofalp/flowlab/providers/fetch"
)

// Research field names.
const (
	FieldPageURL      = "page_url"
	FieldPageMarkdown = "page_markdown"
	FieldSummary      = "summary"
)

const summarizePrompt = `You are a research assistant. Summarize the page
content you are given: state what the page is about, list the key points,
and keep the summary under 300 words. Write in plain prose.`

// Research builds the single-agent research pipeline: a fetch node pulls a
// web page into the state record as Markdown, then a summarize node condenses
// it with the model.
//
//	Start -> read_page -> summarize -> End
//
// The initial record must carry FieldPageURL.
func Research(completer ai.Completer, reader *fetch.Reader, opts ...graph.Option) (*graph.Graph, error) {
	readPage := func(ctx context.Context, snapshot state.Record) (any, error) {
		page, err := reader.Read(ctx, snapshot.String(FieldPageURL))
		if err != nil {
			return nil, err
		}
		return state.Update{
			FieldPageURL:      page.URL,
			FieldPageMarkdown: page.Markdown,
		}, nil
	}

	summarize := func(ctx context.Context, snapshot state.Record) (any, error) {
		summary, err := completer.Complete(ctx, ai.Request{
			SystemPrompt: summarizePrompt,
			Prompt:       fmt.Sprintf("Summarize the following page (%s):\n\n%s", snapshot.String(FieldPageURL), snapshot.String(FieldPageMarkdown)),
			Temperature:  ai.TemperatureOf(0.3),
		})
		if err != nil {
			return nil, err
		}
		return state.Update{FieldSummary: summary}, nil
	}

	return graph.NewBuilder(opts...).
		AddNode("read_page", readPage).
		AddNode("summarize", summarize).
		SetEntry("read_page").
		AddEdge("read_page", "summarize").
		AddEdge("summarize", graph.End).
		Build()
}
