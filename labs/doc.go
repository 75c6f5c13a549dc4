// Package labs contains ready-made workflow topologies, one per
// orchestration pattern: sequential (contract review), handoff (support
// triage), concurrent (multi-language translation), and a single-agent
// research pipeline. Each constructor takes the LLM collaborator as an
// ai.Completer and returns a built *graph.Graph ready to Run.
package labs
