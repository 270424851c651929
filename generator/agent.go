package generator

import (
	"context"
	"errors"

	"trip_itinerary_planner/itinerary"
)

// Agent runs the two generation phases against the configured model.
type Agent struct {
	llm LLMClient
}

func NewAgent(llm LLMClient) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm}, nil
}

// Outline runs Phase 1 and returns the normalized skeleton-shaped itinerary.
// A preset destination short-circuits the model call entirely.
func (a *Agent) Outline(ctx context.Context, req OutlineRequest) (*itinerary.Itinerary, error) {
	if preset, ok := DetectPreset(req.Destination); ok {
		return BuildPresetItinerary(req, preset), nil
	}
	return a.OutlineLLM(ctx, req)
}

// OutlineLLM always goes to the model, bypassing presets.
func (a *Agent) OutlineLLM(ctx context.Context, req OutlineRequest) (*itinerary.Itinerary, error) {
	raw, err := a.llm.Complete(ctx, BuildOutlinePrompt(req))
	if err != nil {
		return nil, err
	}
	return NormalizeOutline(raw)
}

// Fill runs Phase 2 for one item. The title may come back blank; substituting
// a fallback is the caller's business, not the compiler's.
func (a *Agent) Fill(ctx context.Context, req FillRequest) (itinerary.Item, error) {
	raw, err := a.llm.Complete(ctx, BuildFillPrompt(req))
	if err != nil {
		return itinerary.Item{}, err
	}
	return NormalizeItem(raw, req.Kind)
}
