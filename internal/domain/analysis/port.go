package analysis

import "context"

// Model is the external generative model. Complete returns the raw text the
// model produced, expected to be a JSON object matching Result.
type Model interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}
