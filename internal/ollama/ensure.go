package ollama

import (
	"context"

	"github.com/mmr-tortoise/ragstack/internal/model"
)

// EnsureResult describes the outcome of an EnsureModel call.
type EnsureResult struct {
	// Name is the model that was ensured.
	Name string `json:"name"`

	// Pulled is true when the model was downloaded during this call.
	Pulled bool `json:"pulled"`

	// Skipped is true when the model was already present.
	Skipped bool `json:"skipped"`
}

// EnsureModel makes a model present on the server: skip if the list
// already contains it, pull otherwise. This is the provisioning primitive
// the setup sequence runs for the embedding and primary models.
func EnsureModel(ctx context.Context, c *Client, name string, progress PullProgress) (EnsureResult, error) {
	if err := model.ValidateModelName(name); err != nil {
		return EnsureResult{Name: name}, err
	}

	present, err := c.HasModel(ctx, name)
	if err != nil {
		return EnsureResult{Name: name}, err
	}
	if present {
		return EnsureResult{Name: name, Skipped: true}, nil
	}

	if err := c.PullModel(ctx, name, progress); err != nil {
		return EnsureResult{Name: name}, err
	}
	return EnsureResult{Name: name, Pulled: true}, nil
}
