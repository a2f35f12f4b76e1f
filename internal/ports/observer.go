package ports

import (
	"context"

	"github.com/tatoeba/tatoprov/internal/model"
)

// StageObserver receives progress notifications while a run executes.
// Calls are made synchronously from the provisioning goroutine.
type StageObserver interface {
	StageStarted(ctx context.Context, stage string)
	StageFinished(ctx context.Context, result model.StageResult)
}
