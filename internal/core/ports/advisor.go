package ports

import (
	"context"

	"github.com/karl2522/audiora/backend/internal/core/domain"
)

// SessionAdvisor optionally tunes a generation session. Implementations
// return (nil, err) on any failure (timeout, malformed output, validation)
// and the pipeline proceeds with defaults; advisor failure never aborts
// playlist generation.
type SessionAdvisor interface {
	GetSessionParameters(ctx context.Context, profile domain.TasteProfile, sessionContext string) (*domain.SessionParameters, error)
}
