package ports

import (
	"context"

	"github.com/kirillkom/market-brief-agent/internal/core/domain"
)

// BriefService is the inbound contract for end-to-end query processing.
// The call is synchronous from the caller's perspective even though the
// fetch stage fans out internally.
type BriefService interface {
	ProcessQuery(ctx context.Context, query string) (*domain.Brief, error)
}
