package contract

import (
	"context"

	"grant-insight-be/internal/entity"
	"grant-insight-be/pkg/search"
)

// GrantRepository reads the subsidy catalog. The catalog is maintained by a
// separate ingestion pipeline, so there are no write methods here.
type GrantRepository interface {
	// Search returns grants matching any of the query variants under the
	// filters, plus the unpaginated total.
	Search(ctx context.Context, terms []string, filters search.Filters, limit, offset int) ([]*entity.Grant, int64, error)

	// FindRelated matches grants by target audience and/or prefecture.
	FindRelated(ctx context.Context, target, prefecture string, limit int) ([]*entity.Grant, error)

	// Titles returns published grant titles, longest first, for response
	// post-processing and suggestion blending.
	Titles(ctx context.Context, limit int) ([]string, error)

	// SearchTitles matches titles against a partial query, newest first.
	SearchTitles(ctx context.Context, partial string, limit int) ([]string, error)
}
