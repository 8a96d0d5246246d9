package learning

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"time"

	"grant-insight-be/internal/pkg/logger"
	"grant-insight-be/pkg/cache"
)

const (
	popularCacheKey = "learning:popular"
	popularCacheTTL = 24 * time.Hour

	staleAfter       = 30 * 24 * time.Hour
	staleMaxUsage    = 2
	staleMaxFeedback = 2

	popularMinUsage    = 5
	popularMinFeedback = 4
	popularLimit       = 100
)

// Record is one learned query with its usage statistics. FeedbackScore is
// nil until a user rates an answer derived from this query.
type Record struct {
	ID             uint       `json:"id"`
	QueryHash      string     `json:"query_hash"`
	OriginalQuery  string     `json:"original_query"`
	ProcessedQuery string     `json:"processed_query"`
	Intent         string     `json:"intent"`
	Response       string     `json:"response"`
	UsageCount     int        `json:"usage_count"`
	FeedbackScore  *int       `json:"feedback_score"`
	LastUsed       time.Time  `json:"last_used"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Repository is the persistence contract for learned queries.
type Repository interface {
	// FindByHash returns nil, nil when no record exists.
	FindByHash(ctx context.Context, hash string) (*Record, error)
	Insert(ctx context.Context, record *Record) error
	Update(ctx context.Context, record *Record) error
	SetFeedback(ctx context.Context, hash string, rating int) error

	// DeleteStale removes records last used before the cutoff whose usage
	// count and feedback score both fall at or below the given maximums
	// (a nil feedback score counts as below).
	DeleteStale(ctx context.Context, before time.Time, maxUsage, maxFeedback int) (int64, error)

	// FindPopular returns records with usage >= minUsage and feedback either
	// nil or >= minFeedback, ordered by usage then feedback descending.
	FindPopular(ctx context.Context, minUsage, minFeedback, limit int) ([]Record, error)

	// SearchByQuery matches records whose original query contains the
	// partial string, ordered by usage then recency descending.
	SearchByQuery(ctx context.Context, partial string, limit int) ([]Record, error)
}

// HashQuery keys learning records so repeated questions collapse into one
// row regardless of session.
func HashQuery(query string) string {
	sum := md5.Sum([]byte(query))
	return hex.EncodeToString(sum[:])
}

// Store accumulates what users ask and how well the answers land.
type Store struct {
	repo  Repository
	cache cache.Cache
	log   logger.ILogger
	now   func() time.Time
}

func NewStore(repo Repository, store cache.Cache, log logger.ILogger) *Store {
	return &Store{
		repo:  repo,
		cache: store,
		log:   log,
		now:   time.Now,
	}
}

// RecordInteraction upserts by query hash: a repeated question bumps the
// usage counter and refreshes the stored answer, a new one starts at 1.
func (s *Store) RecordInteraction(ctx context.Context, userQuery, aiResponse, intentName string) error {
	hash := HashQuery(userQuery)

	existing, err := s.repo.FindByHash(ctx, hash)
	if err != nil {
		return err
	}

	now := s.now()
	if existing != nil {
		existing.UsageCount++
		existing.LastUsed = now
		existing.ProcessedQuery = userQuery
		existing.Response = aiResponse
		return s.repo.Update(ctx, existing)
	}

	return s.repo.Insert(ctx, &Record{
		QueryHash:      hash,
		OriginalQuery:  userQuery,
		ProcessedQuery: userQuery,
		Intent:         intentName,
		Response:       aiResponse,
		UsageCount:     1,
		LastUsed:       now,
		CreatedAt:      now,
	})
}

// RecordFeedback attaches a rating to the learning record of the user
// message that prompted the rated answer.
func (s *Store) RecordFeedback(ctx context.Context, userMessage string, rating int) error {
	return s.repo.SetFeedback(ctx, HashQuery(userMessage), rating)
}

// Prune drops records that have gone a month without use, were barely used,
// and were never rated well.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-staleAfter)
	return s.repo.DeleteStale(ctx, cutoff, staleMaxUsage, staleMaxFeedback)
}

// RefreshPopular rebuilds the cached snapshot of high-use, well-rated
// queries that feeds suggestions.
func (s *Store) RefreshPopular(ctx context.Context) error {
	popular, err := s.repo.FindPopular(ctx, popularMinUsage, popularMinFeedback, popularLimit)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(popular)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, popularCacheKey, string(raw), popularCacheTTL)
}

// PopularQueries serves from the snapshot when present, otherwise falls back
// to a live query with a relaxed usage floor.
func (s *Store) PopularQueries(ctx context.Context, limit int) ([]Record, error) {
	if raw, found := s.cache.Get(ctx, popularCacheKey); found {
		var cached []Record
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			if len(cached) > limit {
				cached = cached[:limit]
			}
			return cached, nil
		}
	}

	return s.repo.FindPopular(ctx, 2, 0, limit)
}

// SuggestQueries returns learned queries matching a partial input, most used
// first, for autocomplete.
func (s *Store) SuggestQueries(ctx context.Context, partial string, limit int) ([]Record, error) {
	return s.repo.SearchByQuery(ctx, partial, limit)
}
