package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"grant-insight-be/pkg/learning"
)

// LearningRepository keeps learned queries in process memory. Used by tests
// and by deployments that run without a database.
type LearningRepository struct {
	mu      sync.RWMutex
	nextID  uint
	records map[string]*learning.Record // keyed by query hash
}

func NewLearningRepository() *LearningRepository {
	return &LearningRepository{
		nextID:  1,
		records: map[string]*learning.Record{},
	}
}

var _ learning.Repository = &LearningRepository{}

func (r *LearningRepository) FindByHash(_ context.Context, hash string) (*learning.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, found := r.records[hash]
	if !found {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (r *LearningRepository) Insert(_ context.Context, record *learning.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.ID = r.nextID
	r.nextID++
	copied := *record
	r.records[record.QueryHash] = &copied
	return nil
}

func (r *LearningRepository) Update(_ context.Context, record *learning.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *record
	r.records[record.QueryHash] = &copied
	return nil
}

func (r *LearningRepository) SetFeedback(_ context.Context, hash string, rating int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record, found := r.records[hash]; found {
		record.FeedbackScore = &rating
	}
	return nil
}

func (r *LearningRepository) DeleteStale(_ context.Context, before time.Time, maxUsage, maxFeedback int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for hash, record := range r.records {
		if !record.LastUsed.Before(before) || record.UsageCount > maxUsage {
			continue
		}
		if record.FeedbackScore != nil && *record.FeedbackScore > maxFeedback {
			continue
		}
		delete(r.records, hash)
		deleted++
	}
	return deleted, nil
}

func (r *LearningRepository) FindPopular(_ context.Context, minUsage, minFeedback, limit int) ([]learning.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []learning.Record{}
	for _, record := range r.records {
		if record.UsageCount < minUsage {
			continue
		}
		if record.FeedbackScore != nil && *record.FeedbackScore < minFeedback {
			continue
		}
		matched = append(matched, *record)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].UsageCount != matched[j].UsageCount {
			return matched[i].UsageCount > matched[j].UsageCount
		}
		return feedbackValue(matched[i]) > feedbackValue(matched[j])
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *LearningRepository) SearchByQuery(_ context.Context, partial string, limit int) ([]learning.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lower := strings.ToLower(partial)
	matched := []learning.Record{}
	for _, record := range r.records {
		if strings.Contains(strings.ToLower(record.OriginalQuery), lower) {
			matched = append(matched, *record)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].UsageCount != matched[j].UsageCount {
			return matched[i].UsageCount > matched[j].UsageCount
		}
		return matched[i].LastUsed.After(matched[j].LastUsed)
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func feedbackValue(record learning.Record) int {
	if record.FeedbackScore == nil {
		return -1
	}
	return *record.FeedbackScore
}
