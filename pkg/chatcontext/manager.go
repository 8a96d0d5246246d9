package chatcontext

import (
	"context"
	"encoding/json"
	"time"

	"grant-insight-be/pkg/cache"
)

const contextTTL = 30 * time.Minute

// Context is the rolling profile a session accumulates about the user.
type Context struct {
	SessionID      string            `json:"session_id"`
	BusinessType   string            `json:"user_business_type"`
	BusinessSize   string            `json:"business_size,omitempty"`
	Location       string            `json:"user_location"`
	CurrentFocus   string            `json:"current_focus"`
	Preferences    map[string]string `json:"preferences"`
	HistorySummary string            `json:"history_summary"`
	LastUpdated    time.Time         `json:"last_updated"`
}

// SnapshotStore loads the most recent persisted context for a session,
// typically from the context column of the latest conversation turn.
// A nil result with nil error means no snapshot exists.
type SnapshotStore interface {
	LatestContextSnapshot(ctx context.Context, sessionID string) (*Context, error)
}

// Manager resolves session context cache-first, falling back to the
// persisted snapshot, then to an empty default.
type Manager struct {
	cache cache.Cache
	store SnapshotStore
	now   func() time.Time
}

func NewManager(store cache.Cache, snapshots SnapshotStore) *Manager {
	return &Manager{
		cache: store,
		store: snapshots,
		now:   time.Now,
	}
}

func cacheKey(sessionID string) string {
	return "context:" + sessionID
}

func defaultContext(sessionID string, now time.Time) Context {
	return Context{
		SessionID:   sessionID,
		Preferences: map[string]string{},
		LastUpdated: now,
	}
}

// GetContext returns the session's context, never failing: a broken cache or
// store degrades to the default empty context.
func (m *Manager) GetContext(ctx context.Context, sessionID string) Context {
	if raw, found := m.cache.Get(ctx, cacheKey(sessionID)); found {
		var cached Context
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached
		}
	}

	if m.store != nil {
		if snapshot, err := m.store.LatestContextSnapshot(ctx, sessionID); err == nil && snapshot != nil {
			m.writeCache(ctx, sessionID, *snapshot)
			return *snapshot
		}
	}

	return defaultContext(sessionID, m.now())
}

// UpdateContext folds a new message into the context. Extracted fields only
// overwrite what they actually found, so earlier answers survive later
// messages that say nothing about them.
func (m *Manager) UpdateContext(ctx context.Context, current Context, message string, intentName string) Context {
	info := ExtractBusinessInfo(message)
	if info.BusinessType != "" {
		current.BusinessType = info.BusinessType
	}
	if info.BusinessSize != "" {
		current.BusinessSize = info.BusinessSize
	}
	if info.Location != "" {
		current.Location = info.Location
	}

	current.CurrentFocus = DetermineFocus(intentName, message)
	current.LastUpdated = m.now()

	if current.SessionID != "" {
		m.writeCache(ctx, current.SessionID, current)
	}
	return current
}

func (m *Manager) writeCache(ctx context.Context, sessionID string, value Context) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = m.cache.Set(ctx, cacheKey(sessionID), string(raw), contextTTL)
}
