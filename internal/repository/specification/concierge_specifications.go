package specification

import (
	"time"

	"gorm.io/gorm"
)

// BySessionID filters conversation turns by session
type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByRole filters turns by speaker role
type ByRole struct {
	Role string
}

func (s ByRole) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("role = ?", s.Role)
}

// CreatedBefore keeps rows older than the cutoff
type CreatedBefore struct {
	Cutoff time.Time
}

func (s CreatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at < ?", s.Cutoff)
}

// OnDate keeps rows created on a calendar day
type OnDate struct {
	Date string // YYYY-MM-DD
}

func (s OnDate) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("DATE(created_at) = ?", s.Date)
}

// ByTurnID filters by primary key
type ByTurnID struct {
	ID uint
}

func (s ByTurnID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// NewestFirst orders rows by creation time descending. The id tie-break keeps
// turns written in the same instant in a stable order.
type NewestFirst struct{}

func (s NewestFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC, id DESC")
}

// WithLimit caps the number of returned rows
type WithLimit struct {
	Limit int
}

func (s WithLimit) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit)
}

// QueryContains does a case-insensitive substring match on a text column
type QueryContains struct {
	Field   string
	Partial string
}

func (s QueryContains) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(s.Field+" ILIKE ?", "%"+s.Partial+"%")
}
