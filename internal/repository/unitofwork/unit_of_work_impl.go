package unitofwork

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"grant-insight-be/internal/repository/contract"
	"grant-insight-be/internal/repository/implementation"
	"grant-insight-be/pkg/learning"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // active transaction, nil outside Begin/Commit
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) ConversationTurnRepository() contract.ConversationTurnRepository {
	return implementation.NewConversationTurnRepository(u.getDB())
}

func (u *UnitOfWorkImpl) LearningRecordRepository() learning.Repository {
	return implementation.NewLearningRecordRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DailyAnalyticsRepository() contract.DailyAnalyticsRepository {
	return implementation.NewDailyAnalyticsRepository(u.getDB())
}

func (u *UnitOfWorkImpl) GrantRepository() contract.GrantRepository {
	return implementation.NewGrantRepository(u.getDB())
}
