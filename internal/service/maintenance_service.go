package service

import (
	"context"
	"time"

	"grant-insight-be/internal/pkg/logger"
	"grant-insight-be/internal/repository/unitofwork"
	"grant-insight-be/pkg/learning"
	"grant-insight-be/pkg/usage"
)

const (
	turnRetention       = 30 * 24 * time.Hour
	maintenanceInterval = 24 * time.Hour
	topIntentsLimit     = 5
	popularQueriesLimit = 10
)

type IMaintenanceService interface {
	// Start runs maintenance once immediately and then daily until the
	// context is cancelled.
	Start(ctx context.Context)
	RunOnce(ctx context.Context) error
}

// maintenanceService is the daily housekeeping pass: conversation retention,
// learning store pruning, analytics aggregation for the previous day, and
// the token budget reset.
type maintenanceService struct {
	uowFactory unitofwork.RepositoryFactory
	learning   *learning.Store
	tracker    *usage.Tracker
	log        logger.ILogger
	now        func() time.Time
}

func NewMaintenanceService(
	uowFactory unitofwork.RepositoryFactory,
	learningStore *learning.Store,
	tracker *usage.Tracker,
	log logger.ILogger,
) IMaintenanceService {
	return &maintenanceService{
		uowFactory: uowFactory,
		learning:   learningStore,
		tracker:    tracker,
		log:        log,
		now:        time.Now,
	}
}

func (m *maintenanceService) Start(ctx context.Context) {
	go func() {
		if err := m.RunOnce(ctx); err != nil {
			m.log.Error("maintenance", "initial run failed", map[string]interface{}{"error": err.Error()})
		}

		ticker := time.NewTicker(maintenanceInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.RunOnce(ctx); err != nil {
					m.log.Error("maintenance", "daily run failed", map[string]interface{}{"error": err.Error()})
				}
			}
		}
	}()
}

func (m *maintenanceService) RunOnce(ctx context.Context) error {
	uow := m.uowFactory.NewUnitOfWork(ctx)

	deleted, err := uow.ConversationTurnRepository().DeleteCreatedBefore(ctx, m.now().Add(-turnRetention))
	if err != nil {
		m.log.Error("maintenance", "conversation cleanup failed", map[string]interface{}{"error": err.Error()})
	} else if deleted > 0 {
		m.log.Info("maintenance", "expired conversations removed", map[string]interface{}{"deleted": deleted})
	}

	pruned, err := m.learning.Prune(ctx)
	if err != nil {
		m.log.Error("maintenance", "learning prune failed", map[string]interface{}{"error": err.Error()})
	} else if pruned > 0 {
		m.log.Info("maintenance", "stale learning records removed", map[string]interface{}{"deleted": pruned})
	}

	if err := m.learning.RefreshPopular(ctx); err != nil {
		m.log.Error("maintenance", "popular snapshot refresh failed", map[string]interface{}{"error": err.Error()})
	}

	if err := m.aggregateYesterday(ctx, uow); err != nil {
		m.log.Error("maintenance", "daily analytics aggregation failed", map[string]interface{}{"error": err.Error()})
	}

	if err := m.tracker.ResetEmergencyStop(ctx); err != nil {
		m.log.Warn("maintenance", "failed to reset emergency stop", map[string]interface{}{"error": err.Error()})
	}

	return nil
}

func (m *maintenanceService) aggregateYesterday(ctx context.Context, uow unitofwork.UnitOfWork) error {
	yesterday := m.now().AddDate(0, 0, -1)
	date := yesterday.Format("2006-01-02")

	turnRepo := uow.ConversationTurnRepository()
	analytics, err := turnRepo.DailyStats(ctx, date)
	if err != nil {
		return err
	}

	if analytics.TopIntents, err = turnRepo.TopIntents(ctx, date, topIntentsLimit); err != nil {
		return err
	}
	if analytics.PopularQueries, err = turnRepo.PopularMessages(ctx, date, popularQueriesLimit); err != nil {
		return err
	}
	analytics.TokensUsed = m.tracker.TokensUsedOn(ctx, yesterday.Format("20060102"))

	return uow.DailyAnalyticsRepository().Upsert(ctx, analytics)
}
