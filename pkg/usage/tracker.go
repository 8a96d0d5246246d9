package usage

import (
	"context"
	"fmt"
	"time"

	"grant-insight-be/internal/pkg/logger"
	"grant-insight-be/internal/pkg/mailer"
	"grant-insight-be/pkg/cache"
)

const (
	tokenKeyPrefix    = "usage:tokens:"
	alertFlagPrefix   = "usage:alert_sent:"
	emergencyStopKey  = "usage:emergency_stop"
	counterRetention  = 48 * time.Hour
	alertThresholdPct = 0.8
)

// Report is the daily consumption snapshot exposed to operators.
type Report struct {
	Date           string  `json:"date"`
	TokensUsed     int64   `json:"tokens_used"`
	DailyLimit     int64   `json:"daily_limit"`
	UsageRatio     float64 `json:"usage_ratio"`
	AlertSent      bool    `json:"alert_sent"`
	EmergencyStop  bool    `json:"emergency_stop"`
	EmergencyLimit int64   `json:"emergency_limit"`
}

// Tracker accumulates token spend per calendar day and escalates twice: an
// admin email at 80% of the daily budget, and a hard generation stop at the
// emergency limit.
type Tracker struct {
	cache          cache.Cache
	mailer         mailer.IAlertMailer
	log            logger.ILogger
	dailyLimit     int64
	emergencyLimit int64
	now            func() time.Time
}

func NewTracker(store cache.Cache, alertMailer mailer.IAlertMailer, log logger.ILogger, dailyLimit, emergencyLimit int) *Tracker {
	return &Tracker{
		cache:          store,
		mailer:         alertMailer,
		log:            log,
		dailyLimit:     int64(dailyLimit),
		emergencyLimit: int64(emergencyLimit),
		now:            time.Now,
	}
}

func (t *Tracker) dateKey() string {
	return t.now().Format("20060102")
}

// RecordUsage adds tokens to today's counter and runs the escalation checks.
func (t *Tracker) RecordUsage(ctx context.Context, totalTokens int) error {
	if totalTokens <= 0 {
		return nil
	}

	day := t.dateKey()
	total, err := t.cache.Increment(ctx, tokenKeyPrefix+day, int64(totalTokens), counterRetention)
	if err != nil {
		return fmt.Errorf("increment usage counter: %w", err)
	}

	if t.dailyLimit > 0 && float64(total) >= float64(t.dailyLimit)*alertThresholdPct {
		t.sendAlertOnce(ctx, day, total)
	}

	if t.emergencyLimit > 0 && total >= t.emergencyLimit {
		t.triggerEmergencyStop(ctx, total)
	}
	return nil
}

// sendAlertOnce fires the budget warning at most once per day.
func (t *Tracker) sendAlertOnce(ctx context.Context, day string, total int64) {
	flagKey := alertFlagPrefix + day
	if _, sent := t.cache.Get(ctx, flagKey); sent {
		return
	}
	if err := t.cache.Set(ctx, flagKey, "1", counterRetention); err != nil {
		t.log.Warn("usage", "failed to persist alert flag", map[string]interface{}{"error": err.Error()})
	}

	subject := "[GrantInsight] トークン使用量警告"
	body := fmt.Sprintf("本日のトークン使用量が警告ラインを超えました。\n使用量: %d\n日次上限: %d", total, t.dailyLimit)
	if t.mailer != nil {
		if err := t.mailer.SendAlert(subject, body); err != nil {
			t.log.Error("usage", "failed to send usage alert", map[string]interface{}{"error": err.Error()})
		}
	}
	t.log.Warn("usage", "daily token budget warning", map[string]interface{}{
		"tokens_used": total,
		"daily_limit": t.dailyLimit,
	})
}

func (t *Tracker) triggerEmergencyStop(ctx context.Context, total int64) {
	if t.IsEmergencyStopped(ctx) {
		return
	}
	if err := t.cache.Set(ctx, emergencyStopKey, "1", counterRetention); err != nil {
		t.log.Error("usage", "failed to persist emergency stop", map[string]interface{}{"error": err.Error()})
	}
	t.log.Error("usage", "emergency stop activated", map[string]interface{}{
		"tokens_used":     total,
		"emergency_limit": t.emergencyLimit,
	})
	if t.mailer != nil {
		body := fmt.Sprintf("トークン使用量が緊急上限に達したため、AI応答を停止しました。\n使用量: %d\n緊急上限: %d", total, t.emergencyLimit)
		if err := t.mailer.SendAlert("[GrantInsight] 緊急停止", body); err != nil {
			t.log.Error("usage", "failed to send emergency alert", map[string]interface{}{"error": err.Error()})
		}
	}
}

// IsEmergencyStopped reports whether generation is halted.
func (t *Tracker) IsEmergencyStopped(ctx context.Context) bool {
	_, stopped := t.cache.Get(ctx, emergencyStopKey)
	return stopped
}

// ResetEmergencyStop clears the halt, typically from daily maintenance once
// a new budget day begins.
func (t *Tracker) ResetEmergencyStop(ctx context.Context) error {
	return t.cache.Delete(ctx, emergencyStopKey)
}

// TokensUsedOn returns the counter for a specific day (format 20060102).
func (t *Tracker) TokensUsedOn(ctx context.Context, day string) int64 {
	value, found := t.cache.Get(ctx, tokenKeyPrefix+day)
	if !found {
		return 0
	}
	var total int64
	_, _ = fmt.Sscanf(value, "%d", &total)
	return total
}

// TodayReport assembles the operator-facing snapshot.
func (t *Tracker) TodayReport(ctx context.Context) Report {
	day := t.dateKey()
	total := t.TokensUsedOn(ctx, day)

	ratio := 0.0
	if t.dailyLimit > 0 {
		ratio = float64(total) / float64(t.dailyLimit)
	}
	_, alertSent := t.cache.Get(ctx, alertFlagPrefix+day)

	return Report{
		Date:           t.now().Format("2006-01-02"),
		TokensUsed:     total,
		DailyLimit:     t.dailyLimit,
		UsageRatio:     ratio,
		AlertSent:      alertSent,
		EmergencyStop:  t.IsEmergencyStopped(ctx),
		EmergencyLimit: t.emergencyLimit,
	}
}
