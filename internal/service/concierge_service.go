package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"grant-insight-be/internal/config"
	"grant-insight-be/internal/constant"
	"grant-insight-be/internal/dto"
	"grant-insight-be/internal/entity"
	"grant-insight-be/internal/pkg/logger"
	"grant-insight-be/internal/pkg/serverutils"
	"grant-insight-be/internal/repository/specification"
	"grant-insight-be/internal/repository/unitofwork"
	"grant-insight-be/pkg/cache"
	"grant-insight-be/pkg/chatcontext"
	"grant-insight-be/pkg/emotion"
	"grant-insight-be/pkg/intent"
	"grant-insight-be/pkg/learning"
	"grant-insight-be/pkg/llm"
	"grant-insight-be/pkg/usage"
)

const (
	grantTitlesCacheTTL = time.Hour
	relatedGrantsLimit  = 3
	maxSuggestions      = 4
)

var defaultSuggestions = []string{
	"おすすめの助成金を見る",
	"申請の流れを確認する",
	"対象条件を調べる",
	"締切が近い助成金を確認",
}

type IConciergeService interface {
	Chat(ctx context.Context, clientID string, req *dto.ChatRequest) (*dto.ChatResponse, error)
	Feedback(ctx context.Context, req *dto.FeedbackRequest) error
	SessionStats(ctx context.Context, sessionID string) (*entity.SessionStats, error)
	UsageReport(ctx context.Context) *dto.UsageReportResponse
}

type conciergeService struct {
	cfg              config.ConciergeConfig
	uowFactory       unitofwork.RepositoryFactory
	provider         llm.Provider
	tracker          *usage.Tracker
	contextManager   *chatcontext.Manager
	learning         *learning.Store
	publisherService IPublisherService
	cache            cache.Cache
	log              logger.ILogger
	now              func() time.Time
}

func NewConciergeService(
	cfg config.ConciergeConfig,
	uowFactory unitofwork.RepositoryFactory,
	provider llm.Provider,
	tracker *usage.Tracker,
	contextManager *chatcontext.Manager,
	learningStore *learning.Store,
	publisherService IPublisherService,
	store cache.Cache,
	log logger.ILogger,
) IConciergeService {
	return &conciergeService{
		cfg:              cfg,
		uowFactory:       uowFactory,
		provider:         provider,
		tracker:          tracker,
		contextManager:   contextManager,
		learning:         learningStore,
		publisherService: publisherService,
		cache:            store,
		log:              log,
		now:              time.Now,
	}
}

// Chat runs one full conversation turn: rate limiting, analysis, context
// resolution, generation, post-processing, persistence, and the async
// learning event.
func (c *conciergeService) Chat(ctx context.Context, clientID string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	if limit := c.cfg.MaxMessageLength; limit > 0 && len([]rune(req.Message)) > limit {
		return nil, serverutils.NewValidationError(fmt.Sprintf("メッセージは%d文字以内で入力してください", limit))
	}

	if err := c.checkRateLimit(ctx, clientID); err != nil {
		return nil, err
	}

	if c.tracker.IsEmergencyStopped(ctx) {
		return nil, &serverutils.AppError{
			Status:  503,
			Message: "ただいまアクセスが集中しています。しばらくしてからお試しください。",
		}
	}

	sessionID := c.ensureSession(req.SessionID)

	intentResult := intent.Classify(req.Message)
	emotionResult := emotion.Analyze(req.Message)

	uow := c.uowFactory.NewUnitOfWork(ctx)

	current := c.contextManager.GetContext(ctx, sessionID)
	updated := c.contextManager.UpdateContext(ctx, current, req.Message, intentResult.Intent)
	contextUpdated := updated.BusinessType != current.BusinessType ||
		updated.Location != current.Location ||
		updated.BusinessSize != current.BusinessSize ||
		updated.CurrentFocus != current.CurrentFocus

	history, err := c.recentHistory(ctx, uow, sessionID)
	if err != nil {
		c.log.Warn("concierge", "failed to load conversation history", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	messages := c.buildMessages(updated, intentResult.Intent, emotionResult, history, req.Message)

	started := c.now()
	result, err := c.provider.Chat(ctx, messages)
	if err != nil {
		c.log.Error("concierge", "generation failed", map[string]interface{}{
			"session_id": sessionID,
			"intent":     intentResult.Intent,
			"error":      err.Error(),
		})
		var confErr *llm.ConfigurationError
		if errors.As(err, &confErr) {
			return nil, serverutils.NewInternalError(err)
		}
		return nil, serverutils.NewUpstreamError(err)
	}
	elapsed := c.now().Sub(started)

	processed := c.postProcess(ctx, uow, result.Content, intentResult.Intent)

	c.persistTurns(ctx, uow, sessionID, clientID, req.Message, processed, &updated,
		intentResult, emotionResult, elapsed, result.TokensUsed)

	c.publishTurnRecorded(ctx, req.Message, processed, intentResult.Intent)

	return &dto.ChatResponse{
		Response:   processed,
		SessionID:  sessionID,
		Intent:     intentResult.Intent,
		Confidence: intentResult.Confidence,
		Emotion: dto.EmotionInfo{
			Interpretation: emotionResult.Interpretation,
			Score:          emotionResult.Score,
			Urgency:        emotionResult.Urgency,
			ResponseStyle:  emotionResult.ResponseStyle,
		},
		RelatedGrants:  c.relatedGrants(ctx, uow, updated),
		Suggestions:    c.suggestions(intentResult.Intent),
		ResponseTimeMs: elapsed.Milliseconds(),
		TokensUsed:     result.TokensUsed,
		ContextUpdated: contextUpdated,
	}, nil
}

// ensureSession keeps a well-formed incoming session id and mints a fresh one
// otherwise, so a tampered id can never address another user's history.
func (c *conciergeService) ensureSession(sessionID string) string {
	if strings.HasPrefix(sessionID, constant.SessionPrefix) && len(sessionID) > len(constant.SessionPrefix) {
		return sessionID
	}
	return constant.SessionPrefix + uuid.NewString()
}

// checkRateLimit enforces the hourly per-client chat budget. A broken counter
// backend fails open so the cache never takes the concierge down with it.
func (c *conciergeService) checkRateLimit(ctx context.Context, clientID string) error {
	if c.cfg.RateLimitPerHour <= 0 {
		return nil
	}

	now := c.now()
	key := constant.RateLimitKeyPrefix + clientID + ":" + now.Format("2006010215")
	count, err := c.cache.Increment(ctx, key, 1, time.Hour)
	if err != nil {
		c.log.Warn("concierge", "rate limit counter unavailable", map[string]interface{}{"error": err.Error()})
		return nil
	}

	if count > int64(c.cfg.RateLimitPerHour) {
		nextHour := now.Truncate(time.Hour).Add(time.Hour)
		return serverutils.NewRateLimitError(int(nextHour.Sub(now).Seconds()))
	}
	return nil
}

func (c *conciergeService) recentHistory(ctx context.Context, uow unitofwork.UnitOfWork, sessionID string) ([]*entity.ConversationTurn, error) {
	turns, err := uow.ConversationTurnRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.NewestFirst{},
		specification.WithLimit{Limit: c.cfg.MemoryWindow},
	)
	if err != nil {
		return nil, err
	}

	// Chronological order for the prompt.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (c *conciergeService) buildMessages(
	sessionCtx chatcontext.Context,
	intentName string,
	emotionResult emotion.Result,
	history []*entity.ConversationTurn,
	userMessage string,
) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    constant.RoleSystem,
		Content: c.systemPrompt(sessionCtx, intentName, emotionResult),
	})

	for _, turn := range history {
		if turn.Role != constant.RoleUser && turn.Role != constant.RoleAssistant {
			continue
		}
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Message})
	}

	return append(messages, llm.Message{Role: constant.RoleUser, Content: userMessage})
}

func (c *conciergeService) systemPrompt(sessionCtx chatcontext.Context, intentName string, emotionResult emotion.Result) string {
	var b strings.Builder
	b.WriteString(constant.SystemPromptBase)

	if fragment, ok := constant.SystemPromptByIntent[intentName]; ok {
		b.WriteString(fragment)
	}

	switch {
	case emotionResult.Score < -0.3:
		b.WriteString(constant.SystemPromptAnxiousUser)
	case emotionResult.Score > 0.3:
		b.WriteString(constant.SystemPromptUpbeatUser)
	}

	if sessionCtx.BusinessType != "" {
		b.WriteString("\n相談者の業種: " + sessionCtx.BusinessType)
	}
	if sessionCtx.BusinessSize != "" {
		b.WriteString("\n事業規模: " + sessionCtx.BusinessSize)
	}
	if sessionCtx.Location != "" {
		b.WriteString("\n所在地: " + sessionCtx.Location)
	}
	if sessionCtx.CurrentFocus != "" {
		b.WriteString("\n現在の相談テーマ: " + sessionCtx.CurrentFocus)
	}

	b.WriteString(constant.SystemPromptAnswerRules)
	return b.String()
}

var (
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern = regexp.MustCompile(`\*([^*]+)\*`)
)

// postProcess turns the raw model output into display-ready HTML: markdown
// emphasis, bullet normalization, paragraph wrapping, known grant names
// linked to the search page, and intent-specific notices.
func (c *conciergeService) postProcess(ctx context.Context, uow unitofwork.UnitOfWork, response, intentName string) string {
	switch intentName {
	case intent.DeadlineInquiry:
		response += constant.DeadlineNotice
	case intent.ApplicationHelp:
		response += constant.ApplicationTipsNotice
	}

	response = boldPattern.ReplaceAllString(response, "<strong>$1</strong>")
	response = italicPattern.ReplaceAllString(response, "<em>$1</em>")

	lines := strings.Split(response, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") {
			lines[i] = "• " + strings.TrimPrefix(trimmed, "- ")
		} else if strings.HasPrefix(trimmed, "・") {
			lines[i] = "• " + strings.TrimPrefix(trimmed, "・")
		}
	}
	response = strings.Join(lines, "\n")

	for _, title := range c.grantTitles(ctx, uow) {
		if !strings.Contains(response, title) || strings.Contains(response, ">"+title+"<") {
			continue
		}
		link := fmt.Sprintf(`<a href="/grants/?search=%s" class="grant-link">%s</a>`, title, title)
		response = strings.Replace(response, title, link, 1)
	}

	paragraphs := strings.Split(response, "\n\n")
	for i, p := range paragraphs {
		p = strings.TrimSpace(p)
		paragraphs[i] = "<p>" + strings.ReplaceAll(p, "\n", "<br>") + "</p>"
	}
	return strings.Join(paragraphs, "\n")
}

// grantTitles serves the linkable title list from cache, longest first so a
// longer name wins over a shorter name it contains.
func (c *conciergeService) grantTitles(ctx context.Context, uow unitofwork.UnitOfWork) []string {
	if raw, found := c.cache.Get(ctx, constant.GrantTitlesCacheKey); found {
		var titles []string
		if err := json.Unmarshal([]byte(raw), &titles); err == nil {
			return titles
		}
	}

	titles, err := uow.GrantRepository().Titles(ctx, 50)
	if err != nil {
		c.log.Warn("concierge", "failed to load grant titles", map[string]interface{}{"error": err.Error()})
		return nil
	}

	if raw, err := json.Marshal(titles); err == nil {
		_ = c.cache.Set(ctx, constant.GrantTitlesCacheKey, string(raw), grantTitlesCacheTTL)
	}
	return titles
}

// persistTurns writes both sides of the exchange. Persistence failures are
// logged but never surfaced: the user already has their answer.
func (c *conciergeService) persistTurns(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	sessionID, clientID, userMessage, response string,
	snapshot *chatcontext.Context,
	intentResult intent.Result,
	emotionResult emotion.Result,
	elapsed time.Duration,
	tokensUsed int,
) {
	if err := uow.Begin(ctx); err != nil {
		c.log.Error("concierge", "failed to begin turn transaction", map[string]interface{}{"error": err.Error()})
		return
	}
	defer uow.Rollback()

	repo := uow.ConversationTurnRepository()
	now := c.now()

	emotionScore := emotionResult.Score
	intentName := intentResult.Intent
	confidence := intentResult.Confidence
	userTurn := &entity.ConversationTurn{
		SessionId:       sessionID,
		UserId:          &clientID,
		Role:            constant.RoleUser,
		Message:         userMessage,
		ContextSnapshot: snapshot,
		EmotionScore:    &emotionScore,
		Intent:          &intentName,
		Confidence:      &confidence,
		CreatedAt:       now,
	}
	if err := repo.Create(ctx, userTurn); err != nil {
		c.log.Error("concierge", "failed to persist user turn", map[string]interface{}{"error": err.Error()})
		return
	}

	responseTime := elapsed.Seconds()
	assistantTurn := &entity.ConversationTurn{
		SessionId:    sessionID,
		Role:         constant.RoleAssistant,
		Message:      response,
		ResponseTime: &responseTime,
		TokensUsed:   &tokensUsed,
		CreatedAt:    now,
	}
	if err := repo.Create(ctx, assistantTurn); err != nil {
		c.log.Error("concierge", "failed to persist assistant turn", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := uow.Commit(); err != nil {
		c.log.Error("concierge", "failed to commit turn transaction", map[string]interface{}{"error": err.Error()})
	}
}

func (c *conciergeService) publishTurnRecorded(ctx context.Context, query, response, intentName string) {
	event := dto.TurnRecordedMessage{
		Query:      query,
		Response:   response,
		Intent:     intentName,
		RecordedAt: c.now(),
	}
	if err := c.publisherService.Publish(ctx, event); err != nil {
		c.log.Error("concierge", "failed to publish turn event", map[string]interface{}{"error": err.Error()})
	}
}

func (c *conciergeService) relatedGrants(ctx context.Context, uow unitofwork.UnitOfWork, sessionCtx chatcontext.Context) []dto.RelatedGrant {
	if sessionCtx.BusinessType == "" && sessionCtx.Location == "" {
		return []dto.RelatedGrant{}
	}

	grants, err := uow.GrantRepository().FindRelated(ctx, sessionCtx.BusinessType, sessionCtx.Location, relatedGrantsLimit)
	if err != nil {
		c.log.Warn("concierge", "failed to load related grants", map[string]interface{}{"error": err.Error()})
		return []dto.RelatedGrant{}
	}

	related := make([]dto.RelatedGrant, len(grants))
	for i, grant := range grants {
		related[i] = dto.RelatedGrant{
			ID:     grant.Id,
			Title:  grant.Title,
			Link:   grant.Permalink,
			Amount: grant.Amount,
		}
	}
	return related
}

func (c *conciergeService) suggestions(intentName string) []string {
	suggestions, ok := constant.SuggestionsByIntent[intentName]
	if !ok {
		suggestions = defaultSuggestions
	}
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

// Feedback attaches a rating to one assistant turn and forwards it to the
// learning store keyed by the user question that prompted the answer.
func (c *conciergeService) Feedback(ctx context.Context, req *dto.FeedbackRequest) error {
	if !strings.HasPrefix(req.SessionID, constant.SessionPrefix) {
		return serverutils.NewValidationError("セッションIDが不正です")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ConversationTurnRepository()

	if err := repo.SetFeedback(ctx, req.SessionID, req.MessageID, req.Rating, req.FeedbackType, req.Comment); err != nil {
		return serverutils.NewInternalError(err)
	}

	ratedTurn, err := repo.FindOne(ctx,
		specification.BySessionID{SessionID: req.SessionID},
		specification.ByTurnID{ID: req.MessageID},
	)
	if err != nil || ratedTurn == nil {
		return nil
	}

	userTurn, err := repo.FindOne(ctx,
		specification.BySessionID{SessionID: req.SessionID},
		specification.ByRole{Role: constant.RoleUser},
		specification.CreatedBefore{Cutoff: ratedTurn.CreatedAt.Add(time.Second)},
		specification.NewestFirst{},
	)
	if err != nil || userTurn == nil {
		return nil
	}

	if err := c.learning.RecordFeedback(ctx, userTurn.Message, req.Rating); err != nil {
		c.log.Warn("concierge", "failed to record learning feedback", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

func (c *conciergeService) SessionStats(ctx context.Context, sessionID string) (*entity.SessionStats, error) {
	if !strings.HasPrefix(sessionID, constant.SessionPrefix) {
		return nil, serverutils.NewValidationError("セッションIDが不正です")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	stats, err := uow.ConversationTurnRepository().SessionStats(ctx, sessionID)
	if err != nil {
		return nil, serverutils.NewInternalError(err)
	}
	return stats, nil
}

func (c *conciergeService) UsageReport(ctx context.Context) *dto.UsageReportResponse {
	report := c.tracker.TodayReport(ctx)
	return &dto.UsageReportResponse{
		Date:             report.Date,
		TokensUsed:       report.TokensUsed,
		DailyLimit:       int(report.DailyLimit),
		UsageRatio:       report.UsageRatio,
		EmergencyStopped: report.EmergencyStop,
	}
}
