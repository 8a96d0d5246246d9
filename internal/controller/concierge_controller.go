package controller

import (
	"github.com/gofiber/fiber/v2"

	"grant-insight-be/internal/dto"
	"grant-insight-be/internal/pkg/serverutils"
	"grant-insight-be/internal/service"
)

type IConciergeController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Suggestions(ctx *fiber.Ctx) error
	Feedback(ctx *fiber.Ctx) error
	SessionStats(ctx *fiber.Ctx) error
	Usage(ctx *fiber.Ctx) error
}

type conciergeController struct {
	conciergeService service.IConciergeService
	searchService    service.ISearchService
}

func NewConciergeController(conciergeService service.IConciergeService, searchService service.ISearchService) IConciergeController {
	return &conciergeController{
		conciergeService: conciergeService,
		searchService:    searchService,
	}
}

func (c *conciergeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/concierge/v1")
	h.Use(serverutils.OptionalJwtMiddleware) // anonymous visitors allowed
	h.Post("chat", c.Chat)
	h.Post("search", c.Search)
	h.Get("suggestions", c.Suggestions)
	h.Post("feedback", c.Feedback)
	h.Get("session/:id/stats", c.SessionStats)
	h.Get("usage", c.Usage)
}

func (c *conciergeController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conciergeService.Chat(ctx.Context(), serverutils.ClientIdentity(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *conciergeController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.Search(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *conciergeController) Suggestions(ctx *fiber.Ctx) error {
	var req dto.SuggestionsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.Suggestions(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *conciergeController) Feedback(ctx *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.conciergeService.Feedback(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Feedback recorded", nil))
}

func (c *conciergeController) SessionStats(ctx *fiber.Ctx) error {
	stats, err := c.conciergeService.SessionStats(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	if stats == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse("セッションが見つかりません"))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", stats))
}

func (c *conciergeController) Usage(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success", c.conciergeService.UsageReport(ctx.Context())))
}
