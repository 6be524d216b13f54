package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tigernone/corpusqa/internal/dto"
	"github.com/tigernone/corpusqa/internal/pkg/serverutils"
	"github.com/tigernone/corpusqa/internal/service"
)

type IQAController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Continue(ctx *fiber.Ctx) error
	ShowSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	ClearSessions(ctx *fiber.Ctx) error
}

type qaController struct {
	service service.IQAService
}

func NewQAController(service service.IQAService) IQAController {
	return &qaController{service: service}
}

func (c *qaController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/qa/v1")
	h.Post("/ask", c.Ask)
	h.Post("/continue", c.Continue)
	h.Get("/sessions", c.ListSessions)
	h.Delete("/sessions", c.ClearSessions)
	h.Get("/session/:id", c.ShowSession)
	h.Delete("/session/:id", c.DeleteSession)
}

func (c *qaController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Ask(ctx.Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ask question", res))
}

func (c *qaController) Continue(ctx *fiber.Ctx) error {
	var req dto.ContinueRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Continue(ctx.Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success continue session", res))
}

func (c *qaController) ShowSession(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *qaController) ListSessions(ctx *fiber.Ctx) error {
	res, err := c.service.ListSessions(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *qaController) DeleteSession(ctx *fiber.Ctx) error {
	if err := c.service.DeleteSession(ctx.Context(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete session", nil))
}

func (c *qaController) ClearSessions(ctx *fiber.Ctx) error {
	if err := c.service.ClearSessions(ctx.Context()); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear sessions", nil))
}
