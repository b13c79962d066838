package controller

import (
	"bufio"
	"context"
	"strconv"
	"time"

	"jane-proxy-be/internal/dto"
	"jane-proxy-be/internal/pkg/logger"
	"jane-proxy-be/internal/pkg/serverutils"
	"jane-proxy-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	GetPacks(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
	log     logger.ILogger
}

func NewChatController(service service.IChatService, log logger.ILogger) IChatController {
	return &chatController{service: service, log: log}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
	r.Get("/packs", c.GetPacks)
	r.Get("/history", c.GetHistory)
	r.Post("/chat", c.Chat)
}

func (c *chatController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Ok:   true,
		Time: time.Now().UnixMilli(),
	})
}

func (c *chatController) GetPacks(ctx *fiber.Ctx) error {
	return ctx.JSON(c.service.ListPacks())
}

func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	userId := ctx.Query("userId")
	if userId == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "userId is required"))
	}

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "limit must be a non-negative integer"))
		}
		limit = parsed
	}

	res, err := c.service.GetHistory(ctx.Context(), userId, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	// Clients send a loose payload; an unparseable body is treated as empty.
	if err := ctx.BodyParser(&req); err != nil {
		req = dto.ChatRequest{}
	}

	turn, err := c.service.PrepareTurn(ctx.Context(), &req)
	if err != nil {
		return err
	}

	serverutils.SetStreamHeaders(ctx)

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// The request context is gone once streaming starts; persistence
		// inside the reply runs on its own context.
		streamCtx := context.Background()
		stream := serverutils.NewEventStreamWriter(w)

		err := c.service.StreamReply(streamCtx, turn, stream.WriteDelta)
		if err != nil {
			c.log.Error("chat", "Failed to finalize streamed reply", map[string]interface{}{
				"conversation_id": turn.ConversationId.String(),
				"error":           err.Error(),
			})
			return
		}

		if err := stream.WriteDone(); err != nil {
			c.log.Debug("chat", "Client closed stream before completion marker", map[string]interface{}{
				"conversation_id": turn.ConversationId.String(),
			})
		}
	}))

	return nil
}
