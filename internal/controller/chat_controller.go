package controller

import (
	"strings"
	"time"

	"ai-chatbot/internal/constant"
	"ai-chatbot/internal/dto"
	"ai-chatbot/internal/pkg/serverutils"
	"ai-chatbot/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Root(ctx *fiber.Ctx) error
	Ping(ctx *fiber.Ctx) error
	Chat(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService  service.IChatService
	usageService service.IUsageService
}

func NewChatController(chatService service.IChatService, usageService service.IUsageService) IChatController {
	return &chatController{
		chatService:  chatService,
		usageService: usageService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Root)
	r.Get("/ping", c.Ping)
	r.Post("/chat", c.Chat)
	r.Get("/stats", c.Stats)
}

func (c *chatController) Root(ctx *fiber.Ctx) error {
	return ctx.SendString(constant.ServerRunningMessage)
}

// Ping answers the client's wake-up probe. It never touches the generation API.
func (c *chatController) Ping(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.PingResponse{
		Status:    constant.PingStatusOK,
		Timestamp: time.Now().UTC(),
	})
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError(constant.ErrInvalidRequestBody)
	}

	req.Message = strings.TrimSpace(req.Message)
	// Same normalization chat.ParseRole applies, so " User " passes validation.
	for i := range req.History {
		req.History[i].Role = strings.ToLower(strings.TrimSpace(req.History[i].Role))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Relay(ctx.UserContext(), requestID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *chatController) Stats(ctx *fiber.Ctx) error {
	res, err := c.usageService.Stats(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func requestID(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals("requestid").(string)
	return id
}
