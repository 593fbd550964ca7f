package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"portfolio-assistant-be/internal/dto"
	"portfolio-assistant-be/internal/pkg/serverutils"
	"portfolio-assistant-be/internal/service"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	ChatStream(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.Chat)
	r.Post("/chat/stream", c.ChatStream)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Chat(ctx.Context(), &req, nil)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

// ChatStream answers over SSE. Recruiter turns stream model output
// live; judged turns replay the accepted answer token by token once the
// revise loop settles.
func (c *chatController) ChatStream(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// The fiber ctx is gone once this writer runs, so the chat
		// turn gets its own context. A failed flush means the client
		// disconnected; cancelling stops the in-flight model calls.
		streamCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		res, err := c.chatService.Chat(streamCtx, &req, &service.ChatStreamHooks{
			OnStart: func(mode, sessionId string, sources []string) {
				if err := writeSSE(w, "start", dto.StreamStartEvent{
					Mode:      mode,
					SessionId: sessionId,
					Sources:   sources,
				}); err != nil {
					cancel()
				}
			},
			OnToken: func(fragment string) {
				if err := writeSSE(w, "token", dto.StreamTokenEvent{Content: fragment}); err != nil {
					cancel()
				}
			},
		})
		if err != nil {
			writeSSE(w, "error", dto.StreamErrorEvent{Message: err.Error()})
			return
		}

		writeSSE(w, "end", dto.StreamEndEvent{
			SessionId:  res.SessionId,
			JudgeScore: res.JudgeScore,
			Sources:    res.Sources,
		})
	}))

	return nil
}

func writeSSE(w *bufio.Writer, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}
