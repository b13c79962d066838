package serverutils

import (
	"bufio"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
)

// SetStreamHeaders prepares a response for server-sent events.
func SetStreamHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
}

type deltaFrame struct {
	Delta string `json:"delta"`
}

// EventStreamWriter emits the wire protocol the chat clients consume:
// one "data: {\"delta\":...}" frame per fragment and a final
// "data: [DONE]" sentinel. Every frame is flushed immediately so tokens
// reach the client as they arrive.
type EventStreamWriter struct {
	w *bufio.Writer
}

func NewEventStreamWriter(w *bufio.Writer) *EventStreamWriter {
	return &EventStreamWriter{w: w}
}

func (s *EventStreamWriter) WriteDelta(delta string) error {
	payload, err := json.Marshal(deltaFrame{Delta: delta})
	if err != nil {
		return err
	}
	if _, err := s.w.WriteString("data: " + string(payload) + "\n\n"); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *EventStreamWriter) WriteDone() error {
	if _, err := s.w.WriteString("data: [DONE]\n\n"); err != nil {
		return err
	}
	return s.w.Flush()
}
