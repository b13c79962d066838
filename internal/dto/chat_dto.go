package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest mirrors the loose shape clients send: every field is optional
// and zero values fall back to defaults inside the service.
type ChatRequest struct {
	UserId   string        `json:"userId"`
	Pack     string        `json:"pack"`
	Messages []ChatMessage `json:"messages"`
}

type HistoryMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type HistoryResponse struct {
	ConvId   *uuid.UUID       `json:"convId,omitempty"`
	Messages []HistoryMessage `json:"messages"`
}

type PacksResponse struct {
	Packs []string `json:"packs"`
}

type HealthResponse struct {
	Ok   bool  `json:"ok"`
	Time int64 `json:"time"`
}
