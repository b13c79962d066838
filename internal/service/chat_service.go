package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jane-proxy-be/internal/constant"
	"jane-proxy-be/internal/dto"
	"jane-proxy-be/internal/entity"
	"jane-proxy-be/internal/pkg/logger"
	"jane-proxy-be/internal/repository/specification"
	"jane-proxy-be/internal/repository/unitofwork"
	"jane-proxy-be/pkg/enrich"
	"jane-proxy-be/pkg/llm"
	"jane-proxy-be/pkg/persona"
	"jane-proxy-be/pkg/safety"

	"github.com/google/uuid"
)

// errClientGone marks emit failures so a dropped client is not mistaken
// for a provider outage.
var errClientGone = errors.New("client disconnected")

// ChatTurn carries the prepared state of one chat turn between the
// persistence phase and the streaming phase.
type ChatTurn struct {
	ConversationId uuid.UUID
	Crisis         bool
	Prompt         []llm.Message
	StartedAt      time.Time
}

// IChatService defines the chat turn pipeline
type IChatService interface {
	// PrepareTurn loads or creates the conversation, sanitizes the inbound
	// messages, runs crisis detection, and persists what the turn needs
	// before any streaming starts.
	PrepareTurn(ctx context.Context, request *dto.ChatRequest) (*ChatTurn, error)

	// StreamReply produces the assistant reply for a prepared turn,
	// delivering fragments through emit.
	StreamReply(ctx context.Context, turn *ChatTurn, emit func(delta string) error) error

	GetHistory(ctx context.Context, userId string, limit int) (*dto.HistoryResponse, error)
	ListPacks() *dto.PacksResponse
}

type chatService struct {
	uowFactory  unitofwork.RepositoryFactory
	llmProvider llm.LLMProvider
	registry    *persona.Registry
	fetcher     *enrich.Fetcher
	log         logger.ILogger
	relayLog    logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	registry *persona.Registry,
	fetcher *enrich.Fetcher,
	log logger.ILogger,
	relayLog logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:  uowFactory,
		llmProvider: llmProvider,
		registry:    registry,
		fetcher:     fetcher,
		log:         log,
		relayLog:    relayLog,
	}
}

func (cs *chatService) PrepareTurn(ctx context.Context, request *dto.ChatRequest) (*ChatTurn, error) {
	userId := strings.TrimSpace(request.UserId)
	if userId == "" {
		userId = constant.DefaultUserId
	}
	now := time.Now()

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conv, err := uow.ConversationRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	if conv != nil {
		latest, err := uow.MessageRepository().FindAll(ctx,
			specification.ByConversationID{ConversationID: conv.Id},
			specification.OrderBy{Field: "created_at", Desc: true},
			specification.Pagination{Limit: 1},
		)
		if err != nil {
			return nil, err
		}
		// Turns arriving within the offset window reserved for the previous
		// assistant row would otherwise break created_at ordering.
		if len(latest) > 0 && !now.After(latest[0].CreatedAt) {
			now = latest[0].CreatedAt.Add(time.Millisecond)
		}
	}

	sanitized := make([]llm.Message, 0, len(request.Messages))
	crisis := false
	for _, m := range request.Messages {
		content := safety.Scrub(m.Content)
		if safety.IsCrisis(content) {
			crisis = true
		}
		role := m.Role
		if role == "" {
			role = constant.ChatRoleUser
		}
		sanitized = append(sanitized, llm.Message{Role: role, Content: content})
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if conv == nil {
		conv = &entity.Conversation{
			Id:        uuid.New(),
			UserId:    userId,
			Title:     constant.DefaultConversationTitle,
			CreatedAt: now,
		}
		if err := uow.ConversationRepository().Create(ctx, conv); err != nil {
			return nil, err
		}
	}

	turn := &ChatTurn{
		ConversationId: conv.Id,
		StartedAt:      now,
	}

	if crisis {
		// The user message is deliberately not persisted on this branch.
		safeReply := &entity.Message{
			Id:             uuid.New(),
			ConversationId: conv.Id,
			Role:           constant.ChatRoleAssistant,
			Content:        constant.CrisisSafetyScript,
			CreatedAt:      now.Add(1 * time.Millisecond),
		}
		if err := uow.MessageRepository().Create(ctx, safeReply); err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}

		cs.log.Warn("chat", "Crisis language detected, safety script substituted", map[string]interface{}{
			"conversation_id": conv.Id.String(),
		})
		turn.Crisis = true
		return turn, nil
	}

	if len(sanitized) > 0 {
		last := sanitized[len(sanitized)-1]
		userMessage := &entity.Message{
			Id:             uuid.New(),
			ConversationId: conv.Id,
			Role:           last.Role,
			Content:        last.Content,
			CreatedAt:      now,
		}
		if err := uow.MessageRepository().Create(ctx, userMessage); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	systemPrompt := cs.registry.Resolve(request.Pack)
	if cs.fetcher != nil && cs.fetcher.Enabled() {
		if res := cs.fetcher.Augment(ctx); res.Text != "" {
			systemPrompt += "\n\nReference material (cite sources when used):\n" + res.Text
			cs.relayLog.Info("enrich", "Prompt augmented with web references", map[string]interface{}{
				"sources": res.Sources,
			})
		}
	}

	turn.Prompt = append([]llm.Message{{Role: constant.ChatRoleSystem, Content: systemPrompt}}, sanitized...)
	return turn, nil
}

func (cs *chatService) StreamReply(ctx context.Context, turn *ChatTurn, emit func(delta string) error) error {
	if turn.Crisis {
		return emit(constant.CrisisSafetyScript)
	}

	// A failed write is the only disconnect signal the stream writer gives
	// us, so tear down the upstream stream the moment one happens.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var full strings.Builder
	handler := func(delta string) error {
		full.WriteString(delta)
		if err := emit(delta); err != nil {
			cancel()
			return fmt.Errorf("%w: %v", errClientGone, err)
		}
		return nil
	}

	err := cs.llmProvider.ChatStream(streamCtx, turn.Prompt, handler)
	if err != nil {
		if errors.Is(err, errClientGone) || errors.Is(err, context.Canceled) {
			// The client is gone: drop the partial reply rather than
			// persisting a response nobody received in full.
			cs.relayLog.Info("chat", "Client disconnected mid-stream, reply discarded", map[string]interface{}{
				"conversation_id": turn.ConversationId.String(),
				"received_chars":  full.Len(),
			})
			return nil
		}

		cs.log.Error("chat", "Provider stream failed, sending fallback", map[string]interface{}{
			"conversation_id": turn.ConversationId.String(),
			"error":           err.Error(),
		})
		// Best effort: the client may already be gone.
		_ = emit(constant.ProviderFallbackScript)
		return nil
	}

	reply := &entity.Message{
		Id:             uuid.New(),
		ConversationId: turn.ConversationId,
		Role:           constant.ChatRoleAssistant,
		Content:        full.String(),
		CreatedAt:      turn.StartedAt.Add(2 * time.Millisecond),
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().Create(ctx, reply); err != nil {
		return err
	}
	return uow.Commit()
}

func (cs *chatService) GetHistory(ctx context.Context, userId string, limit int) (*dto.HistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conv, err := uow.ConversationRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return &dto.HistoryResponse{Messages: []dto.HistoryMessage{}}, nil
	}

	var messages []*entity.Message
	if limit > 0 {
		// Newest N, then restored to chronological order.
		messages, err = uow.MessageRepository().FindAll(ctx,
			specification.ByConversationID{ConversationID: conv.Id},
			specification.OrderBy{Field: "created_at", Desc: true},
			specification.Pagination{Limit: limit},
		)
		if err != nil {
			return nil, err
		}
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
	} else {
		messages, err = uow.MessageRepository().FindAll(ctx,
			specification.ByConversationID{ConversationID: conv.Id},
			specification.OrderBy{Field: "created_at", Desc: false},
		)
		if err != nil {
			return nil, err
		}
	}

	resp := &dto.HistoryResponse{
		ConvId:   &conv.Id,
		Messages: make([]dto.HistoryMessage, 0, len(messages)),
	}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, dto.HistoryMessage{
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return resp, nil
}

func (cs *chatService) ListPacks() *dto.PacksResponse {
	return &dto.PacksResponse{Packs: cs.registry.Keys()}
}
