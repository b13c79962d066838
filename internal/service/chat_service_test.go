package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"jane-proxy-be/internal/constant"
	"jane-proxy-be/internal/dto"
	"jane-proxy-be/pkg/enrich"
	"jane-proxy-be/pkg/persona"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatServiceForTest(store *fakeStore, provider *fakeLLMProvider) IChatService {
	return NewChatService(
		&fakeUowFactory{store: store},
		provider,
		persona.NewRegistry(),
		enrich.NewFetcher(false, nil, nil),
		nopLogger{},
		nopLogger{},
	)
}

func collectEmits(t *testing.T, svc IChatService, turn *ChatTurn) []string {
	t.Helper()
	var emitted []string
	err := svc.StreamReply(context.Background(), turn, func(delta string) error {
		emitted = append(emitted, delta)
		return nil
	})
	require.NoError(t, err)
	return emitted
}

func TestChatFirstTurnCreatesConversationAndPersistsBothSides(t *testing.T) {
	store := newFakeStore()
	provider := &fakeLLMProvider{deltas: []string{"Hello ", "there."}}
	svc := newChatServiceForTest(store, provider)

	turn, err := svc.PrepareTurn(context.Background(), &dto.ChatRequest{
		UserId: "u-1",
		Messages: []dto.ChatMessage{
			{Role: "user", Content: "Reach me at jane.doe@example.com please"},
		},
	})
	require.NoError(t, err)
	assert.False(t, turn.Crisis)

	require.Len(t, store.conversations, 1)
	assert.Equal(t, "u-1", store.conversations[0].UserId)
	assert.Equal(t, constant.DefaultConversationTitle, store.conversations[0].Title)

	// The stored user message is the sanitized form.
	require.Len(t, store.messages, 1)
	assert.Equal(t, constant.ChatRoleUser, store.messages[0].Role)
	assert.Equal(t, "Reach me at [email] please", store.messages[0].Content)

	// The prompt leads with the persona system prompt and carries the
	// sanitized user content.
	require.NotEmpty(t, turn.Prompt)
	assert.Equal(t, constant.ChatRoleSystem, turn.Prompt[0].Role)
	assert.Contains(t, turn.Prompt[0].Content, "Jane")
	assert.Equal(t, "Reach me at [email] please", turn.Prompt[len(turn.Prompt)-1].Content)

	emitted := collectEmits(t, svc, turn)
	assert.Equal(t, []string{"Hello ", "there."}, emitted)

	require.Len(t, store.messages, 2)
	reply := store.messages[1]
	assert.Equal(t, constant.ChatRoleAssistant, reply.Role)
	assert.Equal(t, "Hello there.", reply.Content)
	assert.True(t, reply.CreatedAt.After(store.messages[0].CreatedAt))
}

func TestChatSecondTurnReusesConversation(t *testing.T) {
	store := newFakeStore()
	provider := &fakeLLMProvider{deltas: []string{"ok"}}
	svc := newChatServiceForTest(store, provider)

	first, err := svc.PrepareTurn(context.Background(), &dto.ChatRequest{
		UserId:   "u-1",
		Messages: []dto.ChatMessage{{Role: "user", Content: "first"}},
	})
	require.NoError(t, err)
	collectEmits(t, svc, first)

	second, err := svc.PrepareTurn(context.Background(), &dto.ChatRequest{
		UserId:   "u-1",
		Messages: []dto.ChatMessage{{Role: "user", Content: "second"}},
	})
	require.NoError(t, err)

	assert.Len(t, store.conversations, 1)
	assert.Equal(t, first.ConversationId, second.ConversationId)
}

func TestChatDefaultsApplied(t *testing.T) {
	store := newFakeStore()
	svc := newChatServiceForTest(store, &fakeLLMProvider{deltas: []string{"hi"}})

	turn, err := svc.PrepareTurn(context.Background(), &dto.ChatRequest{})
	require.NoError(t, err)
	assert.False(t, turn.Crisis)

	require.Len(t, store.conversations, 1)
	assert.Equal(t, constant.DefaultUserId, store.conversations[0].UserId)

	// No inbound messages: nothing to persist, prompt is just the system turn.
	assert.Empty(t, store.messages)
	require.Len(t, turn.Prompt, 1)
	assert.Equal(t, constant.ChatRoleSystem, turn.Prompt[0].Role)
}

func TestChatCrisisSubstitutesSafetyScript(t *testing.T) {
	store := newFakeStore()
	provider := &fakeLLMProvider{deltas: []string{"should never stream"}}
	svc := newChatServiceForTest(store, provider)

	turn, err := svc.PrepareTurn(context.Background(), &dto.ChatRequest{
		UserId:   "u-1",
		Messages: []dto.ChatMessage{{Role: "user", Content: "I want to end my life"}},
	})
	require.NoError(t, err)
	assert.True(t, turn.Crisis)

	// Only the safety reply is persisted; the user message is not.
	require.Len(t, store.messages, 1)
	assert.Equal(t, constant.ChatRoleAssistant, store.messages[0].Role)
	assert.Equal(t, constant.CrisisSafetyScript, store.messages[0].Content)

	emitted := collectEmits(t, svc, turn)
	assert.Equal(t, []string{constant.CrisisSafetyScript}, emitted)
	assert.Equal(t, 0, provider.calls)

	// Nothing further is written by the streaming phase.
	assert.Len(t, store.messages, 1)
}

func TestChatProviderFailureEmitsFallbackWithoutPersisting(t *testing.T) {
	store := newFakeStore()
	provider := &fakeLLMProvider{failWith: errProviderDown}
	svc := newChatServiceForTest(store, provider)

	turn, err := svc.PrepareTurn(context.Background(), &dto.ChatRequest{
		UserId:   "u-1",
		Messages: []dto.ChatMessage{{Role: "user", Content: "hello"}},
	})
	require.NoError(t, err)

	emitted := collectEmits(t, svc, turn)
	assert.Equal(t, []string{constant.ProviderFallbackScript}, emitted)

	// The user message stays, no assistant reply is recorded.
	require.Len(t, store.messages, 1)
	assert.Equal(t, constant.ChatRoleUser, store.messages[0].Role)
}

func TestChatClientDisconnectDiscardsPartialReply(t *testing.T) {
	store := newFakeStore()
	provider := &fakeLLMProvider{deltas: []string{"a", "b", "c"}}
	svc := newChatServiceForTest(store, provider)

	turn, err := svc.PrepareTurn(context.Background(), &dto.ChatRequest{
		UserId:   "u-1",
		Messages: []dto.ChatMessage{{Role: "user", Content: "hello"}},
	})
	require.NoError(t, err)

	seen := 0
	err = svc.StreamReply(context.Background(), turn, func(delta string) error {
		seen++
		if seen == 2 {
			return context.Canceled
		}
		return nil
	})
	require.NoError(t, err)

	// Only the user message survives.
	assert.Len(t, store.messages, 1)
}

func TestChatDisconnectCancelsUpstreamStream(t *testing.T) {
	store := newFakeStore()
	provider := &fakeLLMProvider{deltas: []string{"a", "b"}}
	svc := newChatServiceForTest(store, provider)

	turn, err := svc.PrepareTurn(context.Background(), &dto.ChatRequest{
		UserId:   "u-1",
		Messages: []dto.ChatMessage{{Role: "user", Content: "hello"}},
	})
	require.NoError(t, err)

	err = svc.StreamReply(context.Background(), turn, func(delta string) error {
		return errors.New("broken pipe")
	})
	require.NoError(t, err)

	// The stream context must be torn down on the first failed write so the
	// provider stops producing for a client that is no longer listening.
	assert.True(t, provider.sawCtxDone)
	assert.Len(t, store.messages, 1)
}

func TestChatRapidTurnsKeepTimestampOrder(t *testing.T) {
	store := newFakeStore()
	provider := &fakeLLMProvider{deltas: []string{"r"}}
	svc := newChatServiceForTest(store, provider)

	// Three full turns back to back, faster than the offsets used to space
	// rows within a single turn.
	for _, content := range []string{"one", "two", "three"} {
		turn, err := svc.PrepareTurn(context.Background(), &dto.ChatRequest{
			UserId:   "u-1",
			Messages: []dto.ChatMessage{{Role: "user", Content: content}},
		})
		require.NoError(t, err)
		collectEmits(t, svc, turn)
	}

	require.Len(t, store.messages, 6)
	for i := 1; i < len(store.messages); i++ {
		assert.True(t, store.messages[i].CreatedAt.After(store.messages[i-1].CreatedAt),
			"message %d (%q) not after message %d (%q)",
			i, store.messages[i].Content, i-1, store.messages[i-1].Content)
	}
}

func TestGetHistoryReturnsChronologicalOrder(t *testing.T) {
	store := newFakeStore()
	provider := &fakeLLMProvider{deltas: []string{"reply one"}}
	svc := newChatServiceForTest(store, provider)

	turn, err := svc.PrepareTurn(context.Background(), &dto.ChatRequest{
		UserId:   "u-1",
		Messages: []dto.ChatMessage{{Role: "user", Content: "question one"}},
	})
	require.NoError(t, err)
	collectEmits(t, svc, turn)

	history, err := svc.GetHistory(context.Background(), "u-1", 0)
	require.NoError(t, err)
	require.NotNil(t, history.ConvId)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "question one", history.Messages[0].Content)
	assert.Equal(t, "reply one", history.Messages[1].Content)
	assert.True(t, !history.Messages[1].CreatedAt.Before(history.Messages[0].CreatedAt))
}

func TestGetHistoryLimitKeepsNewestMessages(t *testing.T) {
	store := newFakeStore()
	provider := &fakeLLMProvider{deltas: []string{"r"}}
	svc := newChatServiceForTest(store, provider)

	for _, content := range []string{"one", "two", "three"} {
		turn, err := svc.PrepareTurn(context.Background(), &dto.ChatRequest{
			UserId:   "u-1",
			Messages: []dto.ChatMessage{{Role: "user", Content: content}},
		})
		require.NoError(t, err)
		collectEmits(t, svc, turn)
	}

	history, err := svc.GetHistory(context.Background(), "u-1", 2)
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	// The newest two, oldest first.
	assert.Equal(t, "three", history.Messages[0].Content)
	assert.Equal(t, "r", history.Messages[1].Content)
}

func TestGetHistoryUnknownUser(t *testing.T) {
	store := newFakeStore()
	svc := newChatServiceForTest(store, &fakeLLMProvider{})

	history, err := svc.GetHistory(context.Background(), "nobody", 0)
	require.NoError(t, err)
	assert.Nil(t, history.ConvId)
	assert.Empty(t, history.Messages)
}

func TestListPacksLeadsWithDefault(t *testing.T) {
	svc := newChatServiceForTest(newFakeStore(), &fakeLLMProvider{})

	packs := svc.ListPacks()
	require.NotEmpty(t, packs.Packs)
	assert.Equal(t, "standard", packs.Packs[0])
	assert.True(t, strings.HasPrefix(packs.Packs[1], "firstNations"))
}
