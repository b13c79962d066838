package constant

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"
)

const (
	DefaultUserId            = "local-user"
	DefaultConversationTitle = "General"
)

// CrisisSafetyScript is streamed and persisted verbatim when a turn trips
// the crisis detector. The model is never called for these turns.
const CrisisSafetyScript = "I’m really glad you told me. I can’t provide emergency care, but you deserve support. In Canada, call or text 9‑8‑8. First Nations & Inuit Hope for Wellness: 1‑855‑242‑3310 (24/7). If you’re in immediate danger, call 911."

// ProviderFallbackScript is streamed when the upstream model fails mid-turn.
// It is intentionally not persisted.
const ProviderFallbackScript = "I’m having trouble connecting right now. Let’s pick one small next step together."
