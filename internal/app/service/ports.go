package service

import (
	"context"

	"github.com/jose-valero/community-gate-bot/internal/domain"
	"github.com/jose-valero/community-gate-bot/internal/infra/storage"
)

// Lo implementa internal/adapters/discord.Gateway
type Gateway interface {
	// RestrictMember aplica el PermissionSet al (user, chat); con
	// domain.Unrestricted levanta la restricción.
	RestrictMember(ctx context.Context, chatID, userID string, perms domain.PermissionSet) error
	// SendMessage manda un mensaje al chat (control opcional) y devuelve el ref.
	SendMessage(ctx context.Context, chatID, text string, control *domain.Control) (string, error)
	// SendFile adjunta un archivo (export CSV) con un caption.
	SendFile(ctx context.Context, chatID, filename string, data []byte, caption string) error
	DeleteMessage(ctx context.Context, chatID, messageRef string) error
	GetMemberRole(ctx context.Context, chatID, userID string) (domain.Role, error)
	// AnswerAction responde efímero al actor de un ActionTriggered
	// (text vacío = ack silencioso).
	AnswerAction(ctx context.Context, actionID, text string) error
}

// Lo implementa internal/infra/storage.AcceptanceRepo
type AcceptanceRepo interface {
	Insert(ctx context.Context, rec storage.AcceptanceRecord) (bool, error)
	ListAll(ctx context.Context) ([]storage.AcceptanceRecord, error)
	CountByChatIDs(ctx context.Context, chatIDs []string) (map[string]int, error)
}

// Lo implementa internal/infra/storage.PolicyRepo
type PolicyRepo interface {
	Get(ctx context.Context, chatID string) (storage.ChatPolicy, error)
	Upsert(ctx context.Context, chatID, chatTitle, mode string) error
	ListAll(ctx context.Context) ([]storage.ChatPolicy, error)
}

// Lo implementa internal/infra/storage.PromptRepo
type PromptRepo interface {
	Record(ctx context.Context, p storage.PromptLog) error
}
