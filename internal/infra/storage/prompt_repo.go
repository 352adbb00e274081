package storage

import (
	"context"
	"database/sql"
)

type PromptRepo struct{ db *sql.DB }

func NewPromptRepo(db *sql.DB) *PromptRepo { return &PromptRepo{db: db} }

// Record es best-effort: si falla, el prompt igual quedó enviado y el botón
// sigue siendo válido (el user_id va embebido en el payload, no acá).
func (r *PromptRepo) Record(ctx context.Context, p PromptLog) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO prompt_log (chat_id, user_id, message_ref)
VALUES ($1, $2, $3)
`, p.ChatID, p.UserID, p.MessageRef)
	return err
}
