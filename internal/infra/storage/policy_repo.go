package storage

import (
	"context"
	"database/sql"
)

type PolicyRepo struct{ db *sql.DB }

func NewPolicyRepo(db *sql.DB) *PolicyRepo { return &PolicyRepo{db: db} }

// Get devuelve la policy del chat. Sin fila => default "off" (no insertamos
// nada: la ausencia es un estado válido).
func (r *PolicyRepo) Get(ctx context.Context, chatID string) (ChatPolicy, error) {
	var p ChatPolicy
	err := r.db.QueryRowContext(ctx, `
SELECT chat_id, chat_title, voice_only_mode, created_at, updated_at
  FROM chat_policy
 WHERE chat_id = $1
`, chatID).Scan(&p.ChatID, &p.ChatTitle, &p.VoiceOnlyMode, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return ChatPolicy{ChatID: chatID, VoiceOnlyMode: VoiceOnlyOff}, nil
	}
	return p, err
}

func (r *PolicyRepo) Upsert(ctx context.Context, chatID, chatTitle, mode string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO chat_policy (chat_id, chat_title, voice_only_mode)
VALUES ($1, $2, $3)
ON CONFLICT (chat_id) DO UPDATE SET
  chat_title      = EXCLUDED.chat_title,
  voice_only_mode = EXCLUDED.voice_only_mode,
  updated_at      = now()
`, chatID, chatTitle, mode)
	return err
}

func (r *PolicyRepo) ListAll(ctx context.Context) ([]ChatPolicy, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT chat_id, chat_title, voice_only_mode, created_at, updated_at
  FROM chat_policy
 ORDER BY chat_title
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChatPolicy
	for rows.Next() {
		var p ChatPolicy
		if err := rows.Scan(&p.ChatID, &p.ChatTitle, &p.VoiceOnlyMode, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
