package storage

import (
	"context"
	"database/sql"
	"errors"

	pq "github.com/lib/pq"
)

var ErrNotFound = errors.New("not found")

type AcceptanceRepo struct{ db *sql.DB }

func NewAcceptanceRepo(db *sql.DB) *AcceptanceRepo { return &AcceptanceRepo{db: db} }

// Insert es insert-or-ignore sobre la PK (user_id, chat_id): el constraint es
// el único punto de serialización entre accepts concurrentes. Devuelve false
// si ya existía la fila (click duplicado / retry / carrera).
func (r *AcceptanceRepo) Insert(ctx context.Context, rec AcceptanceRecord) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO acceptances (user_id, chat_id, username, terms_version, terms_content)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, chat_id) DO NOTHING
`, rec.UserID, rec.ChatID, rec.Username, rec.TermsVersion, rec.TermsContent)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *AcceptanceRepo) Get(ctx context.Context, userID, chatID string) (AcceptanceRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT user_id, chat_id, username, accepted_at, terms_version, terms_content
  FROM acceptances
 WHERE user_id = $1 AND chat_id = $2
`, userID, chatID)
	var rec AcceptanceRecord
	err := row.Scan(&rec.UserID, &rec.ChatID, &rec.Username, &rec.AcceptedAt, &rec.TermsVersion, &rec.TermsContent)
	if err == sql.ErrNoRows {
		return AcceptanceRecord{}, ErrNotFound
	}
	return rec, err
}

func (r *AcceptanceRepo) ListAll(ctx context.Context) ([]AcceptanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT user_id, chat_id, username, accepted_at, terms_version, terms_content
  FROM acceptances
 ORDER BY accepted_at
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AcceptanceRecord
	for rows.Next() {
		var rec AcceptanceRecord
		if err := rows.Scan(&rec.UserID, &rec.ChatID, &rec.Username, &rec.AcceptedAt, &rec.TermsVersion, &rec.TermsContent); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountByChatIDs: devuelve mapa chat_id -> cantidad de aceptaciones.
func (r *AcceptanceRepo) CountByChatIDs(ctx context.Context, chatIDs []string) (map[string]int, error) {
	out := map[string]int{}
	if len(chatIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT chat_id, COUNT(*)
  FROM acceptances
 WHERE chat_id = ANY($1)
 GROUP BY chat_id
`, pq.Array(chatIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}
