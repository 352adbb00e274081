package storage

import "time"

// AcceptanceRecord: prueba durable e inmutable de que un usuario aceptó los
// T&C en un chat. Nunca se actualiza ni se borra (audit trail append-only).
type AcceptanceRecord struct {
	UserID       string
	ChatID       string
	Username     string
	AcceptedAt   time.Time
	TermsVersion string
	TermsContent string
}

// ChatPolicy: configuración de moderación por chat. La ausencia de fila
// equivale a voice_only_mode = "off" (estado válido, no error).
type ChatPolicy struct {
	ChatID        string
	ChatTitle     string
	VoiceOnlyMode string // "on" | "off"
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const (
	VoiceOnlyOn  = "on"
	VoiceOnlyOff = "off"
)

// PromptLog: registro best-effort de cada prompt enviado (lo poda el janitor).
type PromptLog struct {
	ChatID     string
	UserID     string
	MessageRef string
	SentAt     time.Time
}
