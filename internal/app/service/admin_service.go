package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"time"

	"github.com/jose-valero/community-gate-bot/internal/domain"
	"github.com/jose-valero/community-gate-bot/internal/infra/storage"
)

type AdminService struct {
	gw          Gateway
	policy      PolicyRepo
	acceptances AcceptanceRepo
	ownerID     string
}

func NewAdminService(gw Gateway, policy PolicyRepo, acceptances AcceptanceRepo, ownerID string) *AdminService {
	return &AdminService{gw: gw, policy: policy, acceptances: acceptances, ownerID: ownerID}
}

// SetVoiceOnly: solo admins/owner del chat. Upsertea la policy guardando el
// título observado del chat.
func (s *AdminService) SetVoiceOnly(ctx context.Context, ev domain.CommandInvoked, mode string) (string, error) {
	role, err := s.gw.GetMemberRole(ctx, ev.ChatID, ev.InvokerID)
	if err != nil || !role.IsAdmin() {
		return "🔒 Solo los admins pueden usar este comando.", nil
	}

	if err := s.policy.Upsert(ctx, ev.ChatID, ev.ChatTitle, mode); err != nil {
		return "", err
	}
	log.Printf("admin: voice-only=%s en chat %s por user %s", mode, ev.ChatID, ev.InvokerID)

	if mode == storage.VoiceOnlyOn {
		return "🎙️ Modo voice-only activado. A partir de ahora borro todo mensaje que no sea de voz.", nil
	}
	return "💬 Modo voice-only desactivado. Todos los tipos de mensaje están permitidos.", nil
}

// ExportUsers: owner-only y solo por privado. Devuelve el CSV con todas las
// aceptaciones (o el aviso correspondiente si no corresponde exportar).
func (s *AdminService) ExportUsers(ctx context.Context, ev domain.CommandInvoked) (notice string, csvData []byte, err error) {
	if msg := s.ownerGate(ev); msg != "" {
		return msg, nil, nil
	}

	recs, err := s.acceptances.ListAll(ctx)
	if err != nil {
		return "", nil, err
	}
	if len(recs) == 0 {
		return "ℹ️ Todavía nadie aceptó los T&C.", nil, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"user_id", "username", "terms_version", "timestamp", "chat_id", "terms_content"})
	for _, rec := range recs {
		_ = w.Write([]string{
			rec.UserID,
			rec.Username,
			rec.TermsVersion,
			rec.AcceptedAt.UTC().Format(time.RFC3339),
			rec.ChatID,
			rec.TermsContent,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, err
	}

	log.Printf("admin: owner %s exportó %d aceptaciones", ev.InvokerID, len(recs))
	return "📦 Acá va la lista de usuarios que aceptaron los T&C.", buf.Bytes(), nil
}

// ShowGroups: owner-only y solo por privado. Lista cada chat configurado con
// su modo y cuántas aceptaciones tiene.
func (s *AdminService) ShowGroups(ctx context.Context, ev domain.CommandInvoked) (string, error) {
	if msg := s.ownerGate(ev); msg != "" {
		return msg, nil
	}

	groups, err := s.policy.ListAll(ctx)
	if err != nil {
		return "", err
	}
	if len(groups) == 0 {
		return "ℹ️ El bot todavía no fue configurado en ningún grupo.", nil
	}

	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ChatID)
	}
	counts, err := s.acceptances.CountByChatIDs(ctx, ids)
	if err != nil {
		return "", err
	}

	out := "📋 **Grupos configurados**\n"
	for _, g := range groups {
		title := g.ChatTitle
		if title == "" {
			title = g.ChatID
		}
		out += fmt.Sprintf("• %s — voice-only: **%s** · %d aceptaciones\n", title, g.VoiceOnlyMode, counts[g.ChatID])
	}
	return out, nil
}

func (s *AdminService) Start() string {
	return "👋 ¡Hola! Soy el bot de la comunidad: gestiono el alta de miembros nuevos y el modo voice-only."
}

// ownerGate: caller equivocado o chat equivocado => rechazo, cero datos.
func (s *AdminService) ownerGate(ev domain.CommandInvoked) string {
	if ev.InvokerID != s.ownerID {
		return "🔒 Solo el owner del bot puede usar este comando."
	}
	if ev.ChatType != domain.ChatPrivate {
		return "🔒 Este comando solo funciona por privado."
	}
	return ""
}

// CommandHandler rutea los comandos REGISTRADOS; un nombre desconocido no
// matchea y cae al filtro de contenido (fall-through explícito).
type CommandHandler struct {
	Svc *AdminService
	Gw  Gateway
}

func (h CommandHandler) Matches(ev domain.Event) bool {
	c, ok := ev.(domain.CommandInvoked)
	if !ok {
		return false
	}
	switch c.Name {
	case "voiceonly_on", "voiceonly_off", "export_users", "show_groups", "start":
		return true
	}
	return false
}

func (h CommandHandler) Handle(ctx context.Context, ev domain.Event) error {
	c := ev.(domain.CommandInvoked)

	var msg string
	var err error
	switch c.Name {
	case "voiceonly_on":
		msg, err = h.Svc.SetVoiceOnly(ctx, c, storage.VoiceOnlyOn)
	case "voiceonly_off":
		msg, err = h.Svc.SetVoiceOnly(ctx, c, storage.VoiceOnlyOff)
	case "export_users":
		var data []byte
		msg, data, err = h.Svc.ExportUsers(ctx, c)
		if err == nil && data != nil {
			return h.Gw.SendFile(ctx, c.ChatID, "user_acceptances.csv", data, msg)
		}
	case "show_groups":
		msg, err = h.Svc.ShowGroups(ctx, c)
	case "start":
		msg = h.Svc.Start()
	}
	if err != nil {
		return err
	}
	if msg == "" {
		return nil
	}
	_, err = h.Gw.SendMessage(ctx, c.ChatID, msg, nil)
	return err
}
