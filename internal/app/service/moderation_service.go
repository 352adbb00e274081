package service

import (
	"context"
	"log"

	"github.com/jose-valero/community-gate-bot/internal/domain"
	"github.com/jose-valero/community-gate-bot/internal/infra/storage"
)

type ModerationService struct {
	gw     Gateway
	policy PolicyRepo
}

func NewModerationService(gw Gateway, policy PolicyRepo) *ModerationService {
	return &ModerationService{gw: gw, policy: policy}
}

// HandleContent evalúa un mensaje contra el modo voice-only del chat.
// Exentos: admins/owner y los mensajes de voz. Si no podemos leer el rol del
// autor lo tratamos como no-admin (se borra igual). Un delete que falla se
// loguea y listo: nunca sube al caller.
func (s *ModerationService) HandleContent(ctx context.Context, chatID, authorID, messageRef string, kind domain.ContentKind) error {
	pol, err := s.policy.Get(ctx, chatID)
	if err != nil {
		return err
	}
	if pol.VoiceOnlyMode != storage.VoiceOnlyOn {
		return nil
	}

	role, err := s.gw.GetMemberRole(ctx, chatID, authorID)
	if err != nil {
		log.Printf("filter: no pude leer el rol de %s en %s (lo trato como no-admin): %v", authorID, chatID, err)
		role = domain.RoleMember
	}
	if role.IsAdmin() {
		return nil
	}
	if kind == domain.ContentVoice {
		return nil
	}

	if err := s.gw.DeleteMessage(ctx, chatID, messageRef); err != nil {
		log.Printf("filter: no pude borrar el mensaje %s en %s: %v", messageRef, chatID, err)
		return nil
	}
	log.Printf("filter: borrado mensaje no-voz de %s en chat %s", authorID, chatID)
	return nil
}

// ModerationHandler es el catch-all: va ÚLTIMO en el dispatcher. Matchea
// contenido de chats grupales y también los CommandInvoked que ningún handler
// anterior reconoció (un "/loquesea" es texto como cualquier otro).
type ModerationHandler struct{ Svc *ModerationService }

func (h ModerationHandler) Matches(ev domain.Event) bool {
	switch e := ev.(type) {
	case domain.ContentPosted:
		return e.ChatType == domain.ChatGroup
	case domain.CommandInvoked:
		return e.ChatType == domain.ChatGroup
	}
	return false
}

func (h ModerationHandler) Handle(ctx context.Context, ev domain.Event) error {
	switch e := ev.(type) {
	case domain.ContentPosted:
		return h.Svc.HandleContent(ctx, e.ChatID, e.AuthorID, e.MessageRef, e.Kind)
	case domain.CommandInvoked:
		return h.Svc.HandleContent(ctx, e.ChatID, e.InvokerID, e.MessageRef, domain.ContentText)
	}
	return nil
}
