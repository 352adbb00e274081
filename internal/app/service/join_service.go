package service

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/jose-valero/community-gate-bot/internal/domain"
	"github.com/jose-valero/community-gate-bot/internal/infra/storage"
)

// AcceptPrefix: el payload del botón es "accept:<user_id>". Solo va el id,
// nunca el texto de los términos (límite de tamaño del custom id).
const AcceptPrefix = "accept:"

type JoinService struct {
	gw           Gateway
	prompts      PromptRepo
	termsVersion string
	termsContent string
}

func NewJoinService(gw Gateway, prompts PromptRepo, termsVersion, termsContent string) *JoinService {
	return &JoinService{gw: gw, prompts: prompts, termsVersion: termsVersion, termsContent: termsContent}
}

// HandleJoin: por cada miembro nuevo (bots no) primero restringimos y DESPUÉS
// mandamos el prompt. El orden cierra la ventana entre entrar y ser
// prompteado. Restricción y prompt son best-effort independientes: que falle
// uno no frena al otro ni al resto del batch.
func (s *JoinService) HandleJoin(ctx context.Context, ev domain.MembersJoined) error {
	for _, m := range ev.Members {
		if m.IsBot {
			continue
		}
		log.Printf("join: user=%s (%s) entró al chat %s, restringiendo", m.ID, m.DisplayName, ev.ChatID)

		if err := s.gw.RestrictMember(ctx, ev.ChatID, m.ID, domain.Restricted); err != nil {
			log.Printf("join: no pude restringir a %s en %s: %v", m.ID, ev.ChatID, err)
		}

		ctl := &domain.Control{
			Label:   "✅ Acepto los T&C",
			Payload: AcceptPrefix + m.ID,
		}
		ref, err := s.gw.SendMessage(ctx, ev.ChatID, s.promptText(m.DisplayName), ctl)
		if err != nil {
			log.Printf("join: no pude mandar el prompt a %s en %s: %v", m.ID, ev.ChatID, err)
			continue
		}

		if err := s.prompts.Record(ctx, storage.PromptLog{ChatID: ev.ChatID, UserID: m.ID, MessageRef: ref}); err != nil {
			log.Printf("join: no pude registrar el prompt %s: %v", ref, err)
		}
	}
	return nil
}

func (s *JoinService) promptText(displayName string) string {
	if isURL(s.termsContent) {
		return fmt.Sprintf(
			"👋 ¡Bienvenido/a, %s!\nPara participar tenés que aceptar los Términos y Condiciones (v%s): %s",
			displayName, s.termsVersion, s.termsContent,
		)
	}
	return fmt.Sprintf(
		"👋 ¡Bienvenido/a, %s!\nPara participar tenés que aceptar los Términos y Condiciones (v%s):\n\n%s",
		displayName, s.termsVersion, s.termsContent,
	)
}

func isURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// JoinHandler engancha el service al dispatcher.
type JoinHandler struct{ Svc *JoinService }

func (h JoinHandler) Matches(ev domain.Event) bool {
	_, ok := ev.(domain.MembersJoined)
	return ok
}

func (h JoinHandler) Handle(ctx context.Context, ev domain.Event) error {
	return h.Svc.HandleJoin(ctx, ev.(domain.MembersJoined))
}
