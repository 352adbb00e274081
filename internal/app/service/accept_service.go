package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jose-valero/community-gate-bot/internal/domain"
	"github.com/jose-valero/community-gate-bot/internal/infra/storage"
)

type AcceptService struct {
	gw           Gateway
	acceptances  AcceptanceRepo
	termsVersion string
	termsContent string
}

func NewAcceptService(gw Gateway, acceptances AcceptanceRepo, termsVersion, termsContent string) *AcceptService {
	return &AcceptService{gw: gw, acceptances: acceptances, termsVersion: termsVersion, termsContent: termsContent}
}

// HandleAction procesa un click en el botón de aceptar.
//
// Invariantes:
//   - solo el usuario destino del prompt puede resolverlo (ownership);
//   - el insert es insert-or-ignore: N clicks => exactamente 1 registro;
//   - si falla el cambio de permisos igual registramos la aceptación
//     (progreso antes que atomicidad estricta);
//   - el estado "pendiente" no existe como fila: es la restricción de la
//     plataforma + la ausencia del registro, y sobrevive reinicios porque el
//     user_id viaja en el payload del botón.
func (s *AcceptService) HandleAction(ctx context.Context, ev domain.ActionTriggered) error {
	target, ok := strings.CutPrefix(ev.Payload, AcceptPrefix)
	if !ok || target == "" {
		// payload roto: ack silencioso, no es un error del sistema
		log.Printf("accept: payload inválido %q en chat %s", ev.Payload, ev.ChatID)
		return s.gw.AnswerAction(ctx, ev.ActionID, "")
	}

	if ev.ActorID != target {
		return s.gw.AnswerAction(ctx, ev.ActionID, "⛔ Este botón no es para vos.")
	}

	log.Printf("accept: user=%s aceptó los T&C en chat %s, levantando restricción", target, ev.ChatID)

	if err := s.gw.RestrictMember(ctx, ev.ChatID, target, domain.Unrestricted); err != nil {
		log.Printf("accept: no pude levantar la restricción de %s en %s: %v", target, ev.ChatID, err)
	}

	inserted, err := s.acceptances.Insert(ctx, storage.AcceptanceRecord{
		UserID:       target,
		ChatID:       ev.ChatID,
		Username:     ev.ActorName,
		TermsVersion: s.termsVersion,
		TermsContent: s.termsContent,
	})
	if err != nil {
		return fmt.Errorf("accept: insert user=%s chat=%s: %w", target, ev.ChatID, err)
	}
	if !inserted {
		// click duplicado o carrera: la PK ya resolvió, seguimos igual
		log.Printf("accept: user=%s ya había aceptado en chat %s", target, ev.ChatID)
	}

	if err := s.gw.DeleteMessage(ctx, ev.ChatID, ev.MessageRef); err != nil {
		log.Printf("accept: no pude borrar el prompt %s en %s: %v", ev.MessageRef, ev.ChatID, err)
	}

	if _, err := s.gw.SendMessage(ctx, ev.ChatID, fmt.Sprintf("🎉 <@%s> aceptó los T&C y ya puede participar.", target), nil); err != nil {
		log.Printf("accept: no pude mandar la confirmación en %s: %v", ev.ChatID, err)
	}

	return s.gw.AnswerAction(ctx, ev.ActionID, "✅ ¡Listo! Ya podés participar.")
}

// AcceptHandler engancha el service al dispatcher.
type AcceptHandler struct{ Svc *AcceptService }

func (h AcceptHandler) Matches(ev domain.Event) bool {
	// todo ActionTriggered pasa por acá: un payload que no sea accept:<id>
	// se ackea como no-op (el botón de aceptar es el único componente)
	_, ok := ev.(domain.ActionTriggered)
	return ok
}

func (h AcceptHandler) Handle(ctx context.Context, ev domain.Event) error {
	return h.Svc.HandleAction(ctx, ev.(domain.ActionTriggered))
}
