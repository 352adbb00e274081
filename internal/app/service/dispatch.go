package service

import (
	"context"
	"log"

	"github.com/jose-valero/community-gate-bot/internal/domain"
)

// Handler: un handler tipado dentro de la lista ordenada del dispatcher.
type Handler interface {
	Matches(ev domain.Event) bool
	Handle(ctx context.Context, ev domain.Event) error
}

// Dispatcher recorre los handlers EN ORDEN y entrega el evento al primero que
// matchea. El orden importa: comandos y accepts van antes que el filtro de
// contenido, así un /voiceonly_off nunca termina borrado por el propio filtro.
// Un error de un handler se loguea y se contiene: nunca tumba el loop ni
// afecta a otros eventos.
type Dispatcher struct {
	handlers []Handler
}

func NewDispatcher(handlers ...Handler) *Dispatcher {
	return &Dispatcher{handlers: handlers}
}

func (d *Dispatcher) Dispatch(ctx context.Context, ev domain.Event) {
	for _, h := range d.handlers {
		if !h.Matches(ev) {
			continue
		}
		if err := h.Handle(ctx, ev); err != nil {
			log.Printf("dispatch: handler %T falló con %T: %v", h, ev, err)
		}
		return
	}
}
