package discord

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/community-gate-bot/internal/app/service"
	"github.com/jose-valero/community-gate-bot/internal/domain"
)

// Router traduce los eventos crudos de la sesión a eventos de dominio y los
// manda al dispatcher. Cada evento se maneja en su propia goroutine con
// timeout y recover: que explote uno no afecta al resto.
type Router struct {
	s        *discordgo.Session
	guildID  string
	gateChan string
	gw       *Gateway
	disp     *service.Dispatcher

	clickLimiter *userLimiter
}

func NewRouter(s *discordgo.Session, guildID, gateChannelID string, gw *Gateway, disp *service.Dispatcher) *Router {
	return &Router{
		s:            s,
		guildID:      guildID,
		gateChan:     gateChannelID,
		gw:           gw,
		disp:         disp,
		clickLimiter: newUserLimiter(1500 * time.Millisecond),
	}
}

func (r *Router) Handlers() {
	// Miembro nuevo → el workflow de alta en el canal de entrada
	r.s.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if m.GuildID != r.guildID {
			return
		}
		name := m.User.Username
		if m.Nick != "" {
			name = m.Nick
		}
		ev := domain.MembersJoined{
			ChatID: r.gateChan,
			Members: []domain.Member{{
				ID:          m.User.ID,
				DisplayName: name,
				IsBot:       m.User.Bot,
			}},
		}
		go r.dispatch(ev)
	})

	// Mensajes → comando o contenido (los comandos desconocidos salen como
	// CommandInvoked igual y caen al filtro)
	r.s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}
		chatType := domain.ChatGroup
		if m.GuildID == "" {
			chatType = domain.ChatPrivate
		} else if m.GuildID != r.guildID {
			return
		}

		title := ""
		if ch, err := r.gw.safeGetChannel(m.ChannelID); err == nil {
			title = ch.Name
		}

		if name, ok := commandName(m.Content); ok {
			go r.dispatch(domain.CommandInvoked{
				ChatID:     m.ChannelID,
				ChatTitle:  title,
				ChatType:   chatType,
				InvokerID:  m.Author.ID,
				MessageRef: m.ID,
				Name:       name,
			})
			return
		}

		go r.dispatch(domain.ContentPosted{
			ChatID:     m.ChannelID,
			ChatType:   chatType,
			AuthorID:   m.Author.ID,
			MessageRef: m.ID,
			Kind:       contentKind(m.Message),
		})
	})

	// Click en el botón de aceptar
	r.s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic.Type != discordgo.InteractionMessageComponent {
			return
		}
		user := interactionUser(ic)
		if user == nil || ic.Message == nil {
			return
		}
		if !r.clickLimiter.Allow(user.ID) {
			_ = respondEphemeral(s, ic.Interaction, "⏳ Esperá un segundo…")
			return
		}

		stop := step("component.accept.total")
		ev := domain.ActionTriggered{
			ChatID:     ic.ChannelID,
			ActorID:    user.ID,
			ActorName:  user.Username,
			MessageRef: ic.Message.ID,
			Payload:    ic.MessageComponentData().CustomID,
			ActionID:   r.gw.RegisterAction(ic.Interaction),
		}
		go func() {
			defer stop()
			r.dispatch(ev)
		}()
	})
}

func (r *Router) dispatch(ev domain.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("panic manejando %T: %v", ev, rec)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r.disp.Dispatch(ctx, ev)
}

// commandName: "/voiceonly_on", "/start@bot" → nombre del comando.
func commandName(content string) (string, bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "/") || len(content) < 2 {
		return "", false
	}
	name := strings.Fields(content)[0][1:]
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "", false
	}
	return name, true
}

func contentKind(m *discordgo.Message) domain.ContentKind {
	if m.Flags&discordgo.MessageFlagsIsVoiceMessage != 0 {
		return domain.ContentVoice
	}
	for _, a := range m.Attachments {
		if strings.HasPrefix(a.ContentType, "audio/") {
			return domain.ContentVoice
		}
	}
	if len(m.Attachments) > 0 || len(m.Embeds) > 0 || len(m.StickerItems) > 0 {
		return domain.ContentMedia
	}
	if m.Content != "" {
		return domain.ContentText
	}
	return domain.ContentOther
}

func interactionUser(ic *discordgo.InteractionCreate) *discordgo.User {
	if ic.Member != nil && ic.Member.User != nil {
		return ic.Member.User
	}
	return ic.User
}
