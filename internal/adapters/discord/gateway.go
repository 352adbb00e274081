package discord

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/community-gate-bot/internal/domain"
)

// Gateway implementa service.Gateway sobre la sesión de Discord.
// La restricción por (user, chat) es un permission overwrite de canal que
// niega enviar; aplicar domain.Unrestricted borra el overwrite. O sea que el
// estado "pendiente" vive en la plataforma, no acá.
type Gateway struct {
	s *discordgo.Session

	mu      sync.Mutex
	pending map[string]*discordgo.Interaction
	nextID  uint64
}

func NewGateway(s *discordgo.Session) *Gateway {
	return &Gateway{s: s, pending: map[string]*discordgo.Interaction{}}
}

func denyBits(p domain.PermissionSet) int64 {
	var deny int64
	if !p.CanSendMessages {
		deny |= discordgo.PermissionSendMessages | discordgo.PermissionSendMessagesInThreads
	}
	if !p.CanSendMedia {
		deny |= discordgo.PermissionAttachFiles
	}
	if !p.CanSendOther {
		deny |= discordgo.PermissionAddReactions | discordgo.PermissionUseExternalEmojis
	}
	if !p.CanAddLinkPreviews {
		deny |= discordgo.PermissionEmbedLinks
	}
	return deny
}

func (g *Gateway) RestrictMember(ctx context.Context, chatID, userID string, perms domain.PermissionSet) error {
	deny := denyBits(perms)
	if deny == 0 {
		if err := g.s.ChannelPermissionDelete(chatID, userID); err != nil {
			return fmt.Errorf("unrestrict %s en %s: %w", userID, chatID, err)
		}
		return nil
	}
	if err := g.s.ChannelPermissionSet(chatID, userID, discordgo.PermissionOverwriteTypeMember, 0, deny); err != nil {
		return fmt.Errorf("restrict %s en %s: %w", userID, chatID, err)
	}
	return nil
}

func (g *Gateway) SendMessage(ctx context.Context, chatID, text string, control *domain.Control) (string, error) {
	data := &discordgo.MessageSend{Content: text}
	if control != nil {
		data.Components = []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    control.Label,
					Style:    discordgo.SuccessButton,
					CustomID: control.Payload,
				},
			}},
		}
	}
	msg, err := g.s.ChannelMessageSendComplex(chatID, data)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (g *Gateway) SendFile(ctx context.Context, chatID, filename string, data []byte, caption string) error {
	_, err := g.s.ChannelMessageSendComplex(chatID, &discordgo.MessageSend{
		Content: caption,
		Files: []*discordgo.File{{
			Name:        filename,
			ContentType: "text/csv",
			Reader:      bytes.NewReader(data),
		}},
	})
	return err
}

func (g *Gateway) DeleteMessage(ctx context.Context, chatID, messageRef string) error {
	return g.s.ChannelMessageDelete(chatID, messageRef)
}

// GetMemberRole resuelve el rol del autor en el chat: owner del guild,
// admin (bit de Administrator o ManageMessages), o miembro común.
func (g *Gateway) GetMemberRole(ctx context.Context, chatID, userID string) (domain.Role, error) {
	ch, err := g.safeGetChannel(chatID)
	if err != nil {
		return "", err
	}
	if ch.GuildID == "" {
		return domain.RoleMember, nil
	}

	if gld, err := g.s.State.Guild(ch.GuildID); err == nil && gld != nil && gld.OwnerID == userID {
		return domain.RoleOwner, nil
	}

	perms, err := g.s.State.UserChannelPermissions(userID, chatID)
	if err != nil {
		perms, err = g.s.UserChannelPermissions(userID, chatID)
		if err != nil {
			return "", err
		}
	}
	if perms&(discordgo.PermissionAdministrator|discordgo.PermissionManageMessages) != 0 {
		return domain.RoleAdmin, nil
	}
	return domain.RoleMember, nil
}

// RegisterAction guarda la interaction en vuelo y devuelve el token opaco que
// viaja en el ActionTriggered; AnswerAction lo consume (una sola vez).
func (g *Gateway) RegisterAction(ic *discordgo.Interaction) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	id := fmt.Sprintf("act-%d", g.nextID)
	g.pending[id] = ic
	return id
}

func (g *Gateway) AnswerAction(ctx context.Context, actionID, text string) error {
	g.mu.Lock()
	ic := g.pending[actionID]
	delete(g.pending, actionID)
	g.mu.Unlock()
	if ic == nil {
		return fmt.Errorf("answer: action %s desconocida o ya respondida", actionID)
	}
	if text == "" {
		return ackSilent(g.s, ic)
	}
	return respondEphemeral(g.s, ic, text)
}

func (g *Gateway) safeGetChannel(id string) (*discordgo.Channel, error) {
	if ch, err := g.s.State.Channel(id); err == nil && ch != nil {
		return ch, nil
	}
	ch, err := g.s.Channel(id)
	if err != nil {
		return nil, err
	}
	_ = g.s.State.ChannelAdd(ch) // ChannelAdd devuelve solo error
	return ch, nil
}
