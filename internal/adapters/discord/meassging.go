package discord

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

func respondEphemeral(s *discordgo.Session, ic *discordgo.Interaction, msg string) error {
	err := s.InteractionRespond(ic, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("respondEphemeral error: %v", err)
	}
	return err
}

// ackSilent confirma la interaction sin mostrar nada (payload roto => no-op).
func ackSilent(s *discordgo.Session, ic *discordgo.Interaction) error {
	err := s.InteractionRespond(ic, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		log.Printf("ackSilent error: %v", err)
	}
	return err
}
