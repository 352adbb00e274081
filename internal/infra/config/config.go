package config

import (
	"log"
	"os"
)

type Config struct {
	DatabaseURL  string
	DiscordToken string
	DiscordGuild string

	// Términos y condiciones (TermsContent puede ser texto plano o una URL)
	TermsVersion string
	TermsContent string

	// Identidad del owner del bot (export/show_groups, solo por privado)
	OwnerID string

	// Canal donde caen los prompts de bienvenida
	GateChannelID string
}

func Load() Config {
	get := func(k string, req bool) string {
		v := os.Getenv(k)
		if v == "" && req {
			log.Fatalf("faltante env %s", k)
		}
		return v
	}

	return Config{
		DatabaseURL:   get("DATABASE_URL", true),
		DiscordToken:  get("DISCORD_BOT_TOKEN", true),
		DiscordGuild:  get("DISCORD_GUILD_ID", true),
		TermsVersion:  get("TERMS_VERSION", true),
		TermsContent:  get("TERMS_CONTENT", true),
		OwnerID:       get("BOT_OWNER_ID", true),
		GateChannelID: get("GATE_CHANNEL_ID", true),
	}
}
