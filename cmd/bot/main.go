package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	discordrouter "github.com/jose-valero/community-gate-bot/internal/adapters/discord"
	"github.com/jose-valero/community-gate-bot/internal/app/service"
	"github.com/jose-valero/community-gate-bot/internal/infra/config"
	"github.com/jose-valero/community-gate-bot/internal/infra/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	_ = godotenv.Load()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	// DB
	db, err := storage.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		log.Fatal("migrate:", err)
	}
	log.Println("✅ DB lista y migrada")

	// Repos
	acceptRepo := storage.NewAcceptanceRepo(db)
	policyRepo := storage.NewPolicyRepo(db)
	promptRepo := storage.NewPromptRepo(db)

	// Discord session
	auth := cfg.DiscordToken
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(auth)), "bot ") {
		auth = "Bot " + strings.TrimSpace(auth)
	}
	s, err := discordgo.New(auth)
	if err != nil {
		log.Fatal(err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
	if err := s.Open(); err != nil {
		log.Fatal(err)
	}
	defer s.Close()
	log.Printf("✅ Conectado como %s (%s)", s.State.User.Username, s.State.User.ID)

	gw := discordrouter.NewGateway(s)

	// Services
	joinSvc := service.NewJoinService(gw, promptRepo, cfg.TermsVersion, cfg.TermsContent)
	acceptSvc := service.NewAcceptService(gw, acceptRepo, cfg.TermsVersion, cfg.TermsContent)
	modSvc := service.NewModerationService(gw, policyRepo)
	adminSvc := service.NewAdminService(gw, policyRepo, acceptRepo, cfg.OwnerID)

	// El orden de esta lista ES el contrato: comandos y accepts se atienden
	// antes de que el filtro catch-all vea el evento.
	disp := service.NewDispatcher(
		service.JoinHandler{Svc: joinSvc},
		service.AcceptHandler{Svc: acceptSvc},
		service.CommandHandler{Svc: adminSvc, Gw: gw},
		service.ModerationHandler{Svc: modSvc},
	)

	r := discordrouter.NewRouter(s, cfg.DiscordGuild, cfg.GateChannelID, gw, disp)
	r.Handlers()
	log.Printf("✅ escuchando eventos en guild %s", cfg.DiscordGuild)

	// Esperar señal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop
}
