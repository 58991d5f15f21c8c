package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"guildbot/internal/casino"
	"guildbot/internal/commands"
	"guildbot/internal/database"
	"guildbot/internal/discord"
	"guildbot/internal/events"
	"guildbot/internal/leveling"
	"guildbot/internal/scheduler"
	"guildbot/internal/status"
)

func main() {
	// 1. Load Configuration
	cfg, err := discord.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// 2. Initialize Bot
	bot, err := discord.New(cfg)
	if err != nil {
		log.Fatalf("Error initializing bot: %v", err)
	}

	// 3. Initialize Database
	db, err := database.New(cfg.Database, database.GameConfig{
		Enabled:   true,
		MinBet:    cfg.DefaultMinBet,
		MaxBet:    cfg.DefaultMaxBet,
		Cooldown:  cfg.DefaultCooldown,
		HouseEdge: cfg.DefaultHouseEdge,
	})
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer db.Close()

	// 4. Initialize Casino
	svc := casino.NewService(db, casino.Options{Timeout: cfg.GameTimeout})
	svc.OnExpired(commands.GameExpiredHandler(bot.Session))
	log.Printf("Casino ready. Games expire after %s of inactivity.", cfg.GameTimeout)

	commands.DB = db
	commands.Casino = svc
	commands.TicketCategoryID = cfg.TicketCategoryID

	app, err := bot.Session.Application("@me")
	if err != nil {
		log.Printf("Warning: Could not fetch application info: %v", err)
	} else if app.Owner != nil {
		commands.OwnerID = app.Owner.ID
		log.Printf("Bot Owner ID set to: %s", commands.OwnerID)
	} else if app.Team != nil {
		commands.OwnerID = app.Team.OwnerID
		log.Printf("Bot is owned by a team. Owner ID set to team owner: %s", commands.OwnerID)
	}

	// 5. Register Event Handlers
	bot.Session.AddHandler(commands.HandleInteraction)

	tracker := leveling.NewTracker(db, nil)
	bot.Session.AddHandler(tracker.OnMessageCreate)

	if cfg.LogChannelID != "" {
		logger := events.NewLogger(bot.Session, cfg)
		bot.Session.AddHandler(logger.OnGuildMemberAdd)
		bot.Session.AddHandler(logger.OnGuildMemberRemove)
		commands.AuditLog = logger
	}

	// 6. Background jobs
	cron, err := scheduler.Start(&scheduler.Jobs{DB: db, Sessions: svc, Retention: cfg.LedgerRetention})
	if err != nil {
		log.Fatalf("Error starting scheduler: %v", err)
	}
	defer cron.Stop()

	if cfg.StatusAddr != "" {
		srv := status.NewServer(cfg.StatusAddr, db, svc)
		srv.Start()
		defer srv.Stop()
	}

	// 7. Start Bot
	err = bot.Start()
	if err != nil {
		log.Fatalf("Error starting bot: %v", err)
	}
	defer bot.Stop()

	// 8. Register Commands
	if err := commands.RegisterCommands(bot.Session, cfg.GuildID); err != nil {
		log.Fatalf("Error registering commands: %v", err)
	}

	// 9. Wait for Shutdown Signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	log.Println("Bot is running. Press Ctrl+C to exit.")
	<-stop

	log.Println("Gracefully shutting down...")
	if keys := svc.ActiveKeys(); len(keys) > 0 {
		log.Printf("Abandoning %d game(s) in progress; their bets were never collected.", len(keys))
		for _, k := range keys {
			log.Printf("  abandoned: %s", k)
		}
	}
}
