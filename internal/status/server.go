package status

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

type RoundStats interface {
	RoundStats(since time.Time) (rounds int, houseNet int, err error)
}

type SessionCounter interface {
	ActiveGames() int
}

// Server exposes health and casino statistics over HTTP.
type Server struct {
	app  *fiber.App
	addr string
}

func NewServer(addr string, db RoundStats, sessions SessionCounter) *Server {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	started := time.Now()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "uptime": time.Since(started).Round(time.Second).String()})
	})

	app.Get("/stats", func(c *fiber.Ctx) error {
		rounds, net, err := db.RoundStats(time.Now().Add(-24 * time.Hour))
		if err != nil {
			log.Printf("[STATUS ERROR] round stats: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats unavailable"})
		}
		return c.JSON(fiber.Map{
			"active_games":  sessions.ActiveGames(),
			"rounds_24h":    rounds,
			"house_net_24h": net,
		})
	})

	return &Server{app: app, addr: addr}
}

// Start listens in the background.
func (s *Server) Start() {
	go func() {
		log.Printf("Status server listening on %s", s.addr)
		if err := s.app.Listen(s.addr); err != nil {
			log.Printf("[STATUS ERROR] %v", err)
		}
	}()
}

func (s *Server) Stop() error {
	return s.app.Shutdown()
}
