package api

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"diskwarden/internal/bus"
	"diskwarden/internal/device"
	"diskwarden/internal/platform"
	"diskwarden/internal/scan"
	"diskwarden/internal/usage"
)

// Server represents the API server
type Server struct {
	app         *fiber.App
	gateway     device.Gateway
	supervisor  *scan.Supervisor
	bus         *bus.Bus
	usageReader usage.Reader
	startedAt   time.Time
}

// NewServer creates a new API server
func NewServer() (*Server, error) {
	// Validate platform support
	if err := platform.ValidateSupport(); err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     30 * time.Second,
		IdleTimeout:      120 * time.Second,
		DisableKeepalive: false,
		ServerHeader:     "diskwarden",
		AppName:          "diskwarden v1.0",
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "*",
		ExposeHeaders: "Content-Length,Content-Type,Access-Control-Allow-Origin",
		MaxAge:        86400, // 24 hours
	}))

	// Handle preflight requests explicitly
	app.Use(func(c *fiber.Ctx) error {
		if c.Method() == "OPTIONS" {
			return c.SendStatus(204)
		}
		return c.Next()
	})

	gateway := device.NewGateway()
	eventBus := bus.New()

	server := &Server{
		app:         app,
		gateway:     gateway,
		supervisor:  scan.NewSupervisor(gateway, eventBus),
		bus:         eventBus,
		usageReader: usage.NewReader(),
		startedAt:   time.Now(),
	}

	server.setupRoutes()
	return server, nil
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.app.Group("/api")

	// Device enumeration and telemetry
	api.Get("/drives", s.getDrives)
	api.Get("/smart/:device", s.getSmart)
	api.Get("/disk", s.getDiskUsage)

	// Surface scan lifecycle
	api.Post("/scan/:device", s.startScan)
	api.Post("/scan/:device/cancel", s.cancelScan)
	api.Get("/scan/:device", s.getScanStatus)

	// Maintenance operations
	api.Post("/erase/:device", s.secureErase)
	api.Get("/benchmark/:device", s.benchmark)

	// Health check
	api.Get("/health", s.healthCheck)

	// WebSocket event channel
	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws", websocket.New(s.handleWebSocket))
}

// Start starts the API server
func (s *Server) Start(address string) error {
	return s.app.Listen(address)
}

// Shutdown gracefully shuts down the server, cancelling live scans and
// releasing subscribers.
func (s *Server) Shutdown() error {
	s.supervisor.Shutdown()
	s.bus.Close()
	return s.app.Shutdown()
}

// Health check endpoint
func (s *Server) healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "ok",
		"platform":       platform.GetOS(),
		"scan_supported": platform.CanScan(),
		"active_scans":   s.supervisor.Active(),
		"subscribers":    s.bus.Count(),
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		"timestamp":      time.Now().Unix(),
	})
}
