// Package web serves the live dashboard: a status snapshot, an event log and
// websocket feeds for both.
package web

import (
	"context"
	_ "embed"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/recemotion/internal/log"
	"github.com/teslashibe/recemotion/pkg/facs"
	"github.com/teslashibe/recemotion/pkg/hub"
)

//go:embed index.html
var indexHTML []byte

// maxLogs is the size of the event log ring.
const maxLogs = 500

// Status is the dashboard view of the service
type Status struct {
	DevicesConnected   int          `json:"devices_connected"`
	Calibrated         bool         `json:"is_calibrated"`
	CalibrationSamples int          `json:"calibration_samples"`
	CurrentEmotion     facs.Emotion `json:"current_emotion"`
	DominantEmotion    facs.Emotion `json:"dominant_emotion"`
	StressLevel        int          `json:"stress_level"`
	EnergyLevel        int          `json:"energy_level"`
	HistoryLen         int          `json:"history_len"`
	LastOutcome        string       `json:"last_outcome,omitempty"`
	FramesProcessed    uint64       `json:"frames_processed"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// LogEntry represents a log line for the dashboard
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // info, session, emotion, error
	Message string `json:"message"`
}

// Server is the web dashboard server
type Server struct {
	app *fiber.App

	// State
	state   Status
	stateMu sync.RWMutex

	// Log ring
	logs   []LogEntry
	logsMu sync.RWMutex

	// Hubs for websocket broadcast
	statusHub *hub.Hub
	logHub    *hub.Hub
}

// NewServer creates the dashboard and the Fiber app it is mounted on.
// Other packages register their routes on App.
func NewServer(appName string, debug bool) *Server {
	s := &Server{
		logs:      make([]LogEntry, 0, maxLogs),
		statusHub: hub.New("status"),
		logHub:    hub.New("logs"),
	}
	s.state.StressLevel = 1

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if debug {
		app.Use(logger.New())
	}

	app.Get("/", s.handleIndex)

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/logs", s.handleGetLogs)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/logs", websocket.New(s.handleLogsWS))

	s.app = app
	return s
}

// App returns the underlying Fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the broadcast hubs and serves on addr until shutdown.
func (s *Server) Listen(addr string) error {
	go s.statusHub.Run()
	go s.logHub.Run()

	log.Info("dashboard listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the hubs and gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.statusHub.Stop()
	s.logHub.Stop()
	return s.app.ShutdownWithContext(ctx)
}

// UpdateState updates the status and broadcasts it to clients
func (s *Server) UpdateState(update func(*Status)) {
	s.stateMu.Lock()
	update(&s.state)
	s.state.UpdatedAt = time.Now()
	state := s.state
	s.stateMu.Unlock()

	if err := s.statusHub.BroadcastJSON(state); err != nil {
		log.Warn("status broadcast failed", "error", err)
	}
}

// State returns a copy of the current status
func (s *Server) State() Status {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// AddLog adds a log entry and broadcasts to clients
func (s *Server) AddLog(logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()

	if err := s.logHub.BroadcastJSON(entry); err != nil {
		log.Warn("log broadcast failed", "error", err)
	}
}

// Logs returns a copy of the retained log entries, oldest first
func (s *Server) Logs() []LogEntry {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	out := make([]LogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}
