// recemotiond: facial landmark emotion inference service.
// Accepts landmark frames from capture devices over WebSocket or REST and
// serves analysis reports and a live dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teslashibe/recemotion/internal/config"
	"github.com/teslashibe/recemotion/internal/log"
	"github.com/teslashibe/recemotion/pkg/debug"
	"github.com/teslashibe/recemotion/pkg/gateway"
	"github.com/teslashibe/recemotion/pkg/journal"
	"github.com/teslashibe/recemotion/pkg/protocol"
	"github.com/teslashibe/recemotion/pkg/session"
	"github.com/teslashibe/recemotion/pkg/web"
)

var version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Flags override environment
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.JournalPath, "journal", cfg.JournalPath, "Journal file path")
	flag.BoolVar(&cfg.JournalDisabled, "no-journal", cfg.JournalDisabled, "Do not persist analysis reports")
	debugFrames := flag.Bool("debug-frames", false, "Log every frame (very verbose)")
	flag.Parse()

	level := cfg.LogLevel
	if cfg.Debug || *debugFrames {
		level = "debug"
	}
	log.Init(level)
	debug.Enabled = cfg.Debug
	debug.Frames = *debugFrames

	mgr := session.New(cfg.Session())

	var store journal.Store
	if !cfg.JournalDisabled {
		js, err := journal.NewJSONStore(cfg.JournalPath)
		if err != nil {
			log.Error("failed to open journal", "path", cfg.JournalPath, "error", err)
			os.Exit(1)
		}
		log.Info("journal opened", "path", js.Path(), "entries", js.Count())
		store = js
	}

	dash := web.NewServer("recemotiond", cfg.Debug)
	app := dash.App()

	gw := gateway.New(mgr, store, cfg.Debug)
	gw.RegisterRoutes(app)
	gw.RegisterAPIRoutes(app.Group("/api"))

	wireDashboard(dash, gw)

	// Health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ok",
			"version":    version,
			"devices":    gw.DeviceCount(),
			"calibrated": mgr.IsCalibrated(),
		})
	})

	// Metrics endpoint
	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendString(metricsText(gw.GetStats(), mgr.Snapshot()))
	})

	go func() {
		addr := cfg.Addr()
		log.Info("starting recemotiond",
			"version", version,
			"addr", addr,
			"device_ws", fmt.Sprintf("ws://localhost:%d/ws/device", cfg.Port),
			"dashboard", fmt.Sprintf("http://localhost:%d/", cfg.Port),
		)

		if err := dash.Listen(addr); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := dash.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

// wireDashboard pushes session changes to the dashboard feeds.
func wireDashboard(dash *web.Server, gw *gateway.Gateway) {
	refresh := func(outcome string) {
		view := gateway.NewSessionView(gw.Session().Snapshot(), gw.Session().Now())
		stats := gw.GetStats()
		dash.UpdateState(func(s *web.Status) {
			s.DevicesConnected = stats.DeviceCount
			s.Calibrated = view.Calibrated
			s.CalibrationSamples = view.CalibrationSamples
			s.CurrentEmotion = view.Emotion
			s.DominantEmotion = view.Dominant
			s.StressLevel = view.Stress
			s.EnergyLevel = view.Energy
			s.HistoryLen = view.HistoryLen
			s.FramesProcessed = stats.FramesReceived
			if outcome != "" {
				s.LastOutcome = outcome
			}
		})
	}

	// Consecutive rejections are logged once
	var lastRejected atomic.Bool
	gw.OnResult(func(deviceID string, res session.FrameResult) {
		rejected := res.Outcome == session.OutcomeRejected
		wasRejected := lastRejected.Swap(rejected)
		switch {
		case res.Outcome == session.OutcomeCalibrated:
			dash.AddLog("session", fmt.Sprintf("calibrated after %d samples", res.Samples))
			// Every device learns the baseline is ready, not only the sender
			if msg, err := protocol.NewEmotionMessage(gateway.EmotionData(0, res)); err == nil {
				gw.Broadcast(msg)
			}
		case res.Outcome == session.OutcomeClassified:
			debug.Log("frame classified", "device", deviceID, "emotion", res.Emotion)
		case rejected && !wasRejected:
			dash.AddLog("error", "frame rejected: "+res.Err.Error())
		}
		if res.Outcome == session.OutcomeClassified && dash.State().CurrentEmotion != res.Emotion {
			dash.AddLog("emotion", string(res.Emotion))
		}
		refresh(res.Outcome.String())
	})

	gw.OnChange(func() {
		dash.AddLog("session", "session or stress updated")
		refresh("")
	})
}

// metricsText renders gateway and session counters in Prometheus text format.
func metricsText(stats gateway.Stats, snap session.Snapshot) string {
	calibrated := 0
	if snap.Calibrated {
		calibrated = 1
	}
	return fmt.Sprintf(`# HELP recemotion_devices Connected device count
# TYPE recemotion_devices gauge
recemotion_devices %d

# HELP recemotion_messages_received Total messages received
# TYPE recemotion_messages_received counter
recemotion_messages_received %d

# HELP recemotion_messages_sent Total messages sent
# TYPE recemotion_messages_sent counter
recemotion_messages_sent %d

# HELP recemotion_frames_received Total landmark frames received
# TYPE recemotion_frames_received counter
recemotion_frames_received %d

# HELP recemotion_frames_rejected Landmark frames rejected by validation
# TYPE recemotion_frames_rejected counter
recemotion_frames_rejected %d

# HELP recemotion_reports_built Analysis reports built
# TYPE recemotion_reports_built counter
recemotion_reports_built %d

# HELP recemotion_calibrated Whether the baseline is finalized
# TYPE recemotion_calibrated gauge
recemotion_calibrated %d

# HELP recemotion_history_len Classified frames in the emotion history
# TYPE recemotion_history_len gauge
recemotion_history_len %d
`, stats.DeviceCount, stats.MessagesReceived, stats.MessagesSent, stats.FramesReceived,
		stats.FramesRejected, stats.ReportsBuilt, calibrated, len(snap.History))
}
