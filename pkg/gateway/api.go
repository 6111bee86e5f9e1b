package gateway

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teslashibe/recemotion/pkg/facs"
	"github.com/teslashibe/recemotion/pkg/journal"
	"github.com/teslashibe/recemotion/pkg/protocol"
	"github.com/teslashibe/recemotion/pkg/session"
)

// SessionView is the JSON form of a session snapshot.
type SessionView struct {
	WakeTime           int64                              `json:"wake_time,omitempty"`
	Stress             int                                `json:"stress_level"`
	Energy             int                                `json:"energy_level"`
	Emotion            facs.Emotion                       `json:"current_emotion"`
	Dominant           facs.Emotion                       `json:"dominant_emotion"`
	HistoryLen         int                                `json:"history_len"`
	Counts             map[facs.Emotion]int               `json:"counts"`
	Calibrated         bool                               `json:"is_calibrated"`
	CalibrationSamples int                                `json:"calibration_samples"`
	Baseline           map[facs.Feature]facs.FeatureStats `json:"baseline,omitempty"`
}

// NewSessionView summarizes a snapshot as of now.
func NewSessionView(snap session.Snapshot, now time.Time) SessionView {
	view := SessionView{
		Stress:             snap.Stress,
		Energy:             session.DefaultEnergy,
		Emotion:            snap.Emotion,
		HistoryLen:         len(snap.History),
		Calibrated:         snap.Calibrated,
		CalibrationSamples: snap.CalibrationSamples,
		Baseline:           snap.Baseline,
	}
	if snap.HasWakeTime {
		view.WakeTime = snap.WakeTime.Unix()
		view.Energy = session.EnergyLevel(view.WakeTime, now.Unix())
	}

	h := session.NewHistory(len(snap.History))
	for _, e := range snap.History {
		h.Push(e)
	}
	view.Counts = h.Counts()
	view.Dominant = h.Dominant()
	return view
}

// RegisterAPIRoutes registers the session, journal and device endpoints
func (g *Gateway) RegisterAPIRoutes(api fiber.Router) {
	// Session state
	api.Get("/session", func(c *fiber.Ctx) error {
		return c.JSON(NewSessionView(g.session.Snapshot(), g.session.Now()))
	})

	// Start a new session
	api.Post("/session", func(c *fiber.Ctx) error {
		var req struct {
			WakeTime *int64 `json:"wake_time"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		if req.WakeTime == nil {
			return c.Status(400).JSON(fiber.Map{"error": "wake_time is required"})
		}

		g.initSession(*req.WakeTime)
		return c.JSON(fiber.Map{"status": "ok", "wake_time": *req.WakeTime})
	})

	// Self-reported stress
	api.Post("/stress", func(c *fiber.Ctx) error {
		var req struct {
			Level *int `json:"level"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		if req.Level == nil {
			return c.Status(400).JSON(fiber.Map{"error": "level is required"})
		}

		stored := g.updateStress(*req.Level)
		return c.JSON(fiber.Map{"status": "ok", "stress_level": stored})
	})

	// One landmark frame
	api.Post("/landmarks", func(c *fiber.Ctx) error {
		var req protocol.LandmarksData
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}

		res := g.processFrame("", req.Coords)
		return c.JSON(EmotionData(req.FrameID, res))
	})

	// Current report, not saved
	api.Get("/analysis", func(c *fiber.Ctx) error {
		report, _, err := g.analyze(c.Query("text"), false)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(report)
	})

	// Current report, saved to the journal
	api.Post("/analysis", func(c *fiber.Ctx) error {
		var req struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}

		report, entryID, err := g.analyze(req.Text, true)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(protocol.AnalysisData{EntryID: entryID, Report: report})
	})

	g.registerJournalRoutes(api.Group("/journal"))

	devices := api.Group("/devices")

	// List connected devices
	devices.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"devices": g.GetDeviceInfos(),
			"count":   g.DeviceCount(),
		})
	})

	// Get gateway stats
	devices.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(g.GetStats())
	})

	// Get one connected device
	devices.Get("/:id", func(c *fiber.Ctx) error {
		device := g.GetDevice(c.Params("id"))
		if device == nil {
			return c.Status(404).JSON(fiber.Map{"error": ErrDeviceNotConnected.Error()})
		}
		return c.JSON(device.Info())
	})
}

func (g *Gateway) registerJournalRoutes(r fiber.Router) {
	r.Use(func(c *fiber.Ctx) error {
		if g.journal == nil {
			return c.Status(503).JSON(fiber.Map{"error": "journal disabled"})
		}
		return c.Next()
	})

	r.Get("/", func(c *fiber.Ctx) error {
		var (
			entries []*journal.Entry
			err     error
		)
		if q := c.Query("q"); q != "" {
			entries, err = g.journal.Search(q)
		} else {
			entries, err = g.journal.List()
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{
			"entries": entries,
			"count":   len(entries),
		})
	})

	r.Get("/latest", func(c *fiber.Ctx) error {
		entry, err := g.journal.Latest()
		return journalReply(c, entry, err)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		entry, err := g.journal.Get(c.Params("id"))
		return journalReply(c, entry, err)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if err := g.journal.Delete(c.Params("id")); err != nil {
			return journalReply(c, nil, err)
		}
		return c.JSON(fiber.Map{"status": "deleted"})
	})
}

func journalReply(c *fiber.Ctx, entry *journal.Entry, err error) error {
	switch {
	case errors.Is(err, journal.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(entry)
}
