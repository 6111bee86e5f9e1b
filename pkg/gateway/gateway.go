// Package gateway exposes a session over WebSocket and REST.
//
// Capture devices connect to /ws/device/:id and stream landmark frames. Every
// frame is answered with an emotion message describing what it did. The same
// operations are available as JSON endpoints under /api.
package gateway

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/teslashibe/recemotion/internal/log"
	"github.com/teslashibe/recemotion/pkg/journal"
	"github.com/teslashibe/recemotion/pkg/protocol"
	"github.com/teslashibe/recemotion/pkg/session"
)

// DeviceConnection represents a connected capture device
type DeviceConnection struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time
	LastSeen  time.Time

	mu sync.Mutex
}

// Send sends a message to the device
func (d *DeviceConnection) Send(msg *protocol.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	return d.Conn.WriteMessage(websocket.TextMessage, data)
}

func (d *DeviceConnection) touch() {
	d.mu.Lock()
	d.LastSeen = time.Now()
	d.mu.Unlock()
}

// Gateway routes device traffic to a session manager
type Gateway struct {
	mu      sync.RWMutex
	devices map[string]*DeviceConnection
	debug   bool

	session *session.Manager
	journal journal.Store // optional

	// Callbacks
	onResult func(deviceID string, res session.FrameResult)
	onChange func()

	// Stats
	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	framesReceived   atomic.Uint64
	framesRejected   atomic.Uint64
	reportsBuilt     atomic.Uint64
}

// New creates a gateway for the given session. store may be nil, in which case
// analysis requests are never saved.
func New(mgr *session.Manager, store journal.Store, debug bool) *Gateway {
	return &Gateway{
		devices: make(map[string]*DeviceConnection),
		debug:   debug,
		session: mgr,
		journal: store,
	}
}

// Session returns the session manager the gateway drives.
func (g *Gateway) Session() *session.Manager {
	return g.session
}

// OnResult sets the callback invoked after every processed frame.
// deviceID is empty for frames posted over REST.
func (g *Gateway) OnResult(callback func(deviceID string, res session.FrameResult)) {
	g.mu.Lock()
	g.onResult = callback
	g.mu.Unlock()
}

// OnChange sets the callback invoked after a session reset or stress update.
func (g *Gateway) OnChange(callback func()) {
	g.mu.Lock()
	g.onChange = callback
	g.mu.Unlock()
}

// RegisterRoutes registers WebSocket routes on a Fiber app
func (g *Gateway) RegisterRoutes(app *fiber.App) {
	// WebSocket upgrade middleware
	app.Use("/ws/device", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// Device connection endpoint
	app.Get("/ws/device", websocket.New(g.handleDevice))
	app.Get("/ws/device/:id", websocket.New(g.handleDevice))
}

// handleDevice handles a device WebSocket connection
func (g *Gateway) handleDevice(c *websocket.Conn) {
	deviceID := c.Params("id")
	if deviceID == "" {
		deviceID = generateDeviceID()
	}

	device := &DeviceConnection{
		ID:        deviceID,
		Conn:      c,
		Connected: time.Now(),
		LastSeen:  time.Now(),
	}

	g.mu.Lock()
	g.devices[deviceID] = device
	deviceCount := len(g.devices)
	g.mu.Unlock()

	log.Info("device connected", "device", deviceID, "total", deviceCount)

	defer func() {
		g.mu.Lock()
		// A reconnect under the same ID may already have replaced this entry.
		if g.devices[deviceID] == device {
			delete(g.devices, deviceID)
		}
		deviceCount := len(g.devices)
		g.mu.Unlock()

		log.Info("device disconnected", "device", deviceID, "total", deviceCount)
	}()

	// Read loop
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if g.debug {
				log.Debug("device read error", "device", deviceID, "error", err)
			}
			return
		}

		device.touch()
		g.messagesReceived.Add(1)
		g.handleMessage(device, data)
	}
}

// handleMessage processes an incoming message from a device
func (g *Gateway) handleMessage(device *DeviceConnection, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		if g.debug {
			log.Debug("parse error", "device", device.ID, "error", err)
		}
		return
	}

	switch msg.Type {
	case protocol.TypeLandmarks:
		lm, err := msg.GetLandmarksData()
		if err != nil {
			g.dropped(device.ID, msg.Type, err)
			return
		}
		res := g.processFrame(device.ID, lm.Coords)
		reply, err := protocol.NewEmotionMessage(EmotionData(lm.FrameID, res))
		g.reply(device, reply, err)

	case protocol.TypeSession:
		sd, err := msg.GetSessionData()
		if err != nil {
			g.dropped(device.ID, msg.Type, err)
			return
		}
		g.initSession(sd.WakeTime)

	case protocol.TypeStress:
		st, err := msg.GetStressData()
		if err != nil {
			g.dropped(device.ID, msg.Type, err)
			return
		}
		g.updateStress(st.Level)

	case protocol.TypeAnalyze:
		req, err := msg.GetAnalyzeData()
		if err != nil {
			g.dropped(device.ID, msg.Type, err)
			return
		}
		var reply *protocol.Message
		report, entryID, err := g.analyze(req.Text, req.Save)
		if err != nil {
			log.Warn("analysis failed", "device", device.ID, "error", err)
			reply, err = protocol.NewErrorMessage(msg.Type, err.Error())
		} else {
			reply, err = protocol.NewAnalysisMessage(report, entryID)
		}
		g.reply(device, reply, err)

	case protocol.TypePing:
		if err := g.SendPong(device.ID, msg.Timestamp); err != nil && g.debug {
			log.Debug("pong failed", "device", device.ID, "error", err)
		}

	default:
		if g.debug {
			log.Debug("unhandled message type", "device", device.ID, "type", msg.Type)
		}
	}
}

func (g *Gateway) dropped(deviceID string, t protocol.MessageType, err error) {
	if g.debug {
		log.Debug("malformed payload dropped", "device", deviceID, "type", t, "error", err)
	}
}

// reply sends a freshly built message back to a device.
func (g *Gateway) reply(device *DeviceConnection, msg *protocol.Message, err error) {
	if err != nil {
		log.Warn("failed to build reply", "device", device.ID, "error", err)
		return
	}
	g.messagesSent.Add(1)
	if err := device.Send(msg); err != nil && g.debug {
		log.Debug("send error", "device", device.ID, "error", err)
	}
}

// processFrame feeds packed coordinates to the session and fires OnResult.
func (g *Gateway) processFrame(deviceID string, coords []float64) session.FrameResult {
	g.framesReceived.Add(1)
	res := g.session.PushFlat(coords)
	if !res.Accepted() {
		g.framesRejected.Add(1)
	}

	g.mu.RLock()
	cb := g.onResult
	g.mu.RUnlock()
	if cb != nil {
		cb(deviceID, res)
	}
	return res
}

func (g *Gateway) initSession(wakeUnix int64) {
	g.session.InitSession(time.Unix(wakeUnix, 0))
	g.changed()
}

func (g *Gateway) updateStress(level int) int {
	stored := g.session.UpdateStress(level)
	g.changed()
	return stored
}

func (g *Gateway) changed() {
	g.mu.RLock()
	cb := g.onChange
	g.mu.RUnlock()
	if cb != nil {
		cb()
	}
}

// analyze builds a report and optionally stores it. The entry ID is empty
// when the report was not saved.
func (g *Gateway) analyze(text string, save bool) (json.RawMessage, string, error) {
	report := g.session.Report(text)
	g.reportsBuilt.Add(1)

	var entryID string
	if save && g.journal != nil {
		entry := journal.NewEntry(text, report)
		if err := g.journal.Save(entry); err != nil {
			return nil, "", fmt.Errorf("failed to save journal entry: %w", err)
		}
		entryID = entry.ID
	}

	data, err := json.Marshal(report)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, entryID, nil
}

// SendPong sends a pong response to a device
func (g *Gateway) SendPong(deviceID string, pingTS int64) error {
	msg, err := protocol.NewPongMessage("", pingTS, time.Now().UnixMilli())
	if err != nil {
		return err
	}
	return g.sendToDevice(deviceID, msg)
}

// sendToDevice sends a message to a specific device
func (g *Gateway) sendToDevice(deviceID string, msg *protocol.Message) error {
	g.mu.RLock()
	device, ok := g.devices[deviceID]
	g.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrDeviceNotConnected, deviceID)
	}

	g.messagesSent.Add(1)
	return device.Send(msg)
}

// Broadcast sends a message to all connected devices
func (g *Gateway) Broadcast(msg *protocol.Message) {
	for _, device := range g.GetDevices() {
		g.messagesSent.Add(1)
		if err := device.Send(msg); err != nil && g.debug {
			log.Debug("broadcast error", "device", device.ID, "error", err)
		}
	}
}

// GetDevice returns a device connection by ID
func (g *Gateway) GetDevice(deviceID string) *DeviceConnection {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.devices[deviceID]
}

// GetDevices returns all connected devices
func (g *Gateway) GetDevices() []*DeviceConnection {
	g.mu.RLock()
	defer g.mu.RUnlock()

	devices := make([]*DeviceConnection, 0, len(g.devices))
	for _, d := range g.devices {
		devices = append(devices, d)
	}
	return devices
}

// DeviceCount returns the number of connected devices
func (g *Gateway) DeviceCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.devices)
}

// Stats contains gateway statistics
type Stats struct {
	DeviceCount      int    `json:"device_count"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	FramesReceived   uint64 `json:"frames_received"`
	FramesRejected   uint64 `json:"frames_rejected"`
	ReportsBuilt     uint64 `json:"reports_built"`
}

// GetStats returns gateway statistics
func (g *Gateway) GetStats() Stats {
	return Stats{
		DeviceCount:      g.DeviceCount(),
		MessagesReceived: g.messagesReceived.Load(),
		MessagesSent:     g.messagesSent.Load(),
		FramesReceived:   g.framesReceived.Load(),
		FramesRejected:   g.framesRejected.Load(),
		ReportsBuilt:     g.reportsBuilt.Load(),
	}
}

// DeviceInfo contains info about a connected device
type DeviceInfo struct {
	ID        string    `json:"id"`
	Connected time.Time `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
}

// GetDeviceInfos returns info about all connected devices
func (g *Gateway) GetDeviceInfos() []DeviceInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()

	infos := make([]DeviceInfo, 0, len(g.devices))
	for _, d := range g.devices {
		infos = append(infos, d.Info())
	}
	return infos
}

// Info returns a snapshot of the connection's metadata
func (d *DeviceConnection) Info() DeviceInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DeviceInfo{
		ID:        d.ID,
		Connected: d.Connected,
		LastSeen:  d.LastSeen,
	}
}

// generateDeviceID generates a unique device ID
func generateDeviceID() string {
	return "device-" + uuid.New().String()[:8]
}
