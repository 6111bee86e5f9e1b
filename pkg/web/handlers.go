package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/recemotion/pkg/hub"
)

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(indexHTML)
}

// handleStatus returns the current status
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.State())
}

// handleGetLogs returns recent log entries
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	return c.JSON(s.Logs())
}

// handleStatusWS sends the current status, then streams updates.
// The initial write happens before the client joins the hub, so the
// write pump stays the connection's only concurrent writer.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	if err := c.WriteJSON(s.State()); err != nil {
		return
	}
	hub.NewClient(s.statusHub, c).Run()
}

// handleLogsWS replays the log ring, then streams new entries
func (s *Server) handleLogsWS(c *websocket.Conn) {
	for _, entry := range s.Logs() {
		if err := c.WriteJSON(entry); err != nil {
			return
		}
	}
	hub.NewClient(s.logHub, c).Run()
}
