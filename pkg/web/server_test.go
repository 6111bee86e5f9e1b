package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/recemotion/internal/log"
	"github.com/teslashibe/recemotion/pkg/facs"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard, slog.LevelError, false)
	os.Exit(m.Run())
}

func TestNewServer(t *testing.T) {
	s := NewServer("test", false)

	state := s.State()
	if state.StressLevel != 1 {
		t.Errorf("StressLevel = %d, want 1", state.StressLevel)
	}
	if len(s.Logs()) != 0 {
		t.Error("logs should start empty")
	}
}

func TestUpdateState(t *testing.T) {
	s := NewServer("test", false)

	s.UpdateState(func(st *Status) {
		st.CurrentEmotion = facs.EmotionSad
		st.Calibrated = true
	})

	state := s.State()
	if state.CurrentEmotion != facs.EmotionSad || !state.Calibrated {
		t.Errorf("unexpected state: %+v", state)
	}
	if state.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestAddLog_Ring(t *testing.T) {
	s := NewServer("test", false)

	for i := 0; i < maxLogs+10; i++ {
		s.AddLog("info", fmt.Sprintf("entry %d", i))
	}

	logs := s.Logs()
	if len(logs) != maxLogs {
		t.Fatalf("len(logs) = %d, want %d", len(logs), maxLogs)
	}
	if logs[0].Message != "entry 10" {
		t.Errorf("oldest = %q, want entry 10", logs[0].Message)
	}
	if logs[len(logs)-1].Message != fmt.Sprintf("entry %d", maxLogs+9) {
		t.Errorf("newest = %q", logs[len(logs)-1].Message)
	}
}

func TestHTTPRoutes(t *testing.T) {
	s := NewServer("test", false)
	s.AddLog("session", "session started")
	s.UpdateState(func(st *Status) { st.StressLevel = 3 })

	tests := []struct {
		path     string
		contains string
	}{
		{"/", "<title>recemotion</title>"},
		{"/api/status", `"stress_level":3`},
		{"/api/logs", "session started"},
	}

	for _, tt := range tests {
		resp, err := s.App().Test(httptest.NewRequest("GET", tt.path, nil))
		if err != nil {
			t.Fatalf("%s: request error: %v", tt.path, err)
		}
		if resp.StatusCode != 200 {
			t.Errorf("%s: status = %d, want 200", tt.path, resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(body), tt.contains) {
			t.Errorf("%s: body missing %q", tt.path, tt.contains)
		}
	}
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	s := NewServer("test", false)

	resp, _ := s.App().Test(httptest.NewRequest("GET", "/ws/status", nil))
	if resp.StatusCode != 426 {
		t.Errorf("status = %d, want 426", resp.StatusCode)
	}
}

func TestStatusWebSocket(t *testing.T) {
	s := NewServer("test", false)
	go s.Listen(":18200")
	defer s.Shutdown(context.Background())
	time.Sleep(100 * time.Millisecond)

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18200/ws/status", nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer ws.Close()

	read := func() Status {
		t.Helper()
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("Read error: %v", err)
		}
		var st Status
		if err := json.Unmarshal(data, &st); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return st
	}

	if st := read(); st.CurrentEmotion != "" {
		t.Errorf("initial emotion = %q, want empty", st.CurrentEmotion)
	}

	// Wait for the client to join the hub before broadcasting
	deadline := time.Now().Add(2 * time.Second)
	for s.statusHub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	s.UpdateState(func(st *Status) { st.CurrentEmotion = facs.EmotionHappy })
	if st := read(); st.CurrentEmotion != facs.EmotionHappy {
		t.Errorf("emotion = %q, want Happy", st.CurrentEmotion)
	}
}
