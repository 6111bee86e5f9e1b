package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/recemotion/internal/config"
	"github.com/teslashibe/recemotion/internal/log"
	"github.com/teslashibe/recemotion/pkg/protocol"
)

// replayTimeout bounds the wait for each reply.
const replayTimeout = 10 * time.Second

// replaySummary counts frame outcomes reported by the service.
type replaySummary struct {
	Frames   int             `json:"frames"`
	Outcomes map[string]int  `json:"outcomes"`
	Emotions map[string]int  `json:"emotions"`
	Report   json.RawMessage `json:"report,omitempty"`
	EntryID  string          `json:"entry_id,omitempty"`
}

func runReplay(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	file := fs.String("file", "-", "Landmark file (JSON lines, - for stdin)")
	device := fs.String("device", "cli", "Device ID")
	fps := fs.Float64("fps", 0, "Frames per second, 0 for as fast as replies arrive")
	wake := fs.Int64("wake", 0, "Start a new session with this wake time (unix seconds)")
	stress := fs.Int("stress", 0, "Report this stress level before streaming")
	text := fs.String("text", "", "Request an analysis with this text when done")
	save := fs.Bool("save", false, "Save the final analysis to the journal")
	if err := fs.Parse(args); err != nil {
		return err
	}
	interval, err := frameInterval(*fps)
	if err != nil {
		return err
	}

	frames, err := readFramesFile(*file)
	if err != nil {
		return err
	}

	wsURL := config.WebSocketURL(serverURL()) + "/ws/device/" + *device
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()
	log.Info("connected", "url", wsURL, "frames", len(frames))

	c := &replayConn{conn: conn}

	if flagSet(fs, "wake") {
		msg, err := protocol.NewSessionMessage(*wake)
		if err := c.send(msg, err); err != nil {
			return err
		}
	}
	if flagSet(fs, "stress") {
		msg, err := protocol.NewStressMessage(*stress)
		if err := c.send(msg, err); err != nil {
			return err
		}
	}

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	summary := replaySummary{
		Outcomes: make(map[string]int),
		Emotions: make(map[string]int),
	}
	for i, coords := range frames {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := protocol.NewLandmarksMessage(coords, uint64(i))
		if err := c.send(msg, err); err != nil {
			return err
		}
		reply, err := c.await(protocol.TypeEmotion)
		if err != nil {
			return err
		}
		data, err := reply.GetEmotionData()
		if err != nil {
			return err
		}

		summary.Frames++
		summary.Outcomes[data.Outcome]++
		if data.Emotion != "" {
			summary.Emotions[data.Emotion]++
		}
		if data.Outcome == "calibrated" {
			log.Info("calibrated", "samples", data.Samples)
		}
	}

	if *text != "" || *save {
		msg, err := protocol.NewAnalyzeMessage(*text, *save)
		if err := c.send(msg, err); err != nil {
			return err
		}
		reply, err := c.await(protocol.TypeAnalysis)
		if err != nil {
			return err
		}
		data, err := reply.GetAnalysisData()
		if err != nil {
			return err
		}
		summary.Report = data.Report
		summary.EntryID = data.EntryID
	}

	return printJSON(out, summary)
}

// frameInterval converts a frame rate into a ticker period. Zero means
// unpaced.
func frameInterval(fps float64) (time.Duration, error) {
	if fps == 0 {
		return 0, nil
	}
	if !(fps > 0) {
		return 0, fmt.Errorf("-fps must be positive, got %v", fps)
	}
	ns := float64(time.Second) / fps
	switch {
	case ns < 1:
		return 0, fmt.Errorf("-fps %v is above one frame per nanosecond", fps)
	case ns >= math.MaxInt64:
		return 0, fmt.Errorf("-fps %v is too slow to pace", fps)
	}
	return time.Duration(ns), nil
}

// replayConn is a synchronous request/reply wrapper over the device socket.
type replayConn struct {
	conn *websocket.Conn
}

func (c *replayConn) send(msg *protocol.Message, err error) error {
	if err != nil {
		return err
	}
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	c.conn.SetWriteDeadline(time.Now().Add(replayTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// await reads until a message of type want arrives. Error replies end the wait.
func (c *replayConn) await(want protocol.MessageType) (*protocol.Message, error) {
	for {
		c.conn.SetReadDeadline(time.Now().Add(replayTimeout))
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			log.Warn("unparseable reply", "error", err)
			continue
		}
		switch msg.Type {
		case want:
			return msg, nil
		case protocol.TypeError:
			e, _ := msg.GetErrorData()
			if e != nil {
				return nil, fmt.Errorf("service error: %s", e.Message)
			}
			return nil, fmt.Errorf("service error")
		}
	}
}
