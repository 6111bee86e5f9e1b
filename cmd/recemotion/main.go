// recemotion: command line client for the emotion inference service.
//
// Usage:
//
//	recemotion local   -file frames.jsonl [-wake unix] [-stress n] [-text s]
//	recemotion replay  -file frames.jsonl [-device id] [-fps n] [-text s]
//	recemotion analyze [-text s] [-save]
//	recemotion stress  -level n
//	recemotion session [-wake unix | -awake 2h]
//	recemotion journal [-id id | -latest] [-q query]
//
// Remote commands talk to RECEMOTION_URL (default http://localhost:8080).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/recemotion/internal/config"
	"github.com/teslashibe/recemotion/internal/httpc"
	"github.com/teslashibe/recemotion/internal/log"
	"github.com/teslashibe/recemotion/pkg/session"
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, args []string, out io.Writer) error
}

var commands = []command{
	{"local", "run frames through an in-process session and print the report", runLocal},
	{"replay", "stream frames to a running service over WebSocket", runReplay},
	{"analyze", "fetch the current analysis report", runAnalyze},
	{"stress", "report a stress level (1-5)", runStress},
	{"session", "start a new session", runSession},
	{"journal", "list or fetch saved reports", runJournal},
}

func main() {
	log.Init(os.Getenv("RECEMOTION_LOG_LEVEL"))

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name := os.Args[1]
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		if err := cmd.run(ctx, os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "recemotion %s: %v\n", name, err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
	usage()
	os.Exit(2)
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: recemotion <command> [flags]")
	fmt.Fprintln(os.Stderr)
	for _, cmd := range commands {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", cmd.name, cmd.usage)
	}
}

func serverURL() string {
	return config.ServerURL(config.DefaultServerURL)
}

// printJSON writes v indented.
func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// flagSet reports whether the named flag was given on the command line.
func flagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// runLocal processes a landmark file without a server.
func runLocal(_ context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("local", flag.ContinueOnError)
	file := fs.String("file", "-", "Landmark file (JSON lines, - for stdin)")
	wake := fs.Int64("wake", 0, "Wake time (unix seconds), no session when omitted")
	stress := fs.Int("stress", session.MinStress, "Stress level (1-5)")
	text := fs.String("text", "", "Input text to include in the report")
	samples := fs.Int("samples", session.DefaultConfig().CalibrationSamples, "Calibration samples")
	if err := fs.Parse(args); err != nil {
		return err
	}

	frames, err := readFramesFile(*file)
	if err != nil {
		return err
	}

	cfg := session.DefaultConfig()
	cfg.CalibrationSamples = *samples
	mgr := session.New(cfg)
	if flagSet(fs, "wake") {
		mgr.InitSession(time.Unix(*wake, 0))
	}
	mgr.UpdateStress(*stress)

	rejected := 0
	for _, coords := range frames {
		if !mgr.PushFlat(coords).Accepted() {
			rejected++
		}
	}
	log.Info("frames processed", "total", len(frames), "rejected", rejected)

	return printJSON(out, mgr.Report(*text))
}

func runAnalyze(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	text := fs.String("text", "", "Input text to include in the report")
	save := fs.Bool("save", false, "Save the report to the journal")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var result any
	if *save {
		var data struct {
			EntryID string          `json:"entry_id"`
			Report  json.RawMessage `json:"report"`
		}
		err := httpc.PostJSON(ctx, serverURL()+"/api/analysis", map[string]string{"text": *text}, &data)
		if err != nil {
			return err
		}
		result = data
	} else {
		var report session.Report
		err := httpc.GetJSON(ctx, serverURL()+"/api/analysis?text="+url.QueryEscape(*text), &report)
		if err != nil {
			return err
		}
		result = report
	}
	return printJSON(out, result)
}

func runStress(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("stress", flag.ContinueOnError)
	level := fs.Int("level", 0, "Stress level (1-5, out of range values are clamped)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *level == 0 {
		return fmt.Errorf("-level is required")
	}

	var resp map[string]any
	if err := httpc.PostJSON(ctx, serverURL()+"/api/stress", map[string]int{"level": *level}, &resp); err != nil {
		return err
	}
	return printJSON(out, resp)
}

func runSession(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	wake := fs.Int64("wake", 0, "Wake time (unix seconds)")
	awake := fs.Duration("awake", 0, "Time since waking, used when -wake is not set")
	if err := fs.Parse(args); err != nil {
		return err
	}

	wakeTime := *wake
	if !flagSet(fs, "wake") {
		wakeTime = time.Now().Add(-*awake).Unix()
	}

	var resp map[string]any
	if err := httpc.PostJSON(ctx, serverURL()+"/api/session", map[string]int64{"wake_time": wakeTime}, &resp); err != nil {
		return err
	}
	return printJSON(out, resp)
}

func runJournal(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("journal", flag.ContinueOnError)
	id := fs.String("id", "", "Entry ID")
	latest := fs.Bool("latest", false, "Fetch the most recent entry")
	query := fs.String("q", "", "Search input text")
	if err := fs.Parse(args); err != nil {
		return err
	}

	endpoint := serverURL() + "/api/journal/"
	switch {
	case *id != "":
		endpoint += url.PathEscape(*id)
	case *latest:
		endpoint += "latest"
	case *query != "":
		endpoint += "?q=" + url.QueryEscape(*query)
	}

	var resp json.RawMessage
	if err := httpc.GetJSON(ctx, endpoint, &resp); err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(resp, &v); err != nil {
		return err
	}
	return printJSON(out, v)
}
