package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize fits a full mesh with generous float formatting.
const maxLineSize = 1 << 20

// readFrames parses JSON lines, each an array of packed x,y,z floats.
// Blank lines and lines starting with # are skipped.
func readFrames(r io.Reader) ([][]float64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var frames [][]float64
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var coords []float64
		if err := json.Unmarshal([]byte(text), &coords); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		frames = append(frames, coords)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}
	return frames, nil
}

// readFramesFile reads frames from path, or stdin when path is "-".
func readFramesFile(path string) ([][]float64, error) {
	if path == "-" {
		return readFrames(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readFrames(f)
}
