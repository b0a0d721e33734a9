package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Level is a log severity as written by slog's text handler.
type Level int

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel accepts debug, info, warn/warning and error, case-insensitively.
func ParseLevel(value string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelDebug, fmt.Errorf("unknown level %q", value)
	}
}

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file is not an error.
func Read(path string, maxLines int) ([]string, error) {
	return ReadLevel(path, maxLines, LevelDebug)
}

// ReadLevel is Read restricted to entries at or above min. Lines without a
// level= field are kept.
func ReadLevel(path string, maxLines int, min Level) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	lines, err := tail(file, maxLines, func(line string) bool {
		lvl, ok := lineLevel(line)
		return !ok || lvl >= min
	})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return lines, nil
}

func tail(r io.Reader, maxLines int, keep func(string) bool) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			if keep(scanner.Text()) {
				lines = append(lines, scanner.Text())
			}
		}
		return lines, scanner.Err()
	}

	ring := make([]string, maxLines)
	count, idx := 0, 0
	for scanner.Scan() {
		line := scanner.Text()
		if !keep(line) {
			continue
		}
		ring[idx] = line
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

func lineLevel(line string) (Level, bool) {
	i := strings.Index(line, "level=")
	if i < 0 {
		return LevelDebug, false
	}
	rest := line[i+len("level="):]
	if j := strings.IndexByte(rest, ' '); j >= 0 {
		rest = rest[:j]
	}
	lvl, err := ParseLevel(rest)
	if err != nil {
		return LevelDebug, false
	}
	return lvl, true
}

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
	debugColor = color.New(color.FgHiBlack)
)

// Colorize tints a slog text line by its level. color.NoColor disables it.
func Colorize(line string) string {
	lvl, ok := lineLevel(line)
	if !ok {
		return line
	}
	switch lvl {
	case LevelError:
		return errorColor.Sprint(line)
	case LevelWarn:
		return warnColor.Sprint(line)
	case LevelDebug:
		return debugColor.Sprint(line)
	default:
		return line
	}
}
