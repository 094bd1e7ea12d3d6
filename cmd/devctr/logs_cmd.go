package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

type LogsCmd struct {
	Level string `default:"debug" enum:"debug,info,warn,error" help:"hide records below this level"`
	Color string `default:"auto" enum:"auto,always,never" help:"colorize output"`
}

func (c *LogsCmd) Run(cctx *Context) error {
	f, err := os.Open(cctx.LogFile)
	if err != nil {
		return err
	}
	defer f.Close()

	colorize := c.Color == "always"
	if c.Color == "auto" {
		if out, ok := cctx.Stdout.(*os.File); ok && term.IsTerminal(int(out.Fd())) {
			colorize = true
		}
	}
	var minLevel slog.Level
	if err := minLevel.UnmarshalText([]byte(c.Level)); err != nil {
		return err
	}
	return printLogs(f, cctx.Stdout, minLevel, colorize)
}

const (
	reset        = "\033[0m"
	cyan         = 36
	lightGray    = 37
	darkGray     = 90
	lightRed     = 91
	lightYellow  = 93
	lightMagenta = 95
)

func colorizer(colorCode int, v string) string {
	return fmt.Sprintf("\033[%dm%s%s", colorCode, v, reset)
}

// printLogs renders slog JSON records from r as one human-readable line each. Lines
// that aren't JSON records are passed through unchanged.
func printLogs(r io.Reader, w io.Writer, minLevel slog.Level, colorize bool) error {
	paint := func(code int, v string) string { return v }
	if colorize {
		paint = colorizer
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var rec map[string]any
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			fmt.Fprintln(w, sc.Text())
			continue
		}
		line, ok := formatRecord(rec, minLevel, paint)
		if !ok {
			continue
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return sc.Err()
}

func formatRecord(rec map[string]any, minLevel slog.Level, paint func(int, string) string) (string, bool) {
	levelName, _ := rec[slog.LevelKey].(string)
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		level = slog.LevelInfo
	}
	if level < minLevel {
		return "", false
	}
	switch {
	case level < slog.LevelInfo:
		levelName = paint(lightGray, levelName)
	case level < slog.LevelWarn:
		levelName = paint(cyan, levelName)
	case level < slog.LevelError:
		levelName = paint(lightYellow, levelName)
	case level == slog.LevelError:
		levelName = paint(lightRed, levelName)
	default:
		levelName = paint(lightMagenta, levelName)
	}

	var out strings.Builder
	if ts, ok := rec[slog.TimeKey].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			ts = t.Local().Format(time.DateTime)
		}
		out.WriteString(ts + " ")
	}
	out.WriteString(levelName + " ")
	if msg, ok := rec[slog.MessageKey].(string); ok {
		out.WriteString(msg)
	}

	delete(rec, slog.LevelKey)
	delete(rec, slog.TimeKey)
	delete(rec, slog.MessageKey)
	if len(rec) > 0 {
		attrs, err := json.Marshal(rec)
		if err == nil {
			out.WriteString(" " + paint(darkGray, string(attrs)))
		}
	}
	return out.String(), true
}
