package devctr

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// UserMessenger carries progress lines meant for the operator rather than the log file.
type UserMessenger interface {
	Message(ctx context.Context, msg string)
	// Warn reports something the operator has to act on.
	Warn(ctx context.Context, msg string)
}

type terminalMessenger struct {
	mu         sync.Mutex
	writer     io.Writer
	warnWriter io.Writer
	styled     bool
}

// NewTerminalMessenger writes messages to writer in a dim grey and warnings to
// warnWriter in yellow.
func NewTerminalMessenger(writer, warnWriter io.Writer) UserMessenger {
	return &terminalMessenger{writer: writer, warnWriter: warnWriter, styled: true}
}

// NewPlainMessenger writes messages to writer and warnings to warnWriter without any
// terminal styling.
func NewPlainMessenger(writer, warnWriter io.Writer) UserMessenger {
	return &terminalMessenger{writer: writer, warnWriter: warnWriter}
}

func (tm *terminalMessenger) Message(ctx context.Context, msg string) {
	slog.DebugContext(ctx, "userMsg", "msg", msg)
	tm.write(tm.writer, "\033[90m", msg)
}

func (tm *terminalMessenger) Warn(ctx context.Context, msg string) {
	slog.DebugContext(ctx, "userWarn", "msg", msg)
	tm.write(tm.warnWriter, "\033[1;33m", msg)
}

func (tm *terminalMessenger) write(w io.Writer, style, msg string) {
	if w == nil {
		return
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.styled {
		fmt.Fprintln(w, style+msg+"\033[0m")
		return
	}
	fmt.Fprintln(w, msg)
}

type nullMessenger struct{}

// NewNullMessenger drops every message.
func NewNullMessenger() UserMessenger {
	return &nullMessenger{}
}

func (nm *nullMessenger) Message(ctx context.Context, msg string) {
	slog.DebugContext(ctx, "userMsg (null messenger)", "msg", msg)
}

func (nm *nullMessenger) Warn(ctx context.Context, msg string) {
	slog.DebugContext(ctx, "userWarn (null messenger)", "msg", msg)
}
