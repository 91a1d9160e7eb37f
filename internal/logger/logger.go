package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

type contextKey string

const jobIDKey contextKey = "job_id"

type implLogger struct {
	text  *log.Logger
	json  *slog.Logger
	level string
}

// New creates a new text Logger writing to stdout
func New(level string) Logger {
	return NewWithFormat(level, FormatText, os.Stdout)
}

// NewWithFormat creates a Logger; json output suits CloudWatch, text suits a terminal
func NewWithFormat(level, format string, out io.Writer) Logger {
	if out == nil {
		out = os.Stdout
	}

	l := &implLogger{level: strings.ToLower(level)}
	if strings.ToLower(format) == FormatJSON {
		l.json = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		l.text = log.New(out, "", log.LstdFlags)
	}
	return l
}

// ContextWithJobID tags every line logged with ctx with the job identifier
func ContextWithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, jobIDKey, jobID)
}

// JobIDFromContext returns the job identifier stored by ContextWithJobID
func JobIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(jobIDKey).(string)
	return id, ok && id != ""
}

func (l *implLogger) shouldLog(level string) bool {
	levels := map[string]int{
		"debug": 0,
		"info":  1,
		"warn":  2,
		"error": 3,
	}

	currentLevel, ok := levels[l.level]
	if !ok {
		currentLevel = 1 // default to info
	}

	targetLevel, ok := levels[level]
	if !ok {
		return true
	}

	return targetLevel >= currentLevel
}

var levelTags = map[string]*color.Color{
	"debug": color.New(color.FgCyan),
	"info":  color.New(color.FgGreen),
	"warn":  color.New(color.FgYellow),
	"error": color.New(color.FgRed),
}

var slogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func (l *implLogger) write(ctx context.Context, level, msg string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	jobID, hasJob := JobIDFromContext(ctx)

	if l.json != nil {
		var attrs []any
		if hasJob {
			attrs = append(attrs, slog.String("job_id", jobID))
		}
		if ctx == nil {
			ctx = context.Background()
		}
		l.json.Log(ctx, slogLevels[level], msg, attrs...)
		return
	}

	tag := levelTags[level].Sprintf("[%s]", strings.ToUpper(level))
	if hasJob {
		tag += " [" + jobID + "]"
	}
	l.text.Printf("%s %s", tag, msg)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.write(ctx, "debug", msg, args...)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.write(ctx, "info", msg, args...)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.write(ctx, "warn", msg, args...)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.write(ctx, "error", msg, args...)
}
