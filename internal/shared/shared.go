// package shared defines shared helpers
package shared

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]. Pass [io.Discard] to suppress logging entirely.
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count using binary (1024-based) units with one decimal place.
//
// Zero renders as "0 B".
func FormatBytes(n int64) string {
	if n == 0 {
		return "0 B"
	}

	size := float64(n)
	i := 0
	for size >= 1024 && i < len(byteUnits)-1 {
		size /= 1024
		i++
	}

	if i == 0 {
		return fmt.Sprintf("%d %s", n, byteUnits[0])
	}
	return fmt.Sprintf("%.1f %s", size, byteUnits[i])
}

// FormatDuration renders a duration in whole seconds as m:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

const sanitizeKeep = "-_.() abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Sanitize converts an arbitrary chat or file title into a filesystem-safe name.
//
// Characters outside a conservative allow list become underscores, runs of
// whitespace collapse to single underscores, and the result is capped at 120
// characters. An empty title becomes "chat".
func Sanitize(name string) string {
	if name == "" {
		name = "chat"
	}

	var b strings.Builder
	for _, c := range name {
		if strings.ContainsRune(sanitizeKeep, c) {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}

	cleaned := strings.Join(strings.Fields(b.String()), "_")
	if len(cleaned) > 120 {
		cleaned = cleaned[:120]
	}
	return cleaned
}
