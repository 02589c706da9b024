package invexcel

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultTableStyle is the banded table style applied when no override is
// configured: medium banding with row stripes.
const DefaultTableStyle = "TableStyleMedium9"

// Option configures a WorkbookBuilder at construction time.
type Option func(*WorkbookBuilder)

// WithTableStyle overrides the named table style applied to every sheet.
func WithTableStyle(name string) Option {
	return func(b *WorkbookBuilder) {
		if name != "" {
			b.tableStyle = name
		}
	}
}

// WithLogger sets the logger used for skip and warning messages. The default
// is a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *WorkbookBuilder) {
		b.logger = logger
	}
}

// WithClock overrides the time source used for output path templating.
func WithClock(now func() time.Time) Option {
	return func(b *WorkbookBuilder) {
		if now != nil {
			b.now = now
		}
	}
}
