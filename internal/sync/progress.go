package sync

import (
	"fmt"
	"time"

	"github.com/lectern-reader/lectern/internal/bridge"
)

// progressMsg builds the transport display event for a position.
func progressMsg(pos, total time.Duration) bridge.ProgressMsg {
	if pos < 0 {
		pos = 0
	}
	if pos > total {
		pos = total
	}
	percent := 0.0
	if total > 0 {
		percent = float64(pos) / float64(total) * 100
	}
	return bridge.ProgressMsg{
		Percent:       percent,
		TimeRemaining: FormatRemaining(total - pos),
	}
}

// FormatRemaining renders a duration as "M:SS", the transport display
// format. Sub-second remainders round up so the display never shows 0:00
// while audio is still playing.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
