package repo

import (
	"time"

	"github.com/hamed0406/netmonitor/internal/domain"
)

// AlertRecord holds the last seen health level of an entity, the level
// reported by the last notification and when it went out (used for
// cooldown).
type AlertRecord struct {
	Key          string
	LastLevel    domain.Level
	LastNotified domain.Level
	LastSentAt   *time.Time
}
