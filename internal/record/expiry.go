package record

import (
	"time"

	"github.com/dustin/go-humanize"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

// ExpiredError reports a record read after its TTL elapsed.
type ExpiredError struct {
	ExpiresAt time.Time
	// Elapsed is the time since expiry, not since creation.
	Elapsed time.Duration
}

func (e *ExpiredError) Error() string {
	return "record expired " + humanize.RelTime(e.ExpiresAt, e.ExpiresAt.Add(e.Elapsed), "ago", "from now")
}

func (e *ExpiredError) Unwrap() error { return herrors.ErrExpired }

// ExpiresAt is created_at + ttl.
func (s Signable) ExpiresAt() time.Time {
	return time.Unix(s.CreatedAt+s.TTL, 0)
}

// CheckExpiry returns nil while now is before the expiry time, and an
// *ExpiredError from that instant on.
func CheckExpiry(rec *HandoffRecord, now time.Time) error {
	expires := rec.ExpiresAt()
	if now.Before(expires) {
		return nil
	}
	return &ExpiredError{
		ExpiresAt: expires,
		Elapsed:   now.Sub(expires).Truncate(time.Second),
	}
}
