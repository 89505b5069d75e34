package thread

import "time"

// PresenceAt buckets a conversation by time elapsed since its latest
// booking activity. Boundaries resolve to the higher-elapsed bucket, and
// there is no hysteresis: a conversation may flip between ticks purely
// because the clock advanced.
func PresenceAt(ref, now time.Time) Presence {
	elapsed := now.Sub(ref)
	switch {
	case elapsed < 2*time.Hour:
		return Online
	case elapsed < 24*time.Hour:
		return Away
	default:
		return Offline
	}
}
