// Package cache keeps fetched style packs on disk.
package cache

import (
	"fmt"
	"time"
)

// Metadata stores cache state for conditional fetching.
type Metadata struct {
	Owner       string    `json:"owner"`
	Repo        string    `json:"repo"`
	Path        string    `json:"path"`
	ETag        string    `json:"etag,omitempty"`
	SHA         string    `json:"sha,omitempty"`
	LastFetched time.Time `json:"last_fetched"`
}

// IsStale returns true if cache is at or older than the TTL.
func (m *Metadata) IsStale(ttl time.Duration) bool {
	return time.Since(m.LastFetched) >= ttl
}

// Age returns human-readable age string.
func (m *Metadata) Age() string {
	d := time.Since(m.LastFetched)

	unit := func(n int, name string) string {
		if n == 1 {
			return "1 " + name + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, name)
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return unit(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return unit(int(d.Hours()), "hour")
	default:
		return unit(int(d.Hours()/24), "day")
	}
}

// RepoString returns "owner/repo" format.
func (m *Metadata) RepoString() string {
	return fmt.Sprintf("%s/%s", m.Owner, m.Repo)
}
