package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// bridgePrefix marks entry IDs derived from event records.
const bridgePrefix = "drv"

// New returns a fresh unique entry ID.
func New() string {
	return uuid.NewString()
}

// FormatBridgeID returns the deterministic entry ID for a derived
// ledger entry, like "drv:revenue:ev-12:r-3". The same
// (kind, eventID, recordID) triple always yields the same ID, which is
// what makes bridge create/update idempotent.
func FormatBridgeID(kind, eventID, recordID string) string {
	return strings.Join([]string{bridgePrefix, Sanitize(kind), Sanitize(eventID), Sanitize(recordID)}, ":")
}

// ParseBridgeID splits a bridge entry ID into kind, eventID, recordID.
func ParseBridgeID(entryID string) (kind, eventID, recordID string, err error) {
	parts := strings.SplitN(entryID, ":", 4)
	if len(parts) != 4 || parts[0] != bridgePrefix {
		return "", "", "", fmt.Errorf("invalid bridge entry ID: %q", entryID)
	}
	return parts[1], parts[2], parts[3], nil
}

// IsBridgeID reports whether entryID was produced by FormatBridgeID.
func IsBridgeID(entryID string) bool {
	return strings.HasPrefix(entryID, bridgePrefix+":")
}

// Sanitize lowercases s and collapses anything outside [a-z0-9._-]
// into single dashes, so IDs stay stable across cosmetic differences
// in the source record.
func Sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
