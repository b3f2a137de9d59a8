package interfaces

import "strings"

// Caller identifies who is asking for a parse. Anonymous callers are
// identified by display name (usually an IP address), registered callers by
// their numeric id.
type Caller struct {
	ID     int64
	Name   string
	Rights []string
}

// IsRegistered reports whether the caller is an authenticated account.
func (c Caller) IsRegistered() bool {
	return c.ID > 0
}

// DisplayName returns the trimmed caller name, defaulting anonymous callers
// without a name to "127.0.0.1".
func (c Caller) DisplayName() string {
	name := strings.TrimSpace(c.Name)
	if name == "" && !c.IsRegistered() {
		return "127.0.0.1"
	}
	return name
}
