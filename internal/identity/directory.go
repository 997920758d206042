package identity

import (
	"context"
	"strings"
)

// Directory answers role questions about authenticated users.
// Authentication itself happens upstream; user IDs are trusted as given.
type Directory interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// StaticDirectory holds a fixed set of administrator IDs
type StaticDirectory struct {
	admins map[string]struct{}
}

func NewStaticDirectory(adminIDs ...string) *StaticDirectory {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = struct{}{}
		}
	}
	return &StaticDirectory{admins: admins}
}

func (d *StaticDirectory) IsAdmin(_ context.Context, userID string) (bool, error) {
	_, ok := d.admins[userID]
	return ok, nil
}
