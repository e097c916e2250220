package vault

import (
	"fmt"
	"strings"
	"time"
)

// Level is a permission level with a fixed total order: read < write < admin.
type Level int

const (
	LevelNone  Level = 0
	LevelRead  Level = 1
	LevelWrite Level = 2
	LevelAdmin Level = 3
)

// ParseLevel converts "read", "write" or "admin" (case-insensitive) to a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "read":
		return LevelRead, nil
	case "write":
		return LevelWrite, nil
	case "admin":
		return LevelAdmin, nil
	default:
		return LevelNone, fmt.Errorf("unknown permission level %q", s)
	}
}

func (l Level) String() string {
	switch l {
	case LevelRead:
		return "read"
	case LevelWrite:
		return "write"
	case LevelAdmin:
		return "admin"
	default:
		return "none"
	}
}

// Valid reports whether l is one of read, write, admin
func (l Level) Valid() bool {
	return l >= LevelRead && l <= LevelAdmin
}

// Satisfies reports whether a grant at level l meets the required level
func (l Level) Satisfies(required Level) bool {
	return l.Valid() && l >= required
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid permission level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// PermissionGrant is a direct (user, folder) -> level mapping. Grants are never
// inherited by sub-folders.
type PermissionGrant struct {
	UserID    string    `json:"user_id" db:"user_id"`
	FolderID  string    `json:"folder_id" db:"folder_id"`
	Level     Level     `json:"level" db:"level"`
	GrantedBy string    `json:"granted_by" db:"granted_by"`
	GrantedAt time.Time `json:"granted_at" db:"granted_at"`
}
