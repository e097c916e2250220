package vault

import "time"

// AccessLogEntry records a folder open or a file download. Entries are write-only.
type AccessLogEntry struct {
	SubjectID  string // folder or file id
	ActorID    string // user id
	IPAddress  string
	AccessedAt time.Time
}
