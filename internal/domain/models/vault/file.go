package vault

import (
	"time"
)

type File struct {
	ID             string    `json:"id" db:"id"`
	FolderID       *string   `json:"folder_id" db:"folder_id"` // NULL = organization root
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	StoragePath    string    `json:"-" db:"storage_path"` // blob key, unique
	SizeBytes      int64     `json:"size_bytes" db:"size_bytes"`
	MimeType       string    `json:"mime_type" db:"mime_type"`
	UploadedBy     string    `json:"uploaded_by" db:"uploaded_by"`
	UploadedAt     time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// InRoot reports whether the file is stored at the organization root
func (f *File) InRoot() bool {
	return f.FolderID == nil
}
