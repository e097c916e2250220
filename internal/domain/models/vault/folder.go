package vault

import (
	"time"
)

type Folder struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	ParentID       *string   `json:"parent_folder_id" db:"parent_folder_id"` // NULL = root of the organization
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	PasswordHash   *string   `json:"-" db:"password_hash"`
	CreatedBy      string    `json:"created_by" db:"created_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Locked reports whether the folder is password protected
func (f *Folder) Locked() bool {
	return f.PasswordHash != nil && *f.PasswordHash != ""
}

// IsRoot reports whether the folder has no parent
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// PathSegment is one breadcrumb entry of a folder path
type PathSegment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
