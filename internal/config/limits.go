package config

const (
	// MaxFolderNameLength fits a PostgreSQL VARCHAR(255)
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for stored file names
	MaxFileNameLength = 255

	// MaxOrganizationNameLength is the maximum length for organization names
	MaxOrganizationNameLength = 255

	// MaxDescriptionLength caps folder descriptions
	MaxDescriptionLength = 2000

	// MaxFolderDepth bounds path walks; deeper chains are treated as corrupt
	MaxFolderDepth = 256
)
