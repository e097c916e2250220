package vault

import (
	"path"
	"regexp"
	"strings"

	"docvault/internal/config"
	"docvault/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var noSeparators = regexp.MustCompile(`^[^/\\]+$`)

// validationFailed turns an ozzo error into the domain validation error
func validationFailed(err error) error {
	if err == nil {
		return nil
	}
	return &domain.ValidationError{Message: err.Error()}
}

func validateFolderName(name string) error {
	return validationFailed(validation.Validate(name,
		validation.Required.Error("folder name is required"),
		validation.RuneLength(1, config.MaxFolderNameLength),
		validation.Match(noSeparators).Error("folder name cannot contain slashes"),
	))
}

func validateFileName(name string) error {
	return validationFailed(validation.Validate(name,
		validation.Required.Error("file name is required"),
		validation.RuneLength(1, config.MaxFileNameLength),
		validation.Match(noSeparators).Error("file name cannot contain slashes"),
	))
}

func validateDescription(description string) error {
	return validationFailed(validation.Validate(description,
		validation.RuneLength(0, config.MaxDescriptionLength),
	))
}

// extensionOf returns the lowercase extension of name without the dot
func extensionOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}
