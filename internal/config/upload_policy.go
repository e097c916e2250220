package config

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed policy/*.yaml
var policyFiles embed.FS

// UploadPolicy holds the limits FileStore enforces on uploads
type UploadPolicy struct {
	MaxUploadBytes    int64    `yaml:"max_upload_bytes" validate:"gt=0"`
	AllowedExtensions []string `yaml:"allowed_extensions" validate:"min=1,dive,required"`
}

// DefaultUploadPolicy loads the embedded policy file
func DefaultUploadPolicy() (*UploadPolicy, error) {
	data, err := policyFiles.ReadFile("policy/upload.yaml")
	if err != nil {
		return nil, fmt.Errorf("read upload policy: %w", err)
	}

	var policy UploadPolicy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("unmarshal upload policy: %w", err)
	}
	policy.AllowedExtensions = normalizeExtensions(policy.AllowedExtensions)

	return &policy, nil
}

// Allows reports whether ext (with or without a leading dot) is on the allow-list
func (p *UploadPolicy) Allows(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return false
	}
	for _, allowed := range p.AllowedExtensions {
		if allowed == ext {
			return true
		}
	}
	return false
}

// normalizeExtensions lowercases, strips dots and drops blanks and duplicates
func normalizeExtensions(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}
