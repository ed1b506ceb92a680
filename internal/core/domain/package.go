package domain

import "time"

// PackageRecord describes a package produced by a successful lifecycle run.
type PackageRecord struct {
	Name         string    `json:"name,omitzero"`
	Version      string    `json:"version,omitzero"`
	Dir          string    `json:"dir,omitzero"`
	License      string    `json:"license,omitzero"`
	Digest       string    `json:"digest,omitzero"`
	Fingerprint  string    `json:"fingerprint,omitzero"`
	Requirements []string  `json:"requirements,omitempty"`
	Timestamp    time.Time `json:"timestamp,omitzero"`
}

// Reference returns the name/version reference of the record.
func (r PackageRecord) Reference() Reference {
	return Reference{Name: r.Name, Version: r.Version}
}
