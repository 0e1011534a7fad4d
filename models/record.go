package models

import "time"

// PodUnassigned is the reserved pod value meaning "no pod assigned". It is
// distinct from an empty string, which means the field was never resolved.
const PodUnassigned = "Unassigned"

// RepoStatus is the lifecycle status of a repository.
type RepoStatus string

const (
	StatusActive     RepoStatus = "active"
	StatusArchived   RepoStatus = "archived"
	StatusDeprecated RepoStatus = "deprecated"
)

// RepositoryRecord is one row of the ownership dashboard. Curated fields
// (pod, vertical, engineeringManager) belong to humans and survive syncs;
// observed fields are refreshed from the latest successful fetch.
type RepositoryRecord struct {
	Organization       string     `json:"organization"`
	Repository         string     `json:"repository"`
	Pod                string     `json:"pod"`
	Vertical           string     `json:"vertical"`
	EngineeringManager string     `json:"engineeringManager"`
	Description        string     `json:"description"`
	Language           string     `json:"language"`
	Status             RepoStatus `json:"status"`
	// LastActivity is a YYYY-MM-DD date, or null when unknown.
	LastActivity *string `json:"lastActivity"`
	GitHubURL    string  `json:"githubUrl"`
	Codeowners   bool    `json:"codeowners"`
	// Vulnerabilities is nil when the enrichment stage produced nothing for
	// this record (so a merge can fall back to the prior bundle).
	Vulnerabilities *VulnerabilityBundle `json:"vulnerabilities"`
}

// Key is the unique, case-sensitive identity of a record.
func (r *RepositoryRecord) Key() string {
	return r.Organization + "/" + r.Repository
}

// DatasetMetadata describes one persisted sync run.
type DatasetMetadata struct {
	LastUpdated   time.Time `json:"lastUpdated"`
	Version       string    `json:"version"`
	Organizations []string  `json:"organizations"`
	TotalRepos    int       `json:"totalRepos"`
	Updated       int       `json:"updated"`
	Skipped       int       `json:"skipped"`
	Errors        int       `json:"errors"`
}

// Dataset is the persisted JSON document the dashboard renders.
type Dataset struct {
	Metadata     DatasetMetadata    `json:"metadata"`
	Repositories []RepositoryRecord `json:"repositories"`
}
