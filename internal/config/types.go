package config

// Config is the root configuration structure for repoboard.
// Serialised to ~/.repoboard/config.json.
type Config struct {
	GitHub  GitHubConfig  `mapstructure:"github"  json:"github"`
	Sync    SyncConfig    `mapstructure:"sync"    json:"sync"`
	History HistoryConfig `mapstructure:"history" json:"history"`
	Notify  NotifyConfig  `mapstructure:"notify"  json:"notify"`
}

// GitHubConfig holds credentials for the GitHub instance being synced.
type GitHubConfig struct {
	// Token is a PAT with repo + security_events read scope. Falls back to
	// the GITHUB_TOKEN environment variable.
	Token string `mapstructure:"token" json:"token"`
	// Host allows enterprise GitHub (e.g. github.mycompany.com).
	Host string `mapstructure:"host"  json:"host"`
}

// SyncConfig controls the sync pass itself.
type SyncConfig struct {
	// Organizations are the GitHub orgs whose repositories are synced.
	Organizations []string `mapstructure:"organizations" json:"organizations"`
	// DatasetPath is the JSON document the dashboard reads.
	DatasetPath string `mapstructure:"dataset_path" json:"dataset_path"`
	// PodMapPath points at the optional pod → engineering-manager map file.
	PodMapPath string `mapstructure:"pod_map_path" json:"pod_map_path"`
	// BatchSize is how many repositories are enriched in parallel.
	BatchSize int `mapstructure:"batch_size" json:"batch_size"`
	// PageSize is the per-request page size for all paginated API calls.
	PageSize int `mapstructure:"page_size" json:"page_size"`
	// Version is stamped into the dataset metadata.
	Version string `mapstructure:"version" json:"version"`
	// IncludeArchived syncs archived repositories too (default: skip them).
	IncludeArchived bool `mapstructure:"include_archived" json:"include_archived"`
	// Exclude lists repositories to skip: "owner/name", a bare name, or a
	// "prefix*" pattern.
	Exclude []string `mapstructure:"exclude" json:"exclude"`
	// Schedule is a cron expression for 'repoboard agent' (e.g. "0 6 * * *").
	Schedule string `mapstructure:"schedule" json:"schedule"`
}

// HistoryConfig controls the local sync-run log.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Path is the SQLite file path (expanded at runtime).
	Path string `mapstructure:"path" json:"path"`
}

// NotifyConfig controls post-run notifications.
type NotifyConfig struct {
	// SlackWebhookURL, when set, receives the run report after each pass.
	SlackWebhookURL string `mapstructure:"slack_webhook_url" json:"slack_webhook_url"`
}
