package dataset

import "github.com/patchwatch/repoboard/models"

// Merge reconciles a freshly fetched record with the previously persisted
// one. Curated fields (pod, vertical, engineeringManager) are owned by
// humans: a non-empty prior value is never clobbered by an empty or
// sentinel fresh one. Observed fields take the fresh value and fall back to
// the prior one only when the fetch could not determine a value.
//
// Merge is idempotent: merging the same fresh record against the same prior
// twice yields the same result.
func Merge(fresh models.RepositoryRecord, prior *models.RepositoryRecord) models.RepositoryRecord {
	out := fresh

	if prior == nil {
		if out.Pod == "" {
			out.Pod = models.PodUnassigned
		}
		// Manager is never sourced from the fetch stage: the upstream API
		// has no such concept.
		out.EngineeringManager = ""
		return out
	}

	out.Pod = mergePod(fresh.Pod, prior.Pod)
	out.Vertical = firstNonEmpty(fresh.Vertical, prior.Vertical)
	out.EngineeringManager = prior.EngineeringManager

	out.Description = firstNonEmpty(fresh.Description, prior.Description)
	out.Language = firstNonEmpty(fresh.Language, prior.Language)
	if fresh.GitHubURL == "" {
		out.GitHubURL = prior.GitHubURL
	}
	if fresh.Status == "" {
		out.Status = prior.Status
	}
	if fresh.LastActivity == nil {
		out.LastActivity = prior.LastActivity
	}

	// A nil fresh bundle means the whole vulnerability stage failed for
	// this repository; keeping the prior bundle stops a transient API
	// failure from erasing known risk.
	if fresh.Vulnerabilities == nil {
		out.Vulnerabilities = prior.Vulnerabilities
	}

	return out
}

func mergePod(fresh, prior string) string {
	if fresh != "" && fresh != models.PodUnassigned {
		return fresh
	}
	if prior != "" {
		return prior
	}
	return models.PodUnassigned
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Dedupe collapses records sharing the same (organization, repository)
// identity; the last-seen record wins. Position follows first appearance so
// the output order stays stable.
func Dedupe(records []models.RepositoryRecord) []models.RepositoryRecord {
	index := make(map[string]int, len(records))
	out := make([]models.RepositoryRecord, 0, len(records))
	for _, r := range records {
		key := r.Key()
		if i, seen := index[key]; seen {
			out[i] = r
			continue
		}
		index[key] = len(out)
		out = append(out, r)
	}
	return out
}
