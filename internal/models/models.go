package models

// JobRecord is the canonical build request produced by payload
// normalization, independent of which wire shape carried it.
type JobRecord struct {
	SCM            string            `json:"scm"`
	RepositoryURL  string            `json:"repositoryUrl"`
	Project        string            `json:"project"`
	Target         string            `json:"target"`
	Task           string            `json:"task,omitempty"`
	Commit         string            `json:"commit,omitempty"`
	ViewURL        string            `json:"viewUrl,omitempty"`
	Notifications  string            `json:"notifications"`
	CommitMessages map[string]string `json:"commitMessages,omitempty"`
}

// ResolvedJob is a JobRecord matched against the configuration.
// MatchedTarget is the exact configuration key that matched, which may
// differ from Target (a request for "release/2024" can match the
// configured key "release").
type ResolvedJob struct {
	JobRecord
	MatchedTarget string `json:"matchedTarget"`
	BuildCommand  string `json:"buildCommand"`
}
