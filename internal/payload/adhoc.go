package payload

import (
	"encoding/json"
	"fmt"

	"github.com/lei/hookspool/internal/models"
)

// adhocPayload is the command-only minimal shape used by standalone
// ingestion. The branch is already bare, so no ref prefix stripping
// happens here.
type adhocPayload struct {
	SCM            string `json:"scm"`
	RepositoryURL  string `json:"repositoryUrl"`
	RepositoryName string `json:"repositoryName"`
	Commit         string `json:"commit"`
	Branch         string `json:"branch"`
	ViewURL        string `json:"viewUrl"`
}

// Adhoc normalizes the minimal shape. Required fields are checked in
// order: scm, repositoryUrl, repositoryName, commit, branch.
func Adhoc(body []byte) (*models.JobRecord, error) {
	var p adhocPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode adhoc payload: %w", err)
	}

	if p.SCM == "" {
		return nil, &FieldError{Field: "scm"}
	}
	if p.RepositoryURL == "" {
		return nil, &FieldError{Field: "repositoryUrl"}
	}
	if p.RepositoryName == "" {
		return nil, &FieldError{Field: "repositoryName"}
	}
	if p.Commit == "" {
		return nil, &FieldError{Field: "commit"}
	}
	if p.Branch == "" {
		return nil, &FieldError{Field: "branch"}
	}

	return &models.JobRecord{
		SCM:            p.SCM,
		RepositoryURL:  p.RepositoryURL,
		Project:        p.RepositoryName,
		Target:         p.Branch,
		Commit:         p.Commit,
		ViewURL:        p.ViewURL,
		Notifications:  DefaultNotifications,
		CommitMessages: make(map[string]string),
	}, nil
}
