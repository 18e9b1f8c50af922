package payload

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lei/hookspool/internal/models"
)

// lightweightPayload is the minimal flat shape accepted on the root
// path. Field names match the canonical JobRecord.
type lightweightPayload struct {
	SCM           string `json:"scm"`
	RepositoryURL string `json:"repositoryUrl"`
	Project       string `json:"project"`
	Target        string `json:"target"`
	Task          string `json:"task"`
	Commit        string `json:"commit"`
	ViewURL       string `json:"viewUrl"`
	Notifications string `json:"notifications"`
	Message       string `json:"message"`
}

// Lightweight normalizes the flat shape. Required fields are checked
// in order: scm, repositoryUrl, project, target. A single message, if
// present, is recorded under the given commit id even when that id is
// empty.
func Lightweight(body []byte) (*models.JobRecord, error) {
	var p lightweightPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode lightweight payload: %w", err)
	}

	if p.SCM == "" {
		return nil, &FieldError{Field: "scm"}
	}
	if p.RepositoryURL == "" {
		return nil, &FieldError{Field: "repositoryUrl"}
	}
	if p.Project == "" {
		return nil, &FieldError{Field: "project"}
	}
	target := strings.TrimPrefix(p.Target, refHeadsPrefix)
	if target == "" {
		return nil, &FieldError{Field: "target"}
	}

	notifications := p.Notifications
	if notifications == "" {
		notifications = DefaultNotifications
	}

	rec := &models.JobRecord{
		SCM:            p.SCM,
		RepositoryURL:  p.RepositoryURL,
		Project:        p.Project,
		Target:         target,
		Task:           p.Task,
		Commit:         p.Commit,
		ViewURL:        p.ViewURL,
		Notifications:  notifications,
		CommitMessages: make(map[string]string),
	}
	if p.Message != "" {
		rec.CommitMessages[p.Commit] = p.Message
	}

	return rec, nil
}
