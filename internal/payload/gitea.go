package payload

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lei/hookspool/internal/models"
)

// giteaPayload mirrors the fields consumed from a Gitea push webhook
type giteaPayload struct {
	Ref        string           `json:"ref"`
	After      string           `json:"after"`
	CompareURL string           `json:"compare_url"`
	Repository *giteaRepository `json:"repository"`
	Commits    []giteaCommit    `json:"commits"`
}

type giteaRepository struct {
	SSHURL   string `json:"ssh_url"`
	FullName string `json:"full_name"`
}

type giteaCommit struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// Gitea normalizes a Gitea push webhook. The ref loses a single
// leading "refs/heads/", commit messages are aggregated from the
// commits list, and the first commit's own URL stands in for a
// missing compare URL.
func Gitea(body []byte) (*models.JobRecord, error) {
	var p giteaPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode gitea payload: %w", err)
	}

	if p.Repository == nil {
		return nil, &FieldError{Field: "repository"}
	}
	if p.Repository.FullName == "" {
		return nil, &FieldError{Field: "repository.full_name"}
	}
	if p.Repository.SSHURL == "" {
		return nil, &FieldError{Field: "repository.ssh_url"}
	}
	target := strings.TrimPrefix(p.Ref, refHeadsPrefix)
	if target == "" {
		return nil, &FieldError{Field: "ref"}
	}

	rec := &models.JobRecord{
		SCM:            "git",
		RepositoryURL:  p.Repository.SSHURL,
		Project:        p.Repository.FullName,
		Target:         target,
		Commit:         p.After,
		ViewURL:        p.CompareURL,
		Notifications:  DefaultNotifications,
		CommitMessages: make(map[string]string, len(p.Commits)),
	}
	for _, c := range p.Commits {
		rec.CommitMessages[c.ID] = c.Message
	}
	if rec.ViewURL == "" && len(p.Commits) > 0 {
		rec.ViewURL = p.Commits[0].URL
	}

	return rec, nil
}
