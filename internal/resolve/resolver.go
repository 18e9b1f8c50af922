// Package resolve matches a normalized job record against the
// configured target table of its project.
package resolve

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lei/hookspool/internal/config"
	"github.com/lei/hookspool/internal/models"
)

var (
	// ErrUnknownProject indicates the project is not configured
	ErrUnknownProject = errors.New("unknown project")

	// ErrUnknownTarget indicates no configured target key starts
	// with the requested target
	ErrUnknownTarget = errors.New("unknown target")

	// ErrUnknownTask indicates the task filter emptied an otherwise
	// non-empty candidate set
	ErrUnknownTask = errors.New("unknown task")
)

// AmbiguityError reports that more than one configured target key
// matched. Overlapping prefixes are a configuration error surfaced to
// the caller; the resolver never picks a "best" match.
type AmbiguityError struct {
	Target     string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous target %q: matches %s", e.Target, strings.Join(e.Candidates, ", "))
}

// Resolve returns the single (key, command) pair whose key starts
// with the record's target, narrowed by "{target}/{task}" when a task
// is present. Exactly one candidate must remain.
func Resolve(cfg *config.Config, rec *models.JobRecord) (*models.ResolvedJob, error) {
	targets, ok := cfg.Targets(rec.Project)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProject, rec.Project)
	}

	var candidates []string
	for key := range targets {
		if strings.HasPrefix(key, rec.Target) {
			candidates = append(candidates, key)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, rec.Target)
	}

	if rec.Task != "" {
		prefix := rec.Target + "/" + rec.Task
		narrowed := candidates[:0]
		for _, key := range candidates {
			if strings.HasPrefix(key, prefix) {
				narrowed = append(narrowed, key)
			}
		}
		if len(narrowed) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTask, rec.Task)
		}
		candidates = narrowed
	}

	if len(candidates) > 1 {
		sort.Strings(candidates)
		return nil, &AmbiguityError{Target: rec.Target, Candidates: candidates}
	}

	key := candidates[0]
	return &models.ResolvedJob{
		JobRecord:     *rec,
		MatchedTarget: key,
		BuildCommand:  targets[key],
	}, nil
}
