package spool

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/lei/hookspool/internal/models"
)

// JobFile is the parsed form of an emitted spool file. It is the
// symmetric counterpart of Emit, used by tooling and tests; the build
// executor itself is an external consumer.
type JobFile struct {
	Job    models.ResolvedJob
	MailTo string
	Mode   string
}

// ParseJobFile reads a spool file back into a JobFile
func ParseJobFile(path string) (*JobFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open job file: %w", err)
	}
	defer f.Close()

	jf := &JobFile{}
	jf.Job.CommitMessages = make(map[string]string)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		sep := indexUnescaped(line, '=')
		if sep < 0 {
			return nil, fmt.Errorf("job file %s line %d: no separator", path, lineNo)
		}
		key := strings.TrimSpace(line[:sep])
		value := unescape(strings.TrimPrefix(line[sep+1:], " "))
		jf.apply(key, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}

	return jf, nil
}

func (jf *JobFile) apply(key, value string) {
	switch key {
	case "scm":
		jf.Job.SCM = value
	case "project":
		jf.Job.Project = value
	case "repositoryUrl":
		jf.Job.RepositoryURL = value
	case "commit":
		jf.Job.Commit = value
	case "task":
		jf.Job.Task = value
	case "target":
		jf.Job.Target = value
		jf.Job.MatchedTarget = value
	case "buildCommand":
		jf.Job.BuildCommand = value
	case "viewUrl":
		jf.Job.ViewURL = value
	case "mailto":
		jf.MailTo = value
	case "mode":
		jf.Mode = value
	case "notifications":
		jf.Job.Notifications = value
	default:
		if id, ok := strings.CutPrefix(key, messageKeyPrefix); ok {
			jf.Job.CommitMessages[unescape(id)] = value
		}
	}
}
