// Package spool emits job files for the external build executor. One
// file is written per accepted request, named by a one-second
// timestamp; the executor owns the file once it exists and is
// responsible for deleting it.
package spool

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/lei/hookspool/internal/config"
	"github.com/lei/hookspool/internal/models"
)

const fileExt = ".job"

// messageKeyPrefix keys one line per aggregated commit message,
// embedding the commit id.
const messageKeyPrefix = "message."

// Emitter writes job files into a spool directory
type Emitter struct {
	dir string
	now func() time.Time
}

// NewEmitter creates an emitter for the given spool directory
func NewEmitter(dir string) *Emitter {
	return &Emitter{dir: dir, now: time.Now}
}

// Emit serializes job into a newly created spool file and returns its
// path. Nothing is written for a job that failed resolution; callers
// only reach this point with a fully resolved job.
func (e *Emitter) Emit(job *models.ResolvedJob, settings config.Settings) (string, error) {
	f, path, err := e.create()
	if err != nil {
		return "", fmt.Errorf("create job file: %w", err)
	}

	if err := writeJob(f, job, settings); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write job file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close job file: %w", err)
	}

	return path, nil
}

// create opens a new exclusively-created file named by the current
// second. Two requests landing in the same second would collide under
// plain timestamp naming, so the name gains a -1, -2, ... suffix
// until the create succeeds.
func (e *Emitter) create() (*os.File, string, error) {
	stamp := e.now().Format("20060102-150405")
	for n := 0; ; n++ {
		name := stamp + fileExt
		if n > 0 {
			name = fmt.Sprintf("%s-%d%s", stamp, n, fileExt)
		}
		path := filepath.Join(e.dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !os.IsExist(err) {
			return nil, "", err
		}
	}
}

// writeJob serializes the job as a flat key/value block. Commit
// message lines come last, sorted by commit id so output is
// deterministic.
func writeJob(f *os.File, job *models.ResolvedJob, settings config.Settings) error {
	w := bufio.NewWriter(f)

	writeField(w, "scm", job.SCM)
	writeField(w, "project", job.Project)
	writeField(w, "repositoryUrl", job.RepositoryURL)
	writeField(w, "commit", job.Commit)
	writeField(w, "task", job.Task)
	writeField(w, "target", job.MatchedTarget)
	writeField(w, "buildCommand", job.BuildCommand)
	writeField(w, "viewUrl", job.ViewURL)
	writeField(w, "mailto", settings.MailTo)
	writeField(w, "mode", settings.Mode)
	writeField(w, "notifications", job.Notifications)

	ids := make([]string, 0, len(job.CommitMessages))
	for id := range job.CommitMessages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		writeField(w, messageKeyPrefix+escapeKey(id), job.CommitMessages[id])
	}

	return w.Flush()
}

func writeField(w *bufio.Writer, key, value string) {
	w.WriteString(key)
	w.WriteString(" = ")
	w.WriteString(escapeValue(value))
	w.WriteByte('\n')
}
