// Package payload normalizes the supported wire shapes into the
// canonical JobRecord. Each shape is a table entry, selected by exact
// request path; adding a shape is a new entry, not a new branch.
package payload

import (
	"fmt"

	"github.com/lei/hookspool/internal/models"
)

// DefaultNotifications is the notification mode used when a payload
// does not carry one.
const DefaultNotifications = "all"

// refHeadsPrefix is stripped from refs at most once, so
// "refs/heads/release/2024" becomes "release/2024" and
// "refs/heads/refs/heads/x" becomes "refs/heads/x".
const refHeadsPrefix = "refs/heads/"

// FieldError names the first missing required field of a payload.
// Checks run in a fixed order per shape so the reported field is
// deterministic.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Normalizer turns a decoded request body into a JobRecord
type Normalizer func(body []byte) (*models.JobRecord, error)

// ByPath maps recognized ingest paths to their shape's normalizer.
var ByPath = map[string]Normalizer{
	"/gitea": Gitea,
	"/":      Lightweight,
	"/adhoc": Adhoc,
}
