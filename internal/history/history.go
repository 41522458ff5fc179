package history

import "time"

// Action describes what was done.
type Action string

const (
	ActionPageAdded       Action = "page_added"
	ActionPageDeleted     Action = "page_deleted"
	ActionProjectUploaded Action = "project_uploaded"
	ActionPagePublished   Action = "page_published"
)

// Entry is a single history record. Subject is the page id for page
// actions and the publish-name for publish actions.
type Entry struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Action        Action    `json:"action"`
	Subject       string    `json:"subject"`
	Summary       string    `json:"summary"`
	PreviousValue string    `json:"previous_value,omitempty"`
	NewValue      string    `json:"new_value,omitempty"`
}
