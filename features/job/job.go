package job

import (
	"encoding/json"
	"time"
)

// Job is one failed ingestion task, kept for manual retry. Payload is the
// original NSQ message body, republished verbatim on retry.
type Job struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	Handler    string          `json:"handler"`
	Payload    json.RawMessage `json:"payload"`
	Error      string          `json:"error"`
	Retries    int             `json:"retries"`
	CreatedAt  time.Time       `json:"created_at"`
}
