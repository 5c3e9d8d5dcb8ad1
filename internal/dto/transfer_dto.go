package dto

import "time"

// ImportSummary reports the outcome of a pod assignment import.
type ImportSummary struct {
	Rows      int      `json:"rows"`
	Matched   int      `json:"matched"`
	Skipped   int      `json:"skipped"`
	Unmatched []string `json:"unmatched"`
	Revision  int64    `json:"revision"`
}

// BackupResponse describes an uploaded snapshot backup.
type BackupResponse struct {
	URL        string    `json:"url"`
	Filename   string    `json:"filename"`
	Revision   int64     `json:"revision"`
	Bytes      int       `json:"bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}
