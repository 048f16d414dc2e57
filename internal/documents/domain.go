// Package documents manages case documents: uploaded or pasted text the
// user attaches to a case and later runs analysis over.
package documents

import "time"

// Document is a piece of textual material attached to a case.
type Document struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"caseId"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	MimeType  string    `json:"mimeType"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
