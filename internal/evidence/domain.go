// Package evidence tracks physical and digital evidence items attached
// to a case.
package evidence

import "time"

// Item is a single piece of evidence in a case.
type Item struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"caseId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	FileType    string    `json:"fileType"`
	CreatedAt   time.Time `json:"createdAt"`
}
