// Package timeline manages the dated events that make up a case
// chronology.
package timeline

import "time"

// Event is a dated entry in a case timeline.
type Event struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"caseId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"eventDate"`
	CreatedAt   time.Time `json:"createdAt"`
}
