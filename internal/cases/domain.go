// Package cases implements CRUD for legal cases, the root entity every
// other case-management record hangs off.
package cases

import "time"

// Case statuses. New cases open; there is no enforced transition order.
const (
	StatusOpen     = "open"
	StatusArchived = "archived"
	StatusClosed   = "closed"
)

// Case is a legal matter owned by a single user.
type Case struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
