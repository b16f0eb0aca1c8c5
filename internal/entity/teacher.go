package entity

// Teacher is a staff member leads get assigned to. Owned elsewhere; this
// core only reads it for assignment checks and notifications.
type Teacher struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
