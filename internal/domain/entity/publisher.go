package entity

import "time"

// Publisher representa una editorial. El nombre es único.
type Publisher struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
