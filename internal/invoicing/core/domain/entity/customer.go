package entity

import "time"

// Customer is immutable after creation: there is no update or delete
// operation in the current scope.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Address   string
	CreatedAt time.Time
}
