package domain

import "time"

// ValetRole distinguishes dashboard roles.
type ValetRole string

const (
	RoleAdmin   ValetRole = "ADMIN"
	RoleManager ValetRole = "MANAGER"
	RoleValet   ValetRole = "VALET"
)

// Valet is a staff member who registers vehicles. The valet's assigned price
// level selects the applicable rates for vehicles they check in.
type Valet struct {
	ID         string
	Name       string
	Phone      string
	Role       ValetRole
	PriceLevel string
	CreatedAt  time.Time
}
