package domain

import "time"

// User es la identidad persistida; este servicio solo la consulta.
type User struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	CompanyID int64      `json:"company_id"`
	Deleted   bool       `json:"deleted"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
