package domain

import "time"

// Session representa un login. Deleted marca la invalidacion (soft-delete).
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	LoginTime time.Time `json:"login_time"`
	Deleted   bool      `json:"deleted"`
}
