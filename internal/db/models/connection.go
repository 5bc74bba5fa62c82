package models

import "time"

// Connection stores one user's OAuth grant to Atlassian Cloud.
// A user may accumulate historical rows; at most one is active at a time.
type Connection struct {
	ID                 string `gorm:"primaryKey"` // UUID
	UserID             string `gorm:"index"`
	AtlassianAccountID string
	AccessToken        string
	RefreshToken       string
	TokenExpiresAt     time.Time
	Scopes             string // space-separated, as issued by the token endpoint
	IsActive           bool   `gorm:"default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ConnectionView is the outward shape of a Connection. Token material is
// deliberately absent.
type ConnectionView struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	AtlassianAccountID string    `json:"atlassian_account_id"`
	Scopes             string    `json:"scopes"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// View returns the token-free representation of c.
func (c *Connection) View() ConnectionView {
	return ConnectionView{
		ID:                 c.ID,
		UserID:             c.UserID,
		AtlassianAccountID: c.AtlassianAccountID,
		Scopes:             c.Scopes,
		IsActive:           c.IsActive,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
