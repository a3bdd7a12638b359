package model

import "time"

// TokenRevocado is one entry of the session revocation list: a JWT invalidated
// before its natural expiry (logout, account deactivation). Entries are
// append-only until ExpiresAt passes; a periodic sweep removes expired rows
// since the token itself can no longer be presented as valid anyway.
type TokenRevocado struct {
	JTI       string    `gorm:"primaryKey" json:"jti"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	RevokedAt time.Time `gorm:"not null" json:"revoked_at"`
	Username  string    `json:"username"`
}

// TableName keeps the legacy table name used by the front end's session tools.
func (TokenRevocado) TableName() string { return "tokens_revocados" }
