package model

import "time"

// Cliente is a customer of the distribution business.
type Cliente struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Nombre    string    `gorm:"index;not null" json:"nombre"`
	Telefono  string    `json:"telefono"`
	Direccion string    `json:"direccion"`
	Activo    bool      `gorm:"not null;default:true" json:"activo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
