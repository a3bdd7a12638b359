package model

import "time"

// Auditoria is an immutable audit trail record. Rows are written only by the
// async audit worker, after the business transaction they describe has
// committed; the core never reads, mutates or deletes them.
type Auditoria struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Usuario    string `gorm:"index" json:"usuario"`
	Accion     string `gorm:"not null" json:"accion"` // "crear" | "editar" | "eliminar" | ...
	Tabla      string `gorm:"index;not null" json:"tabla"`
	RegistroID string `json:"registro_id"`
	// Before/after snapshots, serialized JSON. Either may be empty.
	DatosAntes   string    `json:"datos_antes"`
	DatosDespues string    `json:"datos_despues"`
	Origen       string    `json:"origen"` // request origin (IP / request id)
	CreatedAt    time.Time `json:"fecha"`
}

func (Auditoria) TableName() string { return "auditoria" }
