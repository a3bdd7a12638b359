package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto is an item of the shared distribution inventory. Stock may be
// counted in discrete units or weighed (StockTipo), so it is a decimal.
// Stock is mutated exclusively through the stock ledger operations; a product
// referenced by any pedido item is never hard-deleted, only deactivated.
type Producto struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Nombre string `gorm:"index;not null" json:"nombre"`
	Precio decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"precio"`
	Stock  decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"stock"`
	// StockMinimo is an advisory reorder threshold, not an enforced floor.
	StockMinimo decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"stock_minimo"`
	StockTipo   string          `gorm:"not null;default:'unidad'" json:"stock_tipo"` // "unidad" | "kg"
	Activo      bool            `gorm:"not null;default:true" json:"activo"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BajoMinimo reports whether the product is at or below its reorder threshold.
func (p *Producto) BajoMinimo() bool {
	return p.Stock.LessThanOrEqual(p.StockMinimo)
}
