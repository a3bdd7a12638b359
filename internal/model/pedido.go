package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados of a pedido. The happy path is pendiente → preparando → entregado;
// cancelado is reachable from any non-terminal state.
//
// "confirmado" and "enviado" are legacy aliases still sent by old clients:
// they are accepted as valid targets and round-trip unchanged, but new logic
// never produces them. Anything else (including retired intermediate names
// like "listo" or "en_camino") is rejected.
const (
	EstadoPendiente  = "pendiente"
	EstadoPreparando = "preparando"
	EstadoEntregado  = "entregado"
	EstadoCancelado  = "cancelado"

	// Legacy aliases — accepted, never produced.
	EstadoConfirmado = "confirmado"
	EstadoEnviado    = "enviado"
)

var estadosValidos = map[string]bool{
	EstadoPendiente:  true,
	EstadoPreparando: true,
	EstadoEntregado:  true,
	EstadoCancelado:  true,
	EstadoConfirmado: true,
	EstadoEnviado:    true,
}

// EstadoValido reports whether s is a recognized pedido estado, legacy
// aliases included.
func EstadoValido(s string) bool { return estadosValidos[s] }

// EstadoTerminal reports whether no further transitions are expected from s.
func EstadoTerminal(s string) bool {
	return s == EstadoEntregado || s == EstadoCancelado
}

// Pedido is a customer order: a header plus its line items. Items are owned
// and removed together with the header.
type Pedido struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ClienteID int64  `gorm:"not null;index" json:"cliente_id"`
	Estado    string `gorm:"not null;default:'pendiente';index" json:"estado"`
	// Repartidor is the courier assigned for delivery, if any.
	Repartidor *string `json:"repartidor"`
	Notas      string  `json:"notas"`
	CreadoPor  string  `gorm:"index" json:"creado_por"`
	// PDFGenerado marks that delivery documents were generated for this order.
	PDFGenerado bool      `gorm:"not null;default:false" json:"pdf_generado"`
	CreatedAt   time.Time `json:"fecha"`
	UpdatedAt   time.Time `json:"-"`

	Cliente *Cliente     `gorm:"foreignKey:ClienteID" json:"cliente,omitempty"`
	Items   []PedidoItem `gorm:"foreignKey:PedidoID" json:"productos"`
}

// PedidoItem is one (producto, cantidad, tipo) line of a pedido. A pedido has
// at most one line per product; adding the same product again merges
// quantities instead of duplicating the row.
type PedidoItem struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"-"`
	PedidoID   int64           `gorm:"not null;uniqueIndex:idx_pedido_producto" json:"-"`
	ProductoID int64           `gorm:"not null;uniqueIndex:idx_pedido_producto" json:"producto_id"`
	Cantidad   decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"cantidad"`
	Tipo       string          `gorm:"not null;default:'unidad'" json:"tipo"`

	Producto *Producto `gorm:"foreignKey:ProductoID" json:"producto,omitempty"`
}

// TableName overrides GORM's default pluralization (pedido_items → pedido_items
// is fine, but keep the legacy singular-style name used by the front end).
func (PedidoItem) TableName() string { return "pedido_items" }
