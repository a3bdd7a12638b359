package dto

import "github.com/shopspring/decimal"

type CrearProductoRequest struct {
	Nombre      string          `json:"nombre" validate:"required"`
	Precio      decimal.Decimal `json:"precio" validate:"required,min=0"`
	Stock       decimal.Decimal `json:"stock"`
	StockMinimo decimal.Decimal `json:"stock_minimo"`
	StockTipo   string          `json:"stock_tipo" validate:"omitempty,oneof=unidad kg"`
}

type ActualizarProductoRequest struct {
	Nombre      string           `json:"nombre"`
	Precio      *decimal.Decimal `json:"precio" validate:"omitempty,min=0"`
	StockMinimo *decimal.Decimal `json:"stock_minimo"`
	StockTipo   string           `json:"stock_tipo" validate:"omitempty,oneof=unidad kg"`
}

// AjustarStockRequest carries exactly one of the two adjustment modes:
//   - Delta: relative change, clamped at zero. Preferred — safe under
//     concurrency since the caller needs no prior snapshot.
//   - Stock: absolute set, last-write-wins, unchecked (may go negative).
//     Legacy mode kept for old clients.
type AjustarStockRequest struct {
	Delta *decimal.Decimal `json:"delta"`
	Stock *decimal.Decimal `json:"stock"`
}

type ProductoResponse struct {
	ID          int64           `json:"id"`
	Nombre      string          `json:"nombre"`
	Precio      decimal.Decimal `json:"precio"`
	Stock       decimal.Decimal `json:"stock"`
	StockMinimo decimal.Decimal `json:"stock_minimo"`
	StockTipo   string          `json:"stock_tipo"`
	Activo      bool            `json:"activo"`
}

type ProductoFilter struct {
	Nombre string `form:"nombre"`
	Activo string `form:"activo"` // "false" | "all" | default activos
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// ── Batch stock ──────────────────────────────────────────────────────────────

// Batch operations supported by the stock ledger.
const (
	OperacionSubtract = "subtract"
	OperacionSet      = "set"
)

type BatchStockItem struct {
	ProductoID int64           `json:"producto_id" validate:"required,gt=0"`
	Cantidad   decimal.Decimal `json:"cantidad" validate:"required"`
}

type BatchStockRequest struct {
	Items     []BatchStockItem `json:"items" validate:"required,min=1,dive"`
	Operacion string           `json:"operacion" validate:"required,oneof=subtract set"`
}

// BatchStockResponse is the success envelope of a batch adjustment. A caller
// receiving anything other than OK=true must treat the batch as not applied.
type BatchStockResponse struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
}

// PreviewStockItem describes the stock-after-fulfillment of one product if a
// set of candidate pedidos were all fulfilled. Read-only, used to warn before
// a depleting operation.
type PreviewStockItem struct {
	ProductoID   int64           `json:"producto_id"`
	Nombre       string          `json:"nombre"`
	Antes        decimal.Decimal `json:"antes"`
	Despues      decimal.Decimal `json:"despues"`
	Insuficiente bool            `json:"insuficiente"`
}
