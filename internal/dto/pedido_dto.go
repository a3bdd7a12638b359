package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemPedidoRequest is the canonical line-item shape every request normalizes
// into before it reaches the services.
type ItemPedidoRequest struct {
	ProductoID int64           `json:"producto_id" validate:"required,gt=0"`
	Cantidad   decimal.Decimal `json:"cantidad" validate:"required"`
	Tipo       string          `json:"tipo"`
}

// ClienteInlineRequest lets a pedido be created against a brand-new customer
// embedded in the request instead of an existing cliente_id.
type ClienteInlineRequest struct {
	Nombre    string `json:"nombre" validate:"required"`
	Telefono  string `json:"telefono"`
	Direccion string `json:"direccion"`
}

// CrearPedidoRequest accepts the two shapes old and new clients send:
// a "productos" list (current) or a legacy "items" list. Both normalize to
// the same internal representation via Normalizar; business logic never
// branches on the shape.
type CrearPedidoRequest struct {
	ClienteID *int64                `json:"cliente_id"`
	Cliente   *ClienteInlineRequest `json:"cliente"`
	Productos []ItemPedidoRequest   `json:"productos"`
	Items     []ItemPedidoRequest   `json:"items"` // legacy shape
	Notas     string                `json:"notas"`
}

// Normalizar returns the canonical item list. The current "productos" shape
// wins when both are present.
func (r *CrearPedidoRequest) Normalizar() []ItemPedidoRequest {
	items := r.Productos
	if len(items) == 0 {
		items = r.Items
	}
	out := make([]ItemPedidoRequest, 0, len(items))
	for _, it := range items {
		if it.Tipo == "" {
			it.Tipo = "unidad"
		}
		out = append(out, it)
	}
	return out
}

type CambiarEstadoRequest struct {
	Estado     string  `json:"estado" validate:"required"`
	Repartidor *string `json:"repartidor"`
}

type ActualizarNotasRequest struct {
	Notas string `json:"notas"`
}

type ReasignarClienteRequest struct {
	ClienteID int64 `json:"cliente_id" validate:"required,gt=0"`
}

type AgregarItemRequest struct {
	ProductoID int64           `json:"producto_id" validate:"required,gt=0"`
	Cantidad   decimal.Decimal `json:"cantidad" validate:"required"`
	Tipo       string          `json:"tipo"`
}

type ActualizarItemRequest struct {
	Cantidad decimal.Decimal `json:"cantidad" validate:"required"`
	Tipo     string          `json:"tipo"`
}

// BulkPedidosRequest carries the id list for bulk delete / document
// generation. Limits and dedup are enforced by the bulk service.
type BulkPedidosRequest struct {
	PedidoIDs []int64 `json:"pedido_ids" validate:"required"`
}

// BulkDeleteResponse reports how many distinct pedidos were removed.
type BulkDeleteResponse struct {
	Eliminados int      `json:"eliminados"`
	Errores    []string `json:"errores"`
}

// BulkDocumentosResponse reports how many pedidos were marked processed.
type BulkDocumentosResponse struct {
	Procesados int      `json:"procesados"`
	Errores    []string `json:"errores"`
}

// ── Responses ────────────────────────────────────────────────────────────────

type ItemPedidoResponse struct {
	ProductoID int64           `json:"producto_id"`
	Producto   string          `json:"producto"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	Tipo       string          `json:"tipo"`
}

type PedidoResponse struct {
	ID          int64                `json:"id"`
	ClienteID   int64                `json:"cliente_id"`
	Cliente     string               `json:"cliente"`
	Estado      string               `json:"estado"`
	Repartidor  *string              `json:"repartidor"`
	Notas       string               `json:"notas"`
	CreadoPor   string               `json:"creado_por"`
	PDFGenerado bool                 `json:"pdf_generado"`
	Productos   []ItemPedidoResponse `json:"productos"`
	Fecha       time.Time            `json:"fecha"`
}

type PedidoListResponse struct {
	Data  []PedidoResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// PedidoFilter narrows pedido listings. CreadoPor is set by the query layer
// for vendedor-scoped visibility, never by the client.
type PedidoFilter struct {
	Estado    string `form:"estado"`
	ClienteID int64  `form:"cliente_id"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	CreadoPor string `form:"-"`
}
