package service

import (
	"context"
	"sort"

	"github.com/mauropillox/chorilocal-sub000/internal/apierror"
	"github.com/mauropillox/chorilocal-sub000/internal/dto"
	"github.com/mauropillox/chorilocal-sub000/internal/model"
	"github.com/mauropillox/chorilocal-sub000/internal/repository"
	"github.com/mauropillox/chorilocal-sub000/internal/worker"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockService is the stock ledger: the only writer of the stock column.
type StockService interface {
	// Ajustar applies a single-product adjustment. Delta mode clamps at zero;
	// absolute mode writes the requested value verbatim (legacy last-write-wins,
	// may go negative — callers asked for exactly that value).
	Ajustar(ctx context.Context, id int64, req dto.AjustarStockRequest) (*dto.ProductoResponse, error)
	// AjusteMasivo adjusts many products as one all-or-nothing transaction.
	AjusteMasivo(ctx context.Context, req dto.BatchStockRequest) (*dto.BatchStockResponse, error)
	// PreviewImpacto computes stock-after-fulfillment for every product
	// referenced by the candidate pedidos, without mutating anything.
	PreviewImpacto(ctx context.Context, pedidoIDs []int64) ([]dto.PreviewStockItem, error)
}

type stockService struct {
	productos  repository.ProductoRepository
	pedidos    repository.PedidoRepository
	dispatcher *worker.Dispatcher
}

func NewStockService(
	productos repository.ProductoRepository,
	pedidos repository.PedidoRepository,
	dispatcher *worker.Dispatcher,
) StockService {
	return &stockService{productos: productos, pedidos: pedidos, dispatcher: dispatcher}
}

func (s *stockService) Ajustar(ctx context.Context, id int64, req dto.AjustarStockRequest) (*dto.ProductoResponse, error) {
	if (req.Delta == nil) == (req.Stock == nil) {
		return nil, apierror.Validationf("Debe indicar exactamente uno de 'delta' o 'stock'")
	}

	var actualizado *model.Producto
	err := runTx(ctx, s.productos.DB(), func(tx *gorm.DB) error {
		p, err := s.productos.FindByIDTx(tx, id)
		if err != nil {
			return mapNotFound(err, "Producto %d no encontrado", id)
		}

		var nuevo decimal.Decimal
		if req.Delta != nil {
			nuevo = p.Stock.Add(*req.Delta)
			if nuevo.IsNegative() {
				nuevo = decimal.Zero
			}
		} else {
			nuevo = *req.Stock
		}

		if err := s.productos.SetStockTx(tx, id, nuevo); err != nil {
			return apierror.Unexpected(err)
		}
		p.Stock = nuevo
		actualizado = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.alertarSiBajoMinimo(ctx, actualizado)
	return productoToResponse(actualizado), nil
}

func (s *stockService) AjusteMasivo(ctx context.Context, req dto.BatchStockRequest) (*dto.BatchStockResponse, error) {
	if len(req.Items) == 0 {
		return nil, apierror.Validationf("La lista de items no puede estar vacia")
	}
	if req.Operacion != dto.OperacionSubtract && req.Operacion != dto.OperacionSet {
		return nil, apierror.Validationf("Operacion desconocida: %q", req.Operacion)
	}

	ids := make([]int64, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductoID <= 0 {
			return nil, apierror.Validationf("producto_id invalido: %d", item.ProductoID)
		}
		ids = append(ids, item.ProductoID)
	}

	var bajos []*model.Producto
	count := 0
	err := runTx(ctx, s.productos.DB(), func(tx *gorm.DB) error {
		productos, err := s.productos.FindByIDsTx(tx, ids)
		if err != nil {
			return apierror.Unexpected(err)
		}
		porID := make(map[int64]*model.Producto, len(productos))
		for i := range productos {
			porID[productos[i].ID] = &productos[i]
		}

		// Existence validation happens for the whole batch before any write,
		// so a missing id rolls back with no row modified.
		for _, item := range req.Items {
			if _, ok := porID[item.ProductoID]; !ok {
				return apierror.NotFoundf("Producto %d no encontrado", item.ProductoID)
			}
		}

		tocados := make(map[int64]bool, len(req.Items))
		for _, item := range req.Items {
			p := porID[item.ProductoID]
			switch req.Operacion {
			case dto.OperacionSubtract:
				// Clamped independently per product; duplicates in the batch
				// apply against the running value.
				p.Stock = p.Stock.Sub(item.Cantidad)
				if p.Stock.IsNegative() {
					p.Stock = decimal.Zero
				}
			case dto.OperacionSet:
				p.Stock = item.Cantidad
			}
			tocados[p.ID] = true
		}

		bajos = bajos[:0]
		for id := range tocados {
			p := porID[id]
			if err := s.productos.SetStockTx(tx, id, p.Stock); err != nil {
				return apierror.Unexpected(err)
			}
			if req.Operacion == dto.OperacionSubtract && p.BajoMinimo() {
				bajos = append(bajos, p)
			}
		}
		count = len(tocados)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, p := range bajos {
		s.alertarSiBajoMinimo(ctx, p)
	}
	return &dto.BatchStockResponse{OK: true, Count: count}, nil
}

func (s *stockService) PreviewImpacto(ctx context.Context, pedidoIDs []int64) ([]dto.PreviewStockItem, error) {
	if len(pedidoIDs) == 0 {
		return nil, apierror.Validationf("La lista de pedidos no puede estar vacia")
	}

	pedidos, err := s.pedidos.FindByIDs(ctx, pedidoIDs)
	if err != nil {
		return nil, apierror.Unexpected(err)
	}

	// Aggregate requested quantities per product across every line item.
	totales := make(map[int64]decimal.Decimal)
	for _, p := range pedidos {
		for _, item := range p.Items {
			totales[item.ProductoID] = totales[item.ProductoID].Add(item.Cantidad)
		}
	}
	if len(totales) == 0 {
		return []dto.PreviewStockItem{}, nil
	}

	ids := make([]int64, 0, len(totales))
	for id := range totales {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	productos, err := s.productos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apierror.Unexpected(err)
	}
	porID := make(map[int64]*model.Producto, len(productos))
	for i := range productos {
		porID[productos[i].ID] = &productos[i]
	}

	preview := make([]dto.PreviewStockItem, 0, len(ids))
	for _, id := range ids {
		p, ok := porID[id]
		if !ok {
			continue
		}
		pedido := totales[id]
		despues := p.Stock.Sub(pedido)
		insuficiente := despues.IsNegative()
		if insuficiente {
			// Fulfillment clamps at zero, show what would actually remain.
			despues = decimal.Zero
		}
		preview = append(preview, dto.PreviewStockItem{
			ProductoID:   id,
			Nombre:       p.Nombre,
			Antes:        p.Stock,
			Despues:      despues,
			Insuficiente: insuficiente,
		})
	}
	return preview, nil
}

// alertarSiBajoMinimo fires a best-effort low-stock alert job. Never fails
// the operation that depleted the stock.
func (s *stockService) alertarSiBajoMinimo(ctx context.Context, p *model.Producto) {
	if p == nil || !p.BajoMinimo() {
		return
	}
	s.dispatcher.EnqueueAlertaStock(ctx, worker.AlertaStockPayload{
		ProductoID:  p.ID,
		Nombre:      p.Nombre,
		Stock:       p.Stock.String(),
		StockMinimo: p.StockMinimo.String(),
	})
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:          p.ID,
		Nombre:      p.Nombre,
		Precio:      p.Precio,
		Stock:       p.Stock,
		StockMinimo: p.StockMinimo,
		StockTipo:   p.StockTipo,
		Activo:      p.Activo,
	}
}
