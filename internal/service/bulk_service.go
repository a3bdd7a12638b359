package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mauropillox/chorilocal-sub000/internal/apierror"
	"github.com/mauropillox/chorilocal-sub000/internal/dto"
	"github.com/mauropillox/chorilocal-sub000/internal/model"
	"github.com/mauropillox/chorilocal-sub000/internal/repository"
	"github.com/mauropillox/chorilocal-sub000/internal/worker"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxBulkPedidos caps how many order ids one bulk request may carry.
const MaxBulkPedidos = 100

// BulkService executes multi-order operations as all-or-nothing units.
// Existence validation and mutation are split so a partial result can never
// occur: either every requested pedido is affected or none is.
type BulkService interface {
	// EliminarPedidos deletes many pedidos (items first, then headers) in one
	// transaction. Returns how many distinct pedidos were removed.
	EliminarPedidos(ctx context.Context, actor Actor, ids []int64) (*dto.BulkDeleteResponse, error)
	// GenerarDocumentos marks pedidos as document-generated and decrements
	// stock for every referenced line item, all inside one transaction, then
	// enqueues best-effort remito rendering per pedido.
	GenerarDocumentos(ctx context.Context, actor Actor, ids []int64) (*dto.BulkDocumentosResponse, error)
}

type bulkService struct {
	pedidos    repository.PedidoRepository
	productos  repository.ProductoRepository
	dispatcher *worker.Dispatcher
}

func NewBulkService(
	pedidos repository.PedidoRepository,
	productos repository.ProductoRepository,
	dispatcher *worker.Dispatcher,
) BulkService {
	return &bulkService{pedidos: pedidos, productos: productos, dispatcher: dispatcher}
}

// normalizarIDs validates the raw id list and deduplicates it preserving
// first-occurrence order.
func normalizarIDs(ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, apierror.Validationf("La lista de pedidos no puede estar vacia")
	}
	if len(ids) > MaxBulkPedidos {
		return nil, apierror.Validationf("Maximo %d pedidos por operacion", MaxBulkPedidos)
	}
	vistos := make(map[int64]bool, len(ids))
	unicos := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, apierror.Validationf("pedido_id invalido: %d", id)
		}
		if vistos[id] {
			continue
		}
		vistos[id] = true
		unicos = append(unicos, id)
	}
	return unicos, nil
}

// verificarExistencia loads the requested pedidos and fails with NotFound
// naming every missing id. Called before any mutation.
func (s *bulkService) verificarExistencia(ctx context.Context, ids []int64) ([]model.Pedido, error) {
	pedidos, err := s.pedidos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apierror.Unexpected(err)
	}
	if len(pedidos) == len(ids) {
		return pedidos, nil
	}

	encontrados := make(map[int64]bool, len(pedidos))
	for _, p := range pedidos {
		encontrados[p.ID] = true
	}
	var faltantes []string
	for _, id := range ids {
		if !encontrados[id] {
			faltantes = append(faltantes, strconv.FormatInt(id, 10))
		}
	}
	return nil, apierror.NotFoundf("Pedidos no encontrados: %s", strings.Join(faltantes, ", "))
}

func (s *bulkService) EliminarPedidos(ctx context.Context, actor Actor, ids []int64) (*dto.BulkDeleteResponse, error) {
	unicos, err := normalizarIDs(ids)
	if err != nil {
		return nil, err
	}
	pedidos, err := s.verificarExistencia(ctx, unicos)
	if err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.pedidos.DB(), func(tx *gorm.DB) error {
		return s.pedidos.DeleteManyTx(tx, unicos)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Audit after commit: an audit failure must never roll back an already
	// committed deletion.
	for i := range pedidos {
		p := &pedidos[i]
		s.dispatcher.EnqueueAuditoria(ctx, worker.AuditoriaPayload{
			Usuario:    actor.Username,
			Accion:     "eliminar_masivo",
			Tabla:      "pedidos",
			RegistroID: strconv.FormatInt(p.ID, 10),
			DatosAntes: fmt.Sprintf(`{"cliente_id":%d,"estado":%q}`, p.ClienteID, p.Estado),
		})
	}

	return &dto.BulkDeleteResponse{Eliminados: len(unicos), Errores: []string{}}, nil
}

func (s *bulkService) GenerarDocumentos(ctx context.Context, actor Actor, ids []int64) (*dto.BulkDocumentosResponse, error) {
	unicos, err := normalizarIDs(ids)
	if err != nil {
		return nil, err
	}
	pedidos, err := s.verificarExistencia(ctx, unicos)
	if err != nil {
		return nil, err
	}

	// Total quantity requested per product across every line item.
	totales := make(map[int64]decimal.Decimal)
	var orden []int64
	for _, p := range pedidos {
		for _, item := range p.Items {
			if _, ok := totales[item.ProductoID]; !ok {
				orden = append(orden, item.ProductoID)
			}
			totales[item.ProductoID] = totales[item.ProductoID].Add(item.Cantidad)
		}
	}

	var bajos []*model.Producto
	txErr := runTx(ctx, s.pedidos.DB(), func(tx *gorm.DB) error {
		// The stock decrement shares the transaction with the order marking:
		// a crash between the two is impossible by construction.
		productos, err := s.productos.FindByIDsTx(tx, orden)
		if err != nil {
			return apierror.Unexpected(err)
		}
		porID := make(map[int64]*model.Producto, len(productos))
		for i := range productos {
			porID[productos[i].ID] = &productos[i]
		}

		bajos = bajos[:0]
		for _, id := range orden {
			p, ok := porID[id]
			if !ok {
				return apierror.NotFoundf("Producto %d no encontrado", id)
			}
			nuevo := p.Stock.Sub(totales[id])
			if nuevo.IsNegative() {
				nuevo = decimal.Zero
			}
			if err := s.productos.SetStockTx(tx, id, nuevo); err != nil {
				return apierror.Unexpected(err)
			}
			p.Stock = nuevo
			if p.BajoMinimo() {
				bajos = append(bajos, p)
			}
		}
		return s.pedidos.MarkPDFGeneradoTx(tx, unicos)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Post-commit, best-effort: remito rendering, audit trail, stock alerts.
	for _, id := range unicos {
		s.dispatcher.EnqueueRemito(ctx, worker.RemitoPayload{PedidoID: id})
		s.dispatcher.EnqueueAuditoria(ctx, worker.AuditoriaPayload{
			Usuario:    actor.Username,
			Accion:     "generar_documentos",
			Tabla:      "pedidos",
			RegistroID: strconv.FormatInt(id, 10),
		})
	}
	for _, p := range bajos {
		s.dispatcher.EnqueueAlertaStock(ctx, worker.AlertaStockPayload{
			ProductoID:  p.ID,
			Nombre:      p.Nombre,
			Stock:       p.Stock.String(),
			StockMinimo: p.StockMinimo.String(),
		})
	}

	return &dto.BulkDocumentosResponse{Procesados: len(unicos), Errores: []string{}}, nil
}
