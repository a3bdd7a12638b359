package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mauropillox/chorilocal-sub000/internal/apierror"
	"github.com/mauropillox/chorilocal-sub000/internal/dto"
	"github.com/mauropillox/chorilocal-sub000/internal/events"
	"github.com/mauropillox/chorilocal-sub000/internal/model"
	"github.com/mauropillox/chorilocal-sub000/internal/repository"
	"github.com/mauropillox/chorilocal-sub000/internal/worker"

	"gorm.io/gorm"
)

// PedidoService owns the order aggregate (header + line items) and the order
// state machine. Status changes never touch stock: depleting stock is a
// separate caller-orchestrated step (see BulkService.GenerarDocumentos).
type PedidoService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error)
	ObtenerPorID(ctx context.Context, actor Actor, id int64) (*dto.PedidoResponse, error)
	Listar(ctx context.Context, actor Actor, filter dto.PedidoFilter) (*dto.PedidoListResponse, error)
	CambiarEstado(ctx context.Context, actor Actor, id int64, req dto.CambiarEstadoRequest) (*dto.PedidoResponse, error)
	ActualizarNotas(ctx context.Context, actor Actor, id int64, notas string) (*dto.PedidoResponse, error)
	ReasignarCliente(ctx context.Context, actor Actor, id, clienteID int64) (*dto.PedidoResponse, error)
	AgregarItem(ctx context.Context, actor Actor, pedidoID int64, req dto.AgregarItemRequest) error
	ActualizarItem(ctx context.Context, actor Actor, pedidoID, productoID int64, req dto.ActualizarItemRequest) error
	QuitarItem(ctx context.Context, actor Actor, pedidoID, productoID int64) error
	Eliminar(ctx context.Context, actor Actor, id int64) error
}

type pedidoService struct {
	repo        repository.PedidoRepository
	productos   repository.ProductoRepository
	clientes    repository.ClienteRepository
	dispatcher  *worker.Dispatcher
	broadcaster *events.Broadcaster
}

func NewPedidoService(
	repo repository.PedidoRepository,
	productos repository.ProductoRepository,
	clientes repository.ClienteRepository,
	dispatcher *worker.Dispatcher,
	broadcaster *events.Broadcaster,
) PedidoService {
	return &pedidoService{
		repo:        repo,
		productos:   productos,
		clientes:    clientes,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
	}
}

// cargarPedido fetches a pedido applying the actor's visibility: a vendedor
// only reaches pedidos they created. A pedido outside the actor's scope is
// indistinguishable from a missing one.
func (s *pedidoService) cargarPedido(ctx context.Context, actor Actor, id int64) (*model.Pedido, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "Pedido %d no encontrado", id)
	}
	if !actor.VeTodo() && p.CreadoPor != actor.Username {
		return nil, apierror.NotFoundf("Pedido %d no encontrado", id)
	}
	return p, nil
}

func (s *pedidoService) Crear(ctx context.Context, actor Actor, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error) {
	items := req.Normalizar()
	if len(items) == 0 {
		return nil, apierror.Validationf("El pedido debe incluir al menos un producto")
	}
	if req.ClienteID == nil && req.Cliente == nil {
		return nil, apierror.Validationf("Debe indicar cliente_id o un cliente nuevo")
	}

	// Merge duplicate product lines up front; a pedido holds one row per product.
	porProducto := make(map[int64]int)
	fusionados := make([]dto.ItemPedidoRequest, 0, len(items))
	for _, it := range items {
		if it.ProductoID <= 0 {
			return nil, apierror.Validationf("producto_id invalido: %d", it.ProductoID)
		}
		if !it.Cantidad.IsPositive() {
			return nil, apierror.Validationf("La cantidad del producto %d debe ser mayor a cero", it.ProductoID)
		}
		if idx, ok := porProducto[it.ProductoID]; ok {
			fusionados[idx].Cantidad = fusionados[idx].Cantidad.Add(it.Cantidad)
			continue
		}
		porProducto[it.ProductoID] = len(fusionados)
		fusionados = append(fusionados, it)
	}

	// Pre-flight: every referenced product must exist.
	ids := make([]int64, 0, len(fusionados))
	for _, it := range fusionados {
		ids = append(ids, it.ProductoID)
	}
	productos, err := s.productos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apierror.Unexpected(err)
	}
	existentes := make(map[int64]bool, len(productos))
	for _, p := range productos {
		existentes[p.ID] = true
	}
	for _, it := range fusionados {
		if !existentes[it.ProductoID] {
			return nil, apierror.NotFoundf("Producto %d no encontrado", it.ProductoID)
		}
	}

	var clienteID int64
	if req.ClienteID != nil {
		if _, err := s.clientes.FindByID(ctx, *req.ClienteID); err != nil {
			return nil, mapNotFound(err, "Cliente %d no encontrado", *req.ClienteID)
		}
		clienteID = *req.ClienteID
	}

	pedido := &model.Pedido{
		Estado:    model.EstadoPendiente,
		Notas:     req.Notas,
		CreadoPor: actor.Username,
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if req.ClienteID == nil {
			nuevo := &model.Cliente{
				Nombre:    req.Cliente.Nombre,
				Telefono:  req.Cliente.Telefono,
				Direccion: req.Cliente.Direccion,
				Activo:    true,
			}
			if err := s.clientes.CreateTx(tx, nuevo); err != nil {
				return apierror.Unexpected(err)
			}
			clienteID = nuevo.ID
		}
		pedido.ClienteID = clienteID
		pedido.Items = pedido.Items[:0]
		for _, it := range fusionados {
			pedido.Items = append(pedido.Items, model.PedidoItem{
				ProductoID: it.ProductoID,
				Cantidad:   it.Cantidad,
				Tipo:       it.Tipo,
			})
		}
		return s.repo.CreateTx(tx, pedido)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditar(ctx, actor, "crear", pedido.ID, nil, pedido)
	return pedidoToResponse(pedido), nil
}

func (s *pedidoService) ObtenerPorID(ctx context.Context, actor Actor, id int64) (*dto.PedidoResponse, error) {
	p, err := s.cargarPedido(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return pedidoToResponse(p), nil
}

func (s *pedidoService) Listar(ctx context.Context, actor Actor, filter dto.PedidoFilter) (*dto.PedidoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if !actor.VeTodo() {
		filter.CreadoPor = actor.Username
	}

	pedidos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Unexpected(err)
	}
	data := make([]dto.PedidoResponse, 0, len(pedidos))
	for i := range pedidos {
		data = append(data, *pedidoToResponse(&pedidos[i]))
	}
	return &dto.PedidoListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *pedidoService) CambiarEstado(ctx context.Context, actor Actor, id int64, req dto.CambiarEstadoRequest) (*dto.PedidoResponse, error) {
	// Obsolete values (old intermediate names like "listo") are rejected
	// explicitly, never silently accepted, whatever the current state is.
	if !model.EstadoValido(req.Estado) {
		return nil, apierror.InvalidStatef("Estado desconocido: %q", req.Estado)
	}

	pedido, err := s.cargarPedido(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	antes := pedido.Estado
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpdateEstadoTx(tx, id, req.Estado, req.Repartidor)
	})
	if txErr != nil {
		return nil, txErr
	}

	pedido.Estado = req.Estado
	if req.Repartidor != nil {
		pedido.Repartidor = req.Repartidor
	}

	// Best-effort fan-out after commit: a dead listener never undoes a
	// committed transition.
	s.broadcaster.Publish(events.PedidoEvent{
		PedidoID:   pedido.ID,
		Estado:     pedido.Estado,
		Repartidor: pedido.Repartidor,
		Actor:      actor.Username,
	})
	s.auditar(ctx, actor, "cambiar_estado", pedido.ID,
		map[string]string{"estado": antes},
		map[string]string{"estado": pedido.Estado})

	return pedidoToResponse(pedido), nil
}

func (s *pedidoService) ActualizarNotas(ctx context.Context, actor Actor, id int64, notas string) (*dto.PedidoResponse, error) {
	pedido, err := s.cargarPedido(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	pedido.Notas = notas
	if err := s.repo.Save(ctx, pedido); err != nil {
		return nil, apierror.Unexpected(err)
	}
	return pedidoToResponse(pedido), nil
}

func (s *pedidoService) ReasignarCliente(ctx context.Context, actor Actor, id, clienteID int64) (*dto.PedidoResponse, error) {
	pedido, err := s.cargarPedido(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	cliente, err := s.clientes.FindByID(ctx, clienteID)
	if err != nil {
		return nil, mapNotFound(err, "Cliente %d no encontrado", clienteID)
	}
	pedido.ClienteID = clienteID
	pedido.Cliente = cliente
	if err := s.repo.Save(ctx, pedido); err != nil {
		return nil, apierror.Unexpected(err)
	}
	return pedidoToResponse(pedido), nil
}

func (s *pedidoService) AgregarItem(ctx context.Context, actor Actor, pedidoID int64, req dto.AgregarItemRequest) error {
	if !req.Cantidad.IsPositive() {
		return apierror.Validationf("La cantidad debe ser mayor a cero")
	}
	pedido, err := s.cargarPedido(ctx, actor, pedidoID)
	if err != nil {
		return err
	}
	if _, err := s.productos.FindByID(ctx, req.ProductoID); err != nil {
		return mapNotFound(err, "Producto %d no encontrado", req.ProductoID)
	}

	tipo := req.Tipo
	if tipo == "" {
		tipo = "unidad"
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// The lookup must share the transaction: two concurrent adds of the
		// same producto would otherwise both pick the insert branch and one
		// of them would die on the unique index instead of merging.
		existente, err := s.repo.FindItemTx(tx, pedido.ID, req.ProductoID)
		switch {
		case err == nil:
			// Same (pedido, producto) pair: quantities merge, no duplicate row.
			existente.Cantidad = existente.Cantidad.Add(req.Cantidad)
			return s.repo.SaveItemTx(tx, existente)
		case isNotFound(err):
			return s.repo.CreateItemTx(tx, &model.PedidoItem{
				PedidoID:   pedido.ID,
				ProductoID: req.ProductoID,
				Cantidad:   req.Cantidad,
				Tipo:       tipo,
			})
		default:
			return apierror.Unexpected(err)
		}
	})
}

func (s *pedidoService) ActualizarItem(ctx context.Context, actor Actor, pedidoID, productoID int64, req dto.ActualizarItemRequest) error {
	if !req.Cantidad.IsPositive() {
		return apierror.Validationf("La cantidad debe ser mayor a cero")
	}
	pedido, err := s.cargarPedido(ctx, actor, pedidoID)
	if err != nil {
		return err
	}
	item, err := s.repo.FindItem(ctx, pedido.ID, productoID)
	if err != nil {
		return mapNotFound(err, "El pedido %d no tiene el producto %d", pedidoID, productoID)
	}
	item.Cantidad = req.Cantidad
	if req.Tipo != "" {
		item.Tipo = req.Tipo
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.SaveItemTx(tx, item)
	})
}

func (s *pedidoService) QuitarItem(ctx context.Context, actor Actor, pedidoID, productoID int64) error {
	pedido, err := s.cargarPedido(ctx, actor, pedidoID)
	if err != nil {
		return err
	}
	if _, err := s.repo.FindItem(ctx, pedido.ID, productoID); err != nil {
		return mapNotFound(err, "El pedido %d no tiene el producto %d", pedidoID, productoID)
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.DeleteItemTx(tx, pedido.ID, productoID)
	})
}

func (s *pedidoService) Eliminar(ctx context.Context, actor Actor, id int64) error {
	pedido, err := s.cargarPedido(ctx, actor, id)
	if err != nil {
		return err
	}
	// Items are removed with the header inside one transaction.
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.DeleteManyTx(tx, []int64{id})
	})
	if txErr != nil {
		return txErr
	}
	s.auditar(ctx, actor, "eliminar", id, pedido, nil)
	return nil
}

// auditar enqueues an audit entry after the mutation committed. Best-effort:
// a queue failure is logged inside the dispatcher and swallowed.
func (s *pedidoService) auditar(ctx context.Context, actor Actor, accion string, registroID int64, antes, despues interface{}) {
	payload := worker.AuditoriaPayload{
		Usuario:    actor.Username,
		Accion:     accion,
		Tabla:      "pedidos",
		RegistroID: fmt.Sprintf("%d", registroID),
	}
	if antes != nil {
		if data, err := json.Marshal(antes); err == nil {
			payload.DatosAntes = string(data)
		}
	}
	if despues != nil {
		if data, err := json.Marshal(despues); err == nil {
			payload.DatosDespues = string(data)
		}
	}
	s.dispatcher.EnqueueAuditoria(ctx, payload)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func pedidoToResponse(p *model.Pedido) *dto.PedidoResponse {
	items := make([]dto.ItemPedidoResponse, 0, len(p.Items))
	for _, item := range p.Items {
		nombre := ""
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		items = append(items, dto.ItemPedidoResponse{
			ProductoID: item.ProductoID,
			Producto:   nombre,
			Cantidad:   item.Cantidad,
			Tipo:       item.Tipo,
		})
	}
	clienteNombre := ""
	if p.Cliente != nil {
		clienteNombre = p.Cliente.Nombre
	}
	return &dto.PedidoResponse{
		ID:          p.ID,
		ClienteID:   p.ClienteID,
		Cliente:     clienteNombre,
		Estado:      p.Estado,
		Repartidor:  p.Repartidor,
		Notas:       p.Notas,
		CreadoPor:   p.CreadoPor,
		PDFGenerado: p.PDFGenerado,
		Productos:   items,
		Fecha:       p.CreatedAt,
	}
}
