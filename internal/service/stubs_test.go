package service_test

import (
	"context"

	"github.com/mauropillox/chorilocal-sub000/internal/dto"
	"github.com/mauropillox/chorilocal-sub000/internal/model"
	"github.com/mauropillox/chorilocal-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// In-memory repositories. DB() returns nil so the services run their
// transaction bodies directly, without a real store.

type stubProductoRepo struct {
	productos map[int64]*model.Producto
	seq       int64
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[int64]*model.Producto)}
}

func (r *stubProductoRepo) seedProducto(nombre string, stock, minimo float64) *model.Producto {
	r.seq++
	p := &model.Producto{
		ID:          r.seq,
		Nombre:      nombre,
		Precio:      decimal.NewFromFloat(100),
		Stock:       decimal.NewFromFloat(stock),
		StockMinimo: decimal.NewFromFloat(minimo),
		StockTipo:   "unidad",
		Activo:      true,
	}
	r.productos[p.ID] = p
	return p
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.seq++
	p.ID = r.seq
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id int64) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductoRepo) FindByIDs(_ context.Context, ids []int64) ([]model.Producto, error) {
	return r.findMany(ids), nil
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		if p.Activo {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id int64) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *stubProductoRepo) FindByIDTx(_ *gorm.DB, id int64) (*model.Producto, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductoRepo) FindByIDsTx(_ *gorm.DB, ids []int64) ([]model.Producto, error) {
	return r.findMany(ids), nil
}

func (r *stubProductoRepo) SetStockTx(_ *gorm.DB, id int64, stock decimal.Decimal) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock = stock
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

func (r *stubProductoRepo) findMany(ids []int64) []model.Producto {
	out := make([]model.Producto, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := r.productos[id]; ok {
			out = append(out, *p)
		}
	}
	return out
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

type stubPedidoRepo struct {
	pedidos map[int64]*model.Pedido
	seq     int64

	// lookups performed through the transactional reader
	findItemTx int
}

func newStubPedidoRepo() *stubPedidoRepo {
	return &stubPedidoRepo{pedidos: make(map[int64]*model.Pedido)}
}

func (r *stubPedidoRepo) seedPedido(clienteID int64, creadoPor string, items ...model.PedidoItem) *model.Pedido {
	r.seq++
	p := &model.Pedido{
		ID:        r.seq,
		ClienteID: clienteID,
		Estado:    model.EstadoPendiente,
		CreadoPor: creadoPor,
		Items:     items,
	}
	for i := range p.Items {
		p.Items[i].PedidoID = p.ID
	}
	r.pedidos[p.ID] = p
	return p
}

func (r *stubPedidoRepo) CreateTx(_ *gorm.DB, p *model.Pedido) error {
	r.seq++
	p.ID = r.seq
	for i := range p.Items {
		p.Items[i].PedidoID = p.ID
	}
	r.pedidos[p.ID] = p
	return nil
}

func (r *stubPedidoRepo) FindByID(_ context.Context, id int64) (*model.Pedido, error) {
	p, ok := r.pedidos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPedidoRepo) FindByIDs(_ context.Context, ids []int64) ([]model.Pedido, error) {
	out := make([]model.Pedido, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := r.pedidos[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPedidoRepo) List(_ context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	out := make([]model.Pedido, 0, len(r.pedidos))
	for _, p := range r.pedidos {
		if filter.Estado != "" && p.Estado != filter.Estado {
			continue
		}
		if filter.CreadoPor != "" && p.CreadoPor != filter.CreadoPor {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPedidoRepo) Save(_ context.Context, p *model.Pedido) error {
	if _, ok := r.pedidos[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.pedidos[p.ID] = p
	return nil
}

func (r *stubPedidoRepo) UpdateEstadoTx(_ *gorm.DB, id int64, estado string, repartidor *string) error {
	p, ok := r.pedidos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Estado = estado
	if repartidor != nil {
		p.Repartidor = repartidor
	}
	return nil
}

func (r *stubPedidoRepo) MarkPDFGeneradoTx(_ *gorm.DB, ids []int64) error {
	for _, id := range ids {
		if p, ok := r.pedidos[id]; ok {
			p.PDFGenerado = true
		}
	}
	return nil
}

func (r *stubPedidoRepo) DeleteManyTx(_ *gorm.DB, ids []int64) error {
	for _, id := range ids {
		delete(r.pedidos, id)
	}
	return nil
}

func (r *stubPedidoRepo) FindItemTx(_ *gorm.DB, pedidoID, productoID int64) (*model.PedidoItem, error) {
	r.findItemTx++
	return r.FindItem(context.Background(), pedidoID, productoID)
}

func (r *stubPedidoRepo) FindItem(_ context.Context, pedidoID, productoID int64) (*model.PedidoItem, error) {
	p, ok := r.pedidos[pedidoID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range p.Items {
		if p.Items[i].ProductoID == productoID {
			return &p.Items[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPedidoRepo) CreateItemTx(_ *gorm.DB, item *model.PedidoItem) error {
	p, ok := r.pedidos[item.PedidoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Items = append(p.Items, *item)
	return nil
}

func (r *stubPedidoRepo) SaveItemTx(_ *gorm.DB, item *model.PedidoItem) error {
	p, ok := r.pedidos[item.PedidoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range p.Items {
		if p.Items[i].ProductoID == item.ProductoID {
			p.Items[i] = *item
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubPedidoRepo) DeleteItemTx(_ *gorm.DB, pedidoID, productoID int64) error {
	p, ok := r.pedidos[pedidoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range p.Items {
		if p.Items[i].ProductoID == productoID {
			p.Items = append(p.Items[:i], p.Items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *stubPedidoRepo) DB() *gorm.DB { return nil }

var _ repository.PedidoRepository = (*stubPedidoRepo)(nil)

type stubClienteRepo struct {
	clientes map[int64]*model.Cliente
	seq      int64
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[int64]*model.Cliente)}
}

func (r *stubClienteRepo) seedCliente(nombre string) *model.Cliente {
	r.seq++
	c := &model.Cliente{ID: r.seq, Nombre: nombre, Activo: true}
	r.clientes[c.ID] = c
	return c
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	r.seq++
	c.ID = r.seq
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) CreateTx(_ *gorm.DB, c *model.Cliente) error {
	return r.Create(context.Background(), c)
}

func (r *stubClienteRepo) FindByID(_ context.Context, id int64) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClienteRepo) List(_ context.Context) ([]model.Cliente, error) {
	out := make([]model.Cliente, 0, len(r.clientes))
	for _, c := range r.clientes {
		if c.Activo {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) SoftDelete(_ context.Context, id int64) error {
	if c, ok := r.clientes[id]; ok {
		c.Activo = false
	}
	return nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)
