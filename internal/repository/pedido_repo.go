package repository

import (
	"context"

	"github.com/mauropillox/chorilocal-sub000/internal/dto"
	"github.com/mauropillox/chorilocal-sub000/internal/model"

	"gorm.io/gorm"
)

// PedidoRepository is the data access contract for pedidos and their items.
// Multi-row mutations expose *Tx variants so the service layer can compose
// them inside a single transaction.
type PedidoRepository interface {
	CreateTx(tx *gorm.DB, p *model.Pedido) error
	FindByID(ctx context.Context, id int64) (*model.Pedido, error)
	// FindByIDs returns the pedidos matching ids, items preloaded. Missing ids
	// are simply absent from the result; callers diff against the request.
	FindByIDs(ctx context.Context, ids []int64) ([]model.Pedido, error)
	List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error)
	Save(ctx context.Context, p *model.Pedido) error
	UpdateEstadoTx(tx *gorm.DB, id int64, estado string, repartidor *string) error
	MarkPDFGeneradoTx(tx *gorm.DB, ids []int64) error
	// DeleteManyTx removes item rows first, then headers, for all ids.
	DeleteManyTx(tx *gorm.DB, ids []int64) error

	// Line items
	FindItem(ctx context.Context, pedidoID, productoID int64) (*model.PedidoItem, error)
	// FindItemTx reads through the open transaction so a merge-or-insert
	// decision sees the same snapshot it will write against.
	FindItemTx(tx *gorm.DB, pedidoID, productoID int64) (*model.PedidoItem, error)
	CreateItemTx(tx *gorm.DB, item *model.PedidoItem) error
	SaveItemTx(tx *gorm.DB, item *model.PedidoItem) error
	DeleteItemTx(tx *gorm.DB, pedidoID, productoID int64) error

	DB() *gorm.DB
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) CreateTx(tx *gorm.DB, p *model.Pedido) error {
	return tx.Create(p).Error
}

func (r *pedidoRepo) FindByID(ctx context.Context, id int64) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).
		Preload("Cliente").
		Preload("Items.Producto").
		First(&p, id).Error
	return &p, err
}

func (r *pedidoRepo) FindByIDs(ctx context.Context, ids []int64) ([]model.Pedido, error) {
	var pedidos []model.Pedido
	err := r.db.WithContext(ctx).
		Preload("Cliente").
		Preload("Items.Producto").
		Where("id IN ?", ids).
		Find(&pedidos).Error
	return pedidos, err
}

func (r *pedidoRepo) List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	var pedidos []model.Pedido
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Pedido{})
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ClienteID > 0 {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	// Vendedor-scoped visibility: set by the query layer, never by the client.
	if filter.CreadoPor != "" {
		q = q.Where("creado_por = ?", filter.CreadoPor)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Cliente").Preload("Items.Producto").
		Order("created_at DESC").Limit(filter.Limit).Offset(offset).
		Find(&pedidos).Error
	return pedidos, total, err
}

func (r *pedidoRepo) Save(ctx context.Context, p *model.Pedido) error {
	return r.db.WithContext(ctx).Omit("Items", "Cliente").Save(p).Error
}

func (r *pedidoRepo) UpdateEstadoTx(tx *gorm.DB, id int64, estado string, repartidor *string) error {
	updates := map[string]interface{}{"estado": estado}
	if repartidor != nil {
		updates["repartidor"] = *repartidor
	}
	return tx.Model(&model.Pedido{}).Where("id = ?", id).Updates(updates).Error
}

func (r *pedidoRepo) MarkPDFGeneradoTx(tx *gorm.DB, ids []int64) error {
	return tx.Model(&model.Pedido{}).Where("id IN ?", ids).
		Update("pdf_generado", true).Error
}

func (r *pedidoRepo) DeleteManyTx(tx *gorm.DB, ids []int64) error {
	// Items first: they are owned rows and must never outlive their header.
	if err := tx.Where("pedido_id IN ?", ids).Delete(&model.PedidoItem{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&model.Pedido{}).Error
}

func (r *pedidoRepo) FindItem(ctx context.Context, pedidoID, productoID int64) (*model.PedidoItem, error) {
	var item model.PedidoItem
	err := r.db.WithContext(ctx).
		Where("pedido_id = ? AND producto_id = ?", pedidoID, productoID).
		First(&item).Error
	return &item, err
}

func (r *pedidoRepo) FindItemTx(tx *gorm.DB, pedidoID, productoID int64) (*model.PedidoItem, error) {
	var item model.PedidoItem
	err := tx.Where("pedido_id = ? AND producto_id = ?", pedidoID, productoID).
		First(&item).Error
	return &item, err
}

func (r *pedidoRepo) CreateItemTx(tx *gorm.DB, item *model.PedidoItem) error {
	return tx.Create(item).Error
}

func (r *pedidoRepo) SaveItemTx(tx *gorm.DB, item *model.PedidoItem) error {
	return tx.Save(item).Error
}

func (r *pedidoRepo) DeleteItemTx(tx *gorm.DB, pedidoID, productoID int64) error {
	return tx.Where("pedido_id = ? AND producto_id = ?", pedidoID, productoID).
		Delete(&model.PedidoItem{}).Error
}

func (r *pedidoRepo) DB() *gorm.DB { return r.db }
