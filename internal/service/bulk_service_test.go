package service_test

import (
	"context"
	"testing"

	"github.com/mauropillox/chorilocal-sub000/internal/apierror"
	"github.com/mauropillox/chorilocal-sub000/internal/model"
	"github.com/mauropillox/chorilocal-sub000/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildBulkSvc() (service.BulkService, *stubPedidoRepo, *stubProductoRepo) {
	pedidoRepo := newStubPedidoRepo()
	productoRepo := newStubProductoRepo()
	svc := service.NewBulkService(pedidoRepo, productoRepo, nil)
	return svc, pedidoRepo, productoRepo
}

var actorAdmin = service.Actor{Username: "admin", Rol: "admin"}

func TestEliminarPedidos_DeduplicaIDs(t *testing.T) {
	svc, pedidoRepo, _ := buildBulkSvc()
	p := pedidoRepo.seedPedido(1, "ana")

	resp, err := svc.EliminarPedidos(context.Background(), actorAdmin, []int64{p.ID, p.ID, p.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Eliminados)
	assert.Empty(t, resp.Errores)
	assert.NotContains(t, pedidoRepo.pedidos, p.ID)
}

func TestEliminarPedidos_IDFaltanteAbortaTodo(t *testing.T) {
	svc, pedidoRepo, _ := buildBulkSvc()
	p := pedidoRepo.seedPedido(1, "ana")

	_, err := svc.EliminarPedidos(context.Background(), actorAdmin, []int64{p.ID, 999999})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
	assert.Contains(t, err.Error(), "999999")

	// Zero partial deletes: the existing pedido survived.
	assert.Contains(t, pedidoRepo.pedidos, p.ID)
}

func TestEliminarPedidos_NombraTodosLosFaltantes(t *testing.T) {
	svc, _, _ := buildBulkSvc()

	_, err := svc.EliminarPedidos(context.Background(), actorAdmin, []int64{111, 222})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "111")
	assert.Contains(t, err.Error(), "222")
}

func TestEliminarPedidos_ListaVacia(t *testing.T) {
	svc, _, _ := buildBulkSvc()
	_, err := svc.EliminarPedidos(context.Background(), actorAdmin, nil)
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestEliminarPedidos_MaximoCien(t *testing.T) {
	svc, _, _ := buildBulkSvc()
	ids := make([]int64, service.MaxBulkPedidos+1)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	_, err := svc.EliminarPedidos(context.Background(), actorAdmin, ids)
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestGenerarDocumentos_DescuentaStockYMarca(t *testing.T) {
	svc, pedidoRepo, productoRepo := buildBulkSvc()
	prod := productoRepo.seedProducto("Chorizo", 50, 5)
	p1 := pedidoRepo.seedPedido(1, "ana",
		model.PedidoItem{ProductoID: prod.ID, Cantidad: decimal.NewFromInt(10), Tipo: "unidad"})
	p2 := pedidoRepo.seedPedido(1, "ana",
		model.PedidoItem{ProductoID: prod.ID, Cantidad: decimal.NewFromInt(5), Tipo: "unidad"})

	resp, err := svc.GenerarDocumentos(context.Background(), actorAdmin, []int64{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Procesados)

	// Quantities aggregate across pedidos: 50 - (10 + 5) = 35.
	assert.Equal(t, "35", productoRepo.productos[prod.ID].Stock.String())
	assert.True(t, pedidoRepo.pedidos[p1.ID].PDFGenerado)
	assert.True(t, pedidoRepo.pedidos[p2.ID].PDFGenerado)
}

func TestGenerarDocumentos_ClampeaEnCero(t *testing.T) {
	svc, pedidoRepo, productoRepo := buildBulkSvc()
	prod := productoRepo.seedProducto("Morcilla", 3, 0)
	p := pedidoRepo.seedPedido(1, "ana",
		model.PedidoItem{ProductoID: prod.ID, Cantidad: decimal.NewFromInt(10), Tipo: "unidad"})

	resp, err := svc.GenerarDocumentos(context.Background(), actorAdmin, []int64{p.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Procesados)
	assert.Equal(t, "0", productoRepo.productos[prod.ID].Stock.String())
}

func TestGenerarDocumentos_PedidoFaltante(t *testing.T) {
	svc, pedidoRepo, productoRepo := buildBulkSvc()
	prod := productoRepo.seedProducto("Chorizo", 50, 5)
	p := pedidoRepo.seedPedido(1, "ana",
		model.PedidoItem{ProductoID: prod.ID, Cantidad: decimal.NewFromInt(10), Tipo: "unidad"})

	_, err := svc.GenerarDocumentos(context.Background(), actorAdmin, []int64{p.ID, 424242})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindNotFound))

	// Neither the stock nor the mark moved.
	assert.Equal(t, "50", productoRepo.productos[prod.ID].Stock.String())
	assert.False(t, pedidoRepo.pedidos[p.ID].PDFGenerado)
}
