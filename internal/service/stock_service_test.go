package service_test

import (
	"context"
	"testing"

	"github.com/mauropillox/chorilocal-sub000/internal/apierror"
	"github.com/mauropillox/chorilocal-sub000/internal/dto"
	"github.com/mauropillox/chorilocal-sub000/internal/model"
	"github.com/mauropillox/chorilocal-sub000/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildStockSvc() (service.StockService, *stubProductoRepo, *stubPedidoRepo) {
	productoRepo := newStubProductoRepo()
	pedidoRepo := newStubPedidoRepo()
	svc := service.NewStockService(productoRepo, pedidoRepo, nil)
	return svc, productoRepo, pedidoRepo
}

func dec(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func TestAjustar_DeltaResta(t *testing.T) {
	svc, repo, _ := buildStockSvc()
	p := repo.seedProducto("Chorizo parrillero", 50, 5)

	resp, err := svc.Ajustar(context.Background(), p.ID, dto.AjustarStockRequest{Delta: dec(-10)})
	require.NoError(t, err)
	assert.Equal(t, "40", resp.Stock.String())
}

func TestAjustar_DeltaClampeaEnCero(t *testing.T) {
	svc, repo, _ := buildStockSvc()
	p := repo.seedProducto("Morcilla", 3, 0)

	resp, err := svc.Ajustar(context.Background(), p.ID, dto.AjustarStockRequest{Delta: dec(-10)})
	require.NoError(t, err)
	assert.Equal(t, "0", resp.Stock.String())
}

func TestAjustar_AbsolutoPermiteNegativo(t *testing.T) {
	svc, repo, _ := buildStockSvc()
	p := repo.seedProducto("Salame", 10, 0)

	// Absolute mode writes exactly what was asked, negatives included.
	resp, err := svc.Ajustar(context.Background(), p.ID, dto.AjustarStockRequest{Stock: dec(-5)})
	require.NoError(t, err)
	assert.Equal(t, "-5", resp.Stock.String())
}

func TestAjustar_ExactamenteUnModo(t *testing.T) {
	svc, repo, _ := buildStockSvc()
	p := repo.seedProducto("Bondiola", 10, 0)

	_, err := svc.Ajustar(context.Background(), p.ID, dto.AjustarStockRequest{})
	assert.True(t, apierror.Is(err, apierror.KindValidation))

	_, err = svc.Ajustar(context.Background(), p.ID, dto.AjustarStockRequest{Delta: dec(1), Stock: dec(5)})
	assert.True(t, apierror.Is(err, apierror.KindValidation))

	// Nothing changed
	assert.Equal(t, "10", repo.productos[p.ID].Stock.String())
}

func TestAjustar_ProductoInexistente(t *testing.T) {
	svc, _, _ := buildStockSvc()
	_, err := svc.Ajustar(context.Background(), 999, dto.AjustarStockRequest{Delta: dec(1)})
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
}

func TestAjusteMasivo_Subtract(t *testing.T) {
	svc, repo, _ := buildStockSvc()
	a := repo.seedProducto("Chorizo", 50, 5)
	b := repo.seedProducto("Queso", 20, 2)

	resp, err := svc.AjusteMasivo(context.Background(), dto.BatchStockRequest{
		Operacion: dto.OperacionSubtract,
		Items: []dto.BatchStockItem{
			{ProductoID: a.ID, Cantidad: decimal.NewFromInt(10)},
			{ProductoID: b.ID, Cantidad: decimal.NewFromInt(25)}, // clamps
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "40", repo.productos[a.ID].Stock.String())
	assert.Equal(t, "0", repo.productos[b.ID].Stock.String())
}

func TestAjusteMasivo_IDFaltanteNoModificaNada(t *testing.T) {
	svc, repo, _ := buildStockSvc()
	a := repo.seedProducto("Chorizo", 50, 5)

	_, err := svc.AjusteMasivo(context.Background(), dto.BatchStockRequest{
		Operacion: dto.OperacionSubtract,
		Items: []dto.BatchStockItem{
			{ProductoID: a.ID, Cantidad: decimal.NewFromInt(10)},
			{ProductoID: 999999, Cantidad: decimal.NewFromInt(1)},
		},
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
	assert.Contains(t, err.Error(), "999999")

	// All-or-nothing: the existing product kept its stock.
	assert.Equal(t, "50", repo.productos[a.ID].Stock.String())
}

func TestAjusteMasivo_DuplicadosAcumulan(t *testing.T) {
	svc, repo, _ := buildStockSvc()
	a := repo.seedProducto("Chorizo", 30, 0)

	resp, err := svc.AjusteMasivo(context.Background(), dto.BatchStockRequest{
		Operacion: dto.OperacionSubtract,
		Items: []dto.BatchStockItem{
			{ProductoID: a.ID, Cantidad: decimal.NewFromInt(10)},
			{ProductoID: a.ID, Cantidad: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)
	// count reports distinct products, not rows in the request.
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "10", repo.productos[a.ID].Stock.String())
}

func TestAjusteMasivo_Set(t *testing.T) {
	svc, repo, _ := buildStockSvc()
	a := repo.seedProducto("Chorizo", 50, 5)

	resp, err := svc.AjusteMasivo(context.Background(), dto.BatchStockRequest{
		Operacion: dto.OperacionSet,
		Items:     []dto.BatchStockItem{{ProductoID: a.ID, Cantidad: decimal.NewFromInt(7)}},
	})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "7", repo.productos[a.ID].Stock.String())
}

func TestAjusteMasivo_OperacionDesconocida(t *testing.T) {
	svc, repo, _ := buildStockSvc()
	a := repo.seedProducto("Chorizo", 50, 5)

	_, err := svc.AjusteMasivo(context.Background(), dto.BatchStockRequest{
		Operacion: "add",
		Items:     []dto.BatchStockItem{{ProductoID: a.ID, Cantidad: decimal.NewFromInt(1)}},
	})
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestPreviewImpacto_AgregaPorProducto(t *testing.T) {
	svc, productoRepo, pedidoRepo := buildStockSvc()
	p := productoRepo.seedProducto("Chorizo", 10, 0)

	pedidoRepo.seedPedido(1, "ana", model.PedidoItem{ProductoID: p.ID, Cantidad: decimal.NewFromInt(4), Tipo: "unidad"})
	pedidoRepo.seedPedido(1, "ana", model.PedidoItem{ProductoID: p.ID, Cantidad: decimal.NewFromInt(8), Tipo: "unidad"})

	preview, err := svc.PreviewImpacto(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, preview, 1)
	assert.Equal(t, "10", preview[0].Antes.String())
	// 10 - 12 would be negative: fulfillment clamps, preview warns.
	assert.Equal(t, "0", preview[0].Despues.String())
	assert.True(t, preview[0].Insuficiente)
}

func TestPreviewImpacto_NoMuta(t *testing.T) {
	svc, productoRepo, pedidoRepo := buildStockSvc()
	p := productoRepo.seedProducto("Chorizo", 10, 0)
	pedidoRepo.seedPedido(1, "ana", model.PedidoItem{ProductoID: p.ID, Cantidad: decimal.NewFromInt(4), Tipo: "unidad"})

	_, err := svc.PreviewImpacto(context.Background(), []int64{1})
	require.NoError(t, err)
	assert.Equal(t, "10", productoRepo.productos[p.ID].Stock.String())
}
