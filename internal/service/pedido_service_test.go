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

func buildPedidoSvc() (service.PedidoService, *stubPedidoRepo, *stubProductoRepo, *stubClienteRepo) {
	pedidoRepo := newStubPedidoRepo()
	productoRepo := newStubProductoRepo()
	clienteRepo := newStubClienteRepo()
	svc := service.NewPedidoService(pedidoRepo, productoRepo, clienteRepo, nil, nil)
	return svc, pedidoRepo, productoRepo, clienteRepo
}

var (
	actorVendedor = service.Actor{Username: "ana", Rol: "vendedor"}
	otroVendedor  = service.Actor{Username: "beto", Rol: "vendedor"}
)

func cantidad(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestCrearPedido_FusionaLineasDuplicadas(t *testing.T) {
	svc, pedidoRepo, productoRepo, clienteRepo := buildPedidoSvc()
	prod := productoRepo.seedProducto("Chorizo", 100, 0)
	cli := clienteRepo.seedCliente("Parrilla Don Jose")

	resp, err := svc.Crear(context.Background(), actorVendedor, dto.CrearPedidoRequest{
		ClienteID: &cli.ID,
		Productos: []dto.ItemPedidoRequest{
			{ProductoID: prod.ID, Cantidad: cantidad(3), Tipo: "unidad"},
			{ProductoID: prod.ID, Cantidad: cantidad(2), Tipo: "unidad"},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Productos, 1)
	assert.Equal(t, "5", resp.Productos[0].Cantidad.String())
	assert.Equal(t, model.EstadoPendiente, resp.Estado)
	assert.Equal(t, "ana", pedidoRepo.pedidos[resp.ID].CreadoPor)
}

func TestCrearPedido_ClienteInline(t *testing.T) {
	svc, _, productoRepo, clienteRepo := buildPedidoSvc()
	prod := productoRepo.seedProducto("Chorizo", 100, 0)

	resp, err := svc.Crear(context.Background(), actorVendedor, dto.CrearPedidoRequest{
		Cliente:   &dto.ClienteInlineRequest{Nombre: "Cliente Nuevo"},
		Productos: []dto.ItemPedidoRequest{{ProductoID: prod.ID, Cantidad: cantidad(1), Tipo: "unidad"}},
	})
	require.NoError(t, err)
	creado, err := clienteRepo.FindByID(context.Background(), resp.ClienteID)
	require.NoError(t, err)
	assert.Equal(t, "Cliente Nuevo", creado.Nombre)
}

func TestCrearPedido_FormaLegacyItems(t *testing.T) {
	svc, _, productoRepo, clienteRepo := buildPedidoSvc()
	prod := productoRepo.seedProducto("Chorizo", 100, 0)
	cli := clienteRepo.seedCliente("Cliente Viejo")

	// Old clients send "items" instead of "productos"; both shapes work.
	resp, err := svc.Crear(context.Background(), actorVendedor, dto.CrearPedidoRequest{
		ClienteID: &cli.ID,
		Items:     []dto.ItemPedidoRequest{{ProductoID: prod.ID, Cantidad: cantidad(2)}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Productos, 1)
	assert.Equal(t, "unidad", resp.Productos[0].Tipo) // default applied
}

func TestCrearPedido_ProductoInexistente(t *testing.T) {
	svc, _, _, clienteRepo := buildPedidoSvc()
	cli := clienteRepo.seedCliente("Parrilla")

	_, err := svc.Crear(context.Background(), actorVendedor, dto.CrearPedidoRequest{
		ClienteID: &cli.ID,
		Productos: []dto.ItemPedidoRequest{{ProductoID: 999, Cantidad: cantidad(1)}},
	})
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
}

func TestCrearPedido_SinItems(t *testing.T) {
	svc, _, _, clienteRepo := buildPedidoSvc()
	cli := clienteRepo.seedCliente("Parrilla")

	_, err := svc.Crear(context.Background(), actorVendedor, dto.CrearPedidoRequest{ClienteID: &cli.ID})
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestCambiarEstado_PendientePreparandoEntregado(t *testing.T) {
	svc, pedidoRepo, _, _ := buildPedidoSvc()
	p := pedidoRepo.seedPedido(1, "ana")

	resp, err := svc.CambiarEstado(context.Background(), actorVendedor, p.ID,
		dto.CambiarEstadoRequest{Estado: model.EstadoPreparando})
	require.NoError(t, err)
	assert.Equal(t, model.EstadoPreparando, resp.Estado)

	resp, err = svc.CambiarEstado(context.Background(), actorVendedor, p.ID,
		dto.CambiarEstadoRequest{Estado: model.EstadoEntregado})
	require.NoError(t, err)
	assert.Equal(t, model.EstadoEntregado, resp.Estado)
}

func TestCambiarEstado_CanceladoDesdePreparando(t *testing.T) {
	svc, pedidoRepo, _, _ := buildPedidoSvc()
	p := pedidoRepo.seedPedido(1, "ana")
	p.Estado = model.EstadoPreparando

	resp, err := svc.CambiarEstado(context.Background(), actorVendedor, p.ID,
		dto.CambiarEstadoRequest{Estado: model.EstadoCancelado})
	require.NoError(t, err)
	assert.Equal(t, model.EstadoCancelado, resp.Estado)
}

func TestCambiarEstado_ValorObsoletoRechazado(t *testing.T) {
	svc, pedidoRepo, _, _ := buildPedidoSvc()
	p := pedidoRepo.seedPedido(1, "ana")

	for _, malo := range []string{"listo", "en_camino", "PENDIENTE", ""} {
		_, err := svc.CambiarEstado(context.Background(), actorVendedor, p.ID,
			dto.CambiarEstadoRequest{Estado: malo})
		assert.True(t, apierror.Is(err, apierror.KindInvalidState), "estado %q", malo)
	}
	// The pedido never moved.
	assert.Equal(t, model.EstadoPendiente, pedidoRepo.pedidos[p.ID].Estado)
}

func TestCambiarEstado_AliasLegacyAceptado(t *testing.T) {
	svc, pedidoRepo, _, _ := buildPedidoSvc()
	p := pedidoRepo.seedPedido(1, "ana")

	resp, err := svc.CambiarEstado(context.Background(), actorVendedor, p.ID,
		dto.CambiarEstadoRequest{Estado: model.EstadoConfirmado})
	require.NoError(t, err)
	// Round-trips unchanged, no silent rewrite to a modern name.
	assert.Equal(t, model.EstadoConfirmado, resp.Estado)
}

func TestCambiarEstado_AsignaRepartidor(t *testing.T) {
	svc, pedidoRepo, _, _ := buildPedidoSvc()
	p := pedidoRepo.seedPedido(1, "ana")
	repartidor := "carlos"

	resp, err := svc.CambiarEstado(context.Background(), actorVendedor, p.ID,
		dto.CambiarEstadoRequest{Estado: model.EstadoPreparando, Repartidor: &repartidor})
	require.NoError(t, err)
	require.NotNil(t, resp.Repartidor)
	assert.Equal(t, "carlos", *resp.Repartidor)
}

func TestVendedor_NoVePedidosAjenos(t *testing.T) {
	svc, pedidoRepo, _, _ := buildPedidoSvc()
	p := pedidoRepo.seedPedido(1, "ana")

	// Out-of-scope is indistinguishable from missing.
	_, err := svc.ObtenerPorID(context.Background(), otroVendedor, p.ID)
	assert.True(t, apierror.Is(err, apierror.KindNotFound))

	_, err = svc.CambiarEstado(context.Background(), otroVendedor, p.ID,
		dto.CambiarEstadoRequest{Estado: model.EstadoPreparando})
	assert.True(t, apierror.Is(err, apierror.KindNotFound))

	// Admin sees everything.
	resp, err := svc.ObtenerPorID(context.Background(), actorAdmin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, resp.ID)
}

func TestListar_VendedorSoloPropios(t *testing.T) {
	svc, pedidoRepo, _, _ := buildPedidoSvc()
	pedidoRepo.seedPedido(1, "ana")
	pedidoRepo.seedPedido(1, "beto")

	resp, err := svc.Listar(context.Background(), actorVendedor, dto.PedidoFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "ana", resp.Data[0].CreadoPor)

	todos, err := svc.Listar(context.Background(), actorAdmin, dto.PedidoFilter{})
	require.NoError(t, err)
	assert.Len(t, todos.Data, 2)
}

func TestAgregarItem_FusionaConExistente(t *testing.T) {
	svc, pedidoRepo, productoRepo, _ := buildPedidoSvc()
	prod := productoRepo.seedProducto("Chorizo", 100, 0)
	p := pedidoRepo.seedPedido(1, "ana",
		model.PedidoItem{ProductoID: prod.ID, Cantidad: cantidad(2), Tipo: "unidad"})

	err := svc.AgregarItem(context.Background(), actorVendedor, p.ID,
		dto.AgregarItemRequest{ProductoID: prod.ID, Cantidad: cantidad(3), Tipo: "unidad"})
	require.NoError(t, err)

	item, err := pedidoRepo.FindItem(context.Background(), p.ID, prod.ID)
	require.NoError(t, err)
	assert.Equal(t, "5", item.Cantidad.String())

	// The merge-or-insert decision reads inside the write transaction, so a
	// concurrent add of the same producto merges instead of tripping the
	// unique index.
	assert.Equal(t, 1, pedidoRepo.findItemTx)
}

func TestQuitarItem_ItemInexistente(t *testing.T) {
	svc, pedidoRepo, _, _ := buildPedidoSvc()
	p := pedidoRepo.seedPedido(1, "ana")

	err := svc.QuitarItem(context.Background(), actorVendedor, p.ID, 777)
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
}

func TestEliminar_PedidoDesaparece(t *testing.T) {
	svc, pedidoRepo, _, _ := buildPedidoSvc()
	p := pedidoRepo.seedPedido(1, "ana")

	require.NoError(t, svc.Eliminar(context.Background(), actorVendedor, p.ID))
	assert.NotContains(t, pedidoRepo.pedidos, p.ID)
}
