package handler

import (
	"net/http"
	"strconv"

	"github.com/mauropillox/chorilocal-sub000/internal/apierror"
	"github.com/mauropillox/chorilocal-sub000/internal/dto"
	"github.com/mauropillox/chorilocal-sub000/internal/middleware"
	"github.com/mauropillox/chorilocal-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type PedidosHandler struct {
	svc   service.PedidoService
	bulk  service.BulkService
	stock service.StockService
}

func NewPedidosHandler(svc service.PedidoService, bulk service.BulkService, stock service.StockService) *PedidosHandler {
	return &PedidosHandler{svc: svc, bulk: bulk, stock: stock}
}

func (h *PedidosHandler) Crear(c *gin.Context) {
	var req dto.CrearPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PedidosHandler) Listar(c *gin.Context) {
	var filter dto.PedidoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), middleware.ActorFrom(c), filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) ObtenerPorID(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) CambiarEstado(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.CambiarEstadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarEstado(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) ActualizarNotas(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ActualizarNotasRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarNotas(c.Request.Context(), middleware.ActorFrom(c), id, req.Notas)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) ReasignarCliente(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ReasignarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ReasignarCliente(c.Request.Context(), middleware.ActorFrom(c), id, req.ClienteID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) AgregarItem(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.AgregarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AgregarItem(c.Request.Context(), middleware.ActorFrom(c), id, req); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PedidosHandler) ActualizarItem(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	productoID, err := strconv.ParseInt(c.Param("producto_id"), 10, 64)
	if err != nil || productoID <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New("ID de producto invalido"))
		return
	}
	var req dto.ActualizarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ActualizarItem(c.Request.Context(), middleware.ActorFrom(c), id, productoID, req); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PedidosHandler) QuitarItem(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	productoID, err := strconv.ParseInt(c.Param("producto_id"), 10, 64)
	if err != nil || productoID <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New("ID de producto invalido"))
		return
	}
	if err := h.svc.QuitarItem(c.Request.Context(), middleware.ActorFrom(c), id, productoID); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PedidosHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkDelete removes up to 100 pedidos in one transaction. Any miss aborts
// the whole batch.
func (h *PedidosHandler) BulkDelete(c *gin.Context) {
	var req dto.BulkPedidosRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.bulk.EliminarPedidos(c.Request.Context(), middleware.ActorFrom(c), req.PedidoIDs)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GenerarDocumentos marks pedidos as document-generated and depletes stock in
// one transaction; remito rendering runs async afterwards.
func (h *PedidosHandler) GenerarDocumentos(c *gin.Context) {
	var req dto.BulkPedidosRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.bulk.GenerarDocumentos(c.Request.Context(), middleware.ActorFrom(c), req.PedidoIDs)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PreviewStock reports stock-after-fulfillment for the referenced pedidos
// without mutating anything.
func (h *PedidosHandler) PreviewStock(c *gin.Context) {
	var req dto.BulkPedidosRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.stock.PreviewImpacto(c.Request.Context(), req.PedidoIDs)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productos": resp})
}
