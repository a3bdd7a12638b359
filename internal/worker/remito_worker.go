package worker

// remito_worker.go
// Renders delivery-note PDFs for pedidos marked by the bulk document
// operation. Rendering happens after the marking transaction committed; a
// render failure lands in the DLQ and never affects the orders themselves.

import (
	"context"
	"encoding/json"

	"github.com/mauropillox/chorilocal-sub000/internal/infra"
	"github.com/mauropillox/chorilocal-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

// RemitoPayload is the job envelope sent to QueueRemito.
type RemitoPayload struct {
	PedidoID int64 `json:"pedido_id"`
}

type RemitoWorker struct {
	pedidos     repository.PedidoRepository
	storagePath string
}

func NewRemitoWorker(pedidos repository.PedidoRepository, storagePath string) *RemitoWorker {
	return &RemitoWorker{pedidos: pedidos, storagePath: storagePath}
}

func (w *RemitoWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload RemitoPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("remito_worker: invalid payload")
		return nil
	}

	pedido, err := w.pedidos.FindByID(ctx, payload.PedidoID)
	if err != nil {
		// The pedido may have been deleted between marking and rendering.
		log.Warn().Int64("pedido_id", payload.PedidoID).Err(err).Msg("remito_worker: pedido gone, skipping")
		return nil
	}

	path, err := infra.GenerateRemitoPDF(pedido, w.storagePath)
	if err != nil {
		log.Error().Err(err).Int64("pedido_id", payload.PedidoID).Msg("remito_worker: render failed")
		return err
	}
	log.Info().Int64("pedido_id", payload.PedidoID).Str("path", path).Msg("remito_worker: remito generado")
	return nil
}
