package worker

// email_worker.go
// Sends low-stock alert emails. Alerts fire after a depleting batch commit
// leaves a product at or below its reorder threshold.

import (
	"context"
	"encoding/json"

	"github.com/mauropillox/chorilocal-sub000/internal/infra"

	"github.com/rs/zerolog/log"
)

// AlertaStockPayload is the job envelope sent to QueueEmail.
type AlertaStockPayload struct {
	ProductoID  int64  `json:"producto_id"`
	Nombre      string `json:"nombre"`
	Stock       string `json:"stock"`
	StockMinimo string `json:"stock_minimo"`
}

type EmailWorker struct {
	mailer    *infra.Mailer
	recipient string
}

func NewEmailWorker(mailer *infra.Mailer, recipient string) *EmailWorker {
	return &EmailWorker{mailer: mailer, recipient: recipient}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload AlertaStockPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if w.recipient == "" {
		log.Debug().Msg("email_worker: no alert recipient configured — skipping")
		return nil
	}

	if err := w.mailer.SendAlertaStock(w.recipient, payload.Nombre, payload.Stock, payload.StockMinimo); err != nil {
		log.Error().Err(err).Int64("producto_id", payload.ProductoID).Msg("email_worker: send failed")
		return err
	}
	log.Info().Int64("producto_id", payload.ProductoID).Msg("email_worker: alerta de stock enviada")
	return nil
}
