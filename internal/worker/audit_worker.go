package worker

// audit_worker.go
// Writes audit-log rows produced by the business services. Audit writes
// happen here, outside the transaction that produced them, so an audit
// failure can never roll back an already-committed mutation.

import (
	"context"
	"encoding/json"

	"github.com/mauropillox/chorilocal-sub000/internal/model"
	"github.com/mauropillox/chorilocal-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

// AuditoriaPayload is the job envelope sent to QueueAuditoria.
type AuditoriaPayload struct {
	Usuario      string `json:"usuario"`
	Accion       string `json:"accion"`
	Tabla        string `json:"tabla"`
	RegistroID   string `json:"registro_id"`
	DatosAntes   string `json:"datos_antes,omitempty"`
	DatosDespues string `json:"datos_despues,omitempty"`
	Origen       string `json:"origen,omitempty"`
}

type AuditWorker struct {
	repo repository.AuditoriaRepository
}

func NewAuditWorker(repo repository.AuditoriaRepository) *AuditWorker {
	return &AuditWorker{repo: repo}
}

func (w *AuditWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload AuditoriaPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("audit_worker: invalid payload")
		return nil // malformed jobs are unrecoverable, drop without DLQ loop
	}

	entry := &model.Auditoria{
		Usuario:      payload.Usuario,
		Accion:       payload.Accion,
		Tabla:        payload.Tabla,
		RegistroID:   payload.RegistroID,
		DatosAntes:   payload.DatosAntes,
		DatosDespues: payload.DatosDespues,
		Origen:       payload.Origen,
	}
	if err := w.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("tabla", payload.Tabla).Msg("audit_worker: insert failed")
		return err
	}
	return nil
}
