package infra

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mauropillox/chorilocal-sub000/internal/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func abrirDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestIsBusy(t *testing.T) {
	assert.True(t, IsBusy(errors.New("database is locked")))
	assert.True(t, IsBusy(errors.New("database table is locked")))
	assert.True(t, IsBusy(errors.New("SQLITE_BUSY: cannot start a transaction")))
	assert.True(t, IsBusy(fmt.Errorf("step: %w", errors.New("database is locked"))))

	assert.False(t, IsBusy(nil))
	assert.False(t, IsBusy(errors.New("UNIQUE constraint failed: pedidos.id")))
	assert.False(t, IsBusy(errors.New("no such table: pedidos")))
}

func TestRunInTx_ContencionAgotaIntentos(t *testing.T) {
	db := abrirDB(t)

	intentos := 0
	err := RunInTx(context.Background(), db, func(tx *gorm.DB) error {
		intentos++
		return errors.New("database is locked")
	})

	require.Error(t, err)
	assert.Equal(t, txMaxAttempts, intentos)
	assert.Equal(t, apierror.KindTransient, apierror.KindOf(err))

	// The error that exhausted the budget travels with the Transient wrapper.
	var ae *apierror.Error
	require.ErrorAs(t, err, &ae)
	require.NotNil(t, ae.Err)
	assert.Contains(t, ae.Err.Error(), "database is locked")
}

func TestRunInTx_ContencionTransitoriaSeRecupera(t *testing.T) {
	db := abrirDB(t)

	intentos := 0
	err := RunInTx(context.Background(), db, func(tx *gorm.DB) error {
		intentos++
		if intentos < 3 {
			return errors.New("database is locked")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, intentos)
}

func TestRunInTx_ErrorNoRecuperableNoReintenta(t *testing.T) {
	db := abrirDB(t)

	intentos := 0
	err := RunInTx(context.Background(), db, func(tx *gorm.DB) error {
		intentos++
		return apierror.NotFoundf("Pedido 42 no encontrado")
	})

	assert.Equal(t, 1, intentos)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
	assert.ErrorContains(t, err, "Pedido 42 no encontrado")
}

func TestRunInTx_ContextoCanceladoNoSigueReintentando(t *testing.T) {
	db := abrirDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	intentos := 0
	err := RunInTx(ctx, db, func(tx *gorm.DB) error {
		intentos++
		cancel()
		return errors.New("database is locked")
	})

	require.Error(t, err)
	assert.Equal(t, 1, intentos)
	assert.Equal(t, apierror.KindTransient, apierror.KindOf(err))

	var ae *apierror.Error
	require.ErrorAs(t, err, &ae)
	require.NotNil(t, ae.Err)
	assert.Contains(t, ae.Err.Error(), "database is locked")
}
