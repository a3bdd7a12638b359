package infra

import (
	"fmt"

	"github.com/mauropillox/chorilocal-sub000/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the embedded SQLite store shared by every request handler
// and migrates the schema. SQLite allows a single writer at a time; WAL mode
// lets readers proceed while a write transaction is open, and busy_timeout
// makes the driver wait for the writer lock instead of failing immediately.
// Contention that outlives the timeout surfaces as SQLITE_BUSY and is handled
// by the RunInTx retry combinator.
func NewDatabase(path string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// WAL supports concurrent readers but still a single writer; a small pool
	// keeps reads parallel without piling writers onto the lock.
	sqlDB.SetMaxOpenConns(8)
	sqlDB.SetMaxIdleConns(4)

	if err := db.AutoMigrate(
		&model.Producto{},
		&model.Cliente{},
		&model.Pedido{},
		&model.PedidoItem{},
		&model.Usuario{},
		&model.TokenRevocado{},
		&model.Auditoria{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	return db, nil
}
