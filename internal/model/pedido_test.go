package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEstadoValido(t *testing.T) {
	for _, ok := range []string{"pendiente", "preparando", "entregado", "cancelado", "confirmado", "enviado"} {
		assert.True(t, EstadoValido(ok), ok)
	}
	// Retired intermediate names stay dead.
	for _, malo := range []string{"listo", "en_camino", "Pendiente", "PENDIENTE", "", "pendiente "} {
		assert.False(t, EstadoValido(malo), malo)
	}
}

func TestEstadoTerminal(t *testing.T) {
	assert.True(t, EstadoTerminal(EstadoEntregado))
	assert.True(t, EstadoTerminal(EstadoCancelado))
	assert.False(t, EstadoTerminal(EstadoPendiente))
	assert.False(t, EstadoTerminal(EstadoPreparando))
	assert.False(t, EstadoTerminal(EstadoConfirmado))
}

func TestBajoMinimo(t *testing.T) {
	p := Producto{Stock: decimal.NewFromInt(5), StockMinimo: decimal.NewFromInt(5)}
	assert.True(t, p.BajoMinimo())

	p.Stock = decimal.NewFromInt(6)
	assert.False(t, p.BajoMinimo())

	p.Stock = decimal.NewFromInt(-1)
	assert.True(t, p.BajoMinimo())
}
