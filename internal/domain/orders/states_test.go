package orders_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/comercia/pedidos-api/internal/domain/entity"
	"github.com/comercia/pedidos-api/internal/domain/orders"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{entity.OrderStatusGenerado, entity.OrderStatusSeparado, true},
		{entity.OrderStatusGenerado, entity.OrderStatusFacturado, false},
		{entity.OrderStatusGenerado, entity.OrderStatusCancelado, false},
		{entity.OrderStatusSeparado, entity.OrderStatusFacturado, true},
		{entity.OrderStatusSeparado, entity.OrderStatusCancelado, true},
		{entity.OrderStatusSeparado, entity.OrderStatusEnviado, false},
		{entity.OrderStatusFacturado, entity.OrderStatusEnviado, true},
		{entity.OrderStatusFacturado, entity.OrderStatusCancelado, true},
		{entity.OrderStatusFacturado, entity.OrderStatusSeparado, false},
		{entity.OrderStatusEnviado, entity.OrderStatusCancelado, false},
		{entity.OrderStatusCancelado, entity.OrderStatusSeparado, false},
		{"DESCONOCIDO", entity.OrderStatusSeparado, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, orders.CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, orders.IsTerminal(entity.OrderStatusEnviado))
	assert.True(t, orders.IsTerminal(entity.OrderStatusCancelado))
	assert.False(t, orders.IsTerminal(entity.OrderStatusGenerado))
	assert.False(t, orders.IsTerminal(entity.OrderStatusSeparado))
	assert.False(t, orders.IsTerminal(entity.OrderStatusFacturado))
	assert.False(t, orders.IsTerminal("DESCONOCIDO"), "estado desconocido no es terminal")
}

func TestCurrentState_SinEventosEsGenerado(t *testing.T) {
	assert.Equal(t, entity.OrderStatusGenerado, orders.CurrentState(nil))
}

func TestCurrentState_TomaElEventoMasReciente(t *testing.T) {
	now := time.Now()
	events := []*entity.StatusEvent{
		{OrderID: "p1", Estado: entity.OrderStatusSeparado, CreatedAt: now},
		{OrderID: "p1", Estado: entity.OrderStatusFacturado, CreatedAt: now.Add(time.Minute)},
	}
	assert.Equal(t, entity.OrderStatusFacturado, orders.CurrentState(events))
	assert.True(t, orders.HasState(events, entity.OrderStatusSeparado))
	assert.False(t, orders.HasState(events, entity.OrderStatusCancelado))
}
