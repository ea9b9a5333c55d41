package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comercia/pedidos-api/internal/application/dto"
	"github.com/comercia/pedidos-api/internal/application/orders"
	"github.com/comercia/pedidos-api/internal/domain"
	"github.com/comercia/pedidos-api/internal/domain/entity"
)

const (
	testCompanyID = "co-1"
	testUserID    = "u-1"
	testClientID  = "cl-1"
	productA      = "p-1"
	productB      = "p-2"
)

type fixture struct {
	store    *memStore
	uc       *orders.LifecycleUseCase
	notifier *captureNotifier
}

// newFixture arma el almacén con una empresa, un cliente, dos productos con
// precio de catálogo y stock cargado: productA a 100 con stock 10, productB a
// 50 con stock 5.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	now := time.Now()
	store.clients[testClientID] = entity.Client{
		ID: testClientID, CompanyID: testCompanyID, Name: "Distribuidora El Prado",
		CreatedAt: now, UpdatedAt: now,
	}
	store.products[productA] = entity.Product{
		ID: productA, CompanyID: testCompanyID, SKU: "SKU-A", Name: "Producto A",
		Price: d("100"), CreatedAt: now, UpdatedAt: now,
	}
	store.products[productB] = entity.Product{
		ID: productB, CompanyID: testCompanyID, SKU: "SKU-B", Name: "Producto B",
		Price: d("50"), CreatedAt: now, UpdatedAt: now,
	}
	store.inventory[invKey(testCompanyID, productA)] = entity.InventoryRecord{
		CompanyID: testCompanyID, ProductID: productA,
		StockReferencia: d("10"), StockActual: d("10"), UpdatedAt: now,
	}
	store.inventory[invKey(testCompanyID, productB)] = entity.InventoryRecord{
		CompanyID: testCompanyID, ProductID: productB,
		StockReferencia: d("5"), StockActual: d("5"), UpdatedAt: now,
	}

	notifier := newCaptureNotifier()
	uc := orders.NewLifecycleUseCase(
		&fakeTxRunner{s: store},
		&fakeOrderRepo{s: store},
		&fakeClientRepo{s: store},
		&fakeProductRepo{s: store},
		notifier,
	)
	return &fixture{store: store, uc: uc, notifier: notifier}
}

// createOrder crea un pedido de dos líneas: 2 x productA (catálogo 100) y
// 3 x productB (catálogo 50). Total 350.
func (f *fixture) createOrder(t *testing.T) string {
	t.Helper()
	resp, err := f.uc.CreateOrder(context.Background(), testCompanyID, testUserID, dto.CreateOrderRequest{
		ClientID: testClientID,
		Lines: []dto.OrderLineRequest{
			{ProductID: productA, Quantity: d("2")},
			{ProductID: productB, Quantity: d("3")},
		},
	})
	require.NoError(t, err)
	return resp.ID
}

func (f *fixture) advance(t *testing.T, orderID, target string) (*dto.OrderStateResult, error) {
	t.Helper()
	in := dto.AdvanceOrderRequest{TargetState: target}
	if target == entity.OrderStatusEnviado {
		in.Shipment = &dto.ShipmentMeta{Guia: "GU-123", Flete: d("15")}
	}
	return f.uc.Advance(context.Background(), testCompanyID, testUserID, orderID, in)
}

func (f *fixture) stock(productID string) string {
	return f.store.inventory[invKey(testCompanyID, productID)].StockActual.String()
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_CongelaPrecioYCalculaTotal(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t)

	order, err := f.uc.GetOrder(context.Background(), testCompanyID, id)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusGenerado, order.Estado, "sin eventos el estado es GENERADO")
	assert.Equal(t, "350", order.Total.String(), "2x100 + 3x50")

	// Crear no toca inventario ni cartera
	assert.Equal(t, "10", f.stock(productA))
	assert.Equal(t, "5", f.stock(productB))
	assert.Empty(t, f.store.cartera)
	assert.Empty(t, f.store.movements)
}

func TestCreateOrder_PrecioExplicitoGanaSobreCatalogo(t *testing.T) {
	f := newFixture(t)
	resp, err := f.uc.CreateOrder(context.Background(), testCompanyID, testUserID, dto.CreateOrderRequest{
		ClientID: testClientID,
		Lines: []dto.OrderLineRequest{
			{ProductID: productA, Quantity: d("1"), UnitPrice: d("80")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "80", resp.Total.String())
}

func TestCreateOrder_SinLineasFalla(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.CreateOrder(context.Background(), testCompanyID, testUserID, dto.CreateOrderRequest{
		ClientID: testClientID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// SEPARADO
// ──────────────────────────────────────────────────────────────────────────────

func TestAdvance_Separado_NoTocaInventario(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t)

	result, err := f.advance(t, id, entity.OrderStatusSeparado)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusSeparado, result.Estado)

	assert.Equal(t, "10", f.stock(productA), "apartar no descuenta stock")
	assert.Equal(t, "5", f.stock(productB))
	assert.Empty(t, f.store.movements)
	assert.Empty(t, f.store.cartera)
}

// ──────────────────────────────────────────────────────────────────────────────
// FACTURADO
// ──────────────────────────────────────────────────────────────────────────────

func TestAdvance_Facturado_DescuentaStockYCargaCartera(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t)
	_, err := f.advance(t, id, entity.OrderStatusSeparado)
	require.NoError(t, err)

	result, err := f.advance(t, id, entity.OrderStatusFacturado)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusFacturado, result.Estado)

	assert.Equal(t, "8", f.stock(productA), "10 - 2")
	assert.Equal(t, "2", f.stock(productB), "5 - 3")

	// Un movimiento SALIDA por línea, con cantidad negativa y ligado al pedido
	require.Len(t, f.store.movements, 2)
	for _, m := range f.store.movements {
		assert.Equal(t, entity.MovementTypeSalida, m.Type)
		assert.True(t, m.Quantity.IsNegative())
		require.NotNil(t, m.OrderID)
		assert.Equal(t, id, *m.OrderID)
	}

	// Un cargo en cartera por el total
	require.Len(t, f.store.cartera, 1)
	assert.Equal(t, "350", f.store.cartera[0].Amount.String())
	assert.Equal(t, testClientID, f.store.cartera[0].ClientID)
	assert.Equal(t, entity.CarteraOrigenFactura, f.store.cartera[0].Origin)

	// Notificación post-commit con el snapshot del pedido
	snap := f.notifier.waitSnapshot(t)
	assert.Equal(t, id, snap.OrderID)
	assert.Equal(t, "Distribuidora El Prado", snap.ClientName)
	assert.Equal(t, "350", snap.Total.String())
	assert.Len(t, snap.Lines, 2)
}

func TestAdvance_Facturado_StockInsuficienteNoDejaRastro(t *testing.T) {
	f := newFixture(t)
	resp, err := f.uc.CreateOrder(context.Background(), testCompanyID, testUserID, dto.CreateOrderRequest{
		ClientID: testClientID,
		Lines: []dto.OrderLineRequest{
			{ProductID: productA, Quantity: d("1")},
			{ProductID: productB, Quantity: d("6")}, // stock 5
		},
	})
	require.NoError(t, err)
	_, err = f.advance(t, resp.ID, entity.OrderStatusSeparado)
	require.NoError(t, err)

	_, err = f.advance(t, resp.ID, entity.OrderStatusFacturado)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, productB, insufficient.ProductID, "el error señala el producto que falló")

	// Rollback completo: ni el débito de productA sobrevive
	assert.Equal(t, "10", f.stock(productA))
	assert.Equal(t, "5", f.stock(productB))
	assert.Empty(t, f.store.movements)
	assert.Empty(t, f.store.cartera)

	// El estado no avanzó
	order, err := f.uc.GetOrder(context.Background(), testCompanyID, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusSeparado, order.Estado)

	f.notifier.assertNoSnapshot(t)
}

func TestAdvance_Facturado_ProductoSinInventarioFalla(t *testing.T) {
	f := newFixture(t)
	// productB sin registro de inventario
	delete(f.store.inventory, invKey(testCompanyID, productB))

	id := f.createOrder(t)
	_, err := f.advance(t, id, entity.OrderStatusSeparado)
	require.NoError(t, err)

	_, err = f.advance(t, id, entity.OrderStatusFacturado)
	assert.ErrorIs(t, err, domain.ErrMissingInventoryRecord,
		"facturar nunca crea registros de inventario de forma implícita")
	assert.Equal(t, "10", f.stock(productA), "rollback del débito de la primera línea")
}

func TestAdvance_Facturado_ContencionPorProductoCompartido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Dos pedidos de 3 x productB cada uno contra stock 5: cada uno cabe solo,
	// juntos no. El débito condicional decide quién gana.
	var ids []string
	for i := 0; i < 2; i++ {
		resp, err := f.uc.CreateOrder(ctx, testCompanyID, testUserID, dto.CreateOrderRequest{
			ClientID: testClientID,
			Lines:    []dto.OrderLineRequest{{ProductID: productB, Quantity: d("3")}},
		})
		require.NoError(t, err)
		_, err = f.advance(t, resp.ID, entity.OrderStatusSeparado)
		require.NoError(t, err)
		ids = append(ids, resp.ID)
	}

	var facturados, rechazados int
	for _, id := range ids {
		if _, err := f.advance(t, id, entity.OrderStatusFacturado); err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			rechazados++
		} else {
			facturados++
		}
	}
	assert.Equal(t, 1, facturados, "exactamente un pedido factura")
	assert.Equal(t, 1, rechazados, "el otro falla por stock insuficiente")

	// El stock refleja un solo débito; el perdedor no dejó rastro
	assert.Equal(t, "2", f.stock(productB))
	assert.Len(t, f.store.movements, 1)
	assert.Len(t, f.store.cartera, 1)

	f.notifier.waitSnapshot(t)
	f.notifier.assertNoSnapshot(t)
}

// ──────────────────────────────────────────────────────────────────────────────
// ENVIADO
// ──────────────────────────────────────────────────────────────────────────────

func TestAdvance_Enviado_ExigeMetadatosDeEnvio(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t)
	_, err := f.advance(t, id, entity.OrderStatusSeparado)
	require.NoError(t, err)
	_, err = f.advance(t, id, entity.OrderStatusFacturado)
	require.NoError(t, err)
	f.notifier.waitSnapshot(t)

	// Sin guía: rechazado antes de tocar nada
	_, err = f.uc.Advance(context.Background(), testCompanyID, testUserID, id,
		dto.AdvanceOrderRequest{TargetState: entity.OrderStatusEnviado})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	result, err := f.advance(t, id, entity.OrderStatusEnviado)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusEnviado, result.Estado)

	order := f.store.orders[id]
	assert.Equal(t, "GU-123", order.Guia)
	assert.Equal(t, "15", order.Flete.String())
	require.NotNil(t, order.FechaEnvio)
}

func TestAdvance_Enviado_FleteNegativoRechazado(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t)
	_, err := f.advance(t, id, entity.OrderStatusSeparado)
	require.NoError(t, err)
	_, err = f.advance(t, id, entity.OrderStatusFacturado)
	require.NoError(t, err)
	f.notifier.waitSnapshot(t)

	_, err = f.uc.Advance(context.Background(), testCompanyID, testUserID, id, dto.AdvanceOrderRequest{
		TargetState: entity.OrderStatusEnviado,
		Shipment:    &dto.ShipmentMeta{Guia: "GU-123", Flete: d("-1")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Flete cero sí vale: envío gratis
	result, err := f.uc.Advance(context.Background(), testCompanyID, testUserID, id, dto.AdvanceOrderRequest{
		TargetState: entity.OrderStatusEnviado,
		Shipment:    &dto.ShipmentMeta{Guia: "GU-123", Flete: d("0")},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusEnviado, result.Estado)
	assert.True(t, f.store.orders[id].Flete.IsZero())
}

func TestAdvance_MetadatosDeEnvioSoloValenParaEnviado(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t)

	_, err := f.uc.Advance(context.Background(), testCompanyID, testUserID, id, dto.AdvanceOrderRequest{
		TargetState: entity.OrderStatusSeparado,
		Shipment:    &dto.ShipmentMeta{Guia: "GU-999"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput,
		"metadatos de envío en una transición distinta de ENVIADO se rechazan")
}

// ──────────────────────────────────────────────────────────────────────────────
// CANCELADO
// ──────────────────────────────────────────────────────────────────────────────

func TestAdvance_CanceladoTrasFacturar_RestauraStockYBorraCartera(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t)
	_, err := f.advance(t, id, entity.OrderStatusSeparado)
	require.NoError(t, err)
	_, err = f.advance(t, id, entity.OrderStatusFacturado)
	require.NoError(t, err)
	f.notifier.waitSnapshot(t)

	result, err := f.advance(t, id, entity.OrderStatusCancelado)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelado, result.Estado)
	assert.True(t, result.Total.IsZero(), "cancelar deja el total en cero")

	// Stock restaurado
	assert.Equal(t, "10", f.stock(productA))
	assert.Equal(t, "5", f.stock(productB))

	// La cartera del pedido desaparece
	assert.Empty(t, f.store.cartera)

	// El log conserva los 4 movimientos (2 SALIDA + 2 ENTRADA) con neto cero
	require.Len(t, f.store.movements, 4)
	sum, err := (&fakeMovementRepo{s: f.store}).SumByOrder(id)
	require.NoError(t, err)
	assert.True(t, sum.IsZero(), "la suma de movimientos del pedido es cero tras el ciclo")
}

func TestAdvance_CanceladoDesdeSeparado_NoAcreditaNada(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t)
	_, err := f.advance(t, id, entity.OrderStatusSeparado)
	require.NoError(t, err)

	result, err := f.advance(t, id, entity.OrderStatusCancelado)
	require.NoError(t, err)
	assert.True(t, result.Total.IsZero())

	// Nada se había debitado, nada se acredita
	assert.Equal(t, "10", f.stock(productA))
	assert.Equal(t, "5", f.stock(productB))
	assert.Empty(t, f.store.movements)
}

func TestAdvance_CanceladoConAbonos_Bloqueado(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t)
	_, err := f.advance(t, id, entity.OrderStatusSeparado)
	require.NoError(t, err)
	_, err = f.advance(t, id, entity.OrderStatusFacturado)
	require.NoError(t, err)
	f.notifier.waitSnapshot(t)

	// Simular un abono aplicado al pedido
	f.store.details = append(f.store.details, entity.ReceiptDetail{
		ID: "det-1", ReceiptID: "rec-1", OrderID: id,
		Amount: d("100"), Estado: entity.ReciboEstadoParcial,
		SaldoPendiente: d("250"), CreatedAt: time.Now(),
	})

	_, err = f.advance(t, id, entity.OrderStatusCancelado)
	assert.ErrorIs(t, err, domain.ErrOrderHasPayments,
		"un pedido con abonos no se cancela; primero se reversa el recibo")

	// Nada cambió
	assert.Equal(t, "8", f.stock(productA))
	require.Len(t, f.store.cartera, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Guardas de la máquina de estados
// ──────────────────────────────────────────────────────────────────────────────

func TestAdvance_TransicionDuplicada(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t)
	_, err := f.advance(t, id, entity.OrderStatusSeparado)
	require.NoError(t, err)

	_, err = f.advance(t, id, entity.OrderStatusSeparado)
	assert.ErrorIs(t, err, domain.ErrDuplicateTransition)
}

func TestAdvance_FacturadoDosVeces_NoDebitaDoble(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t)
	_, err := f.advance(t, id, entity.OrderStatusSeparado)
	require.NoError(t, err)
	_, err = f.advance(t, id, entity.OrderStatusFacturado)
	require.NoError(t, err)
	f.notifier.waitSnapshot(t)

	_, err = f.advance(t, id, entity.OrderStatusFacturado)
	assert.ErrorIs(t, err, domain.ErrDuplicateTransition)

	assert.Equal(t, "8", f.stock(productA), "el stock se debitó exactamente una vez")
	require.Len(t, f.store.cartera, 1, "la cartera se cargó exactamente una vez")
	f.notifier.assertNoSnapshot(t)
}

func TestAdvance_TransicionesInvalidas(t *testing.T) {
	cases := []struct {
		name   string
		setup  []string
		target string
	}{
		{"generado a facturado salta separado", nil, entity.OrderStatusFacturado},
		{"generado a enviado", nil, entity.OrderStatusEnviado},
		{"generado a cancelado", nil, entity.OrderStatusCancelado},
		{"separado a enviado salta facturado", []string{entity.OrderStatusSeparado}, entity.OrderStatusEnviado},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			id := f.createOrder(t)
			for _, st := range tc.setup {
				_, err := f.advance(t, id, st)
				require.NoError(t, err)
			}
			_, err := f.advance(t, id, tc.target)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		})
	}
}

func TestAdvance_EstadosTerminalesNoAdmitenNada(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t)
	for _, st := range []string{entity.OrderStatusSeparado, entity.OrderStatusFacturado, entity.OrderStatusEnviado} {
		_, err := f.advance(t, id, st)
		require.NoError(t, err)
	}
	f.notifier.waitSnapshot(t)

	_, err := f.advance(t, id, entity.OrderStatusCancelado)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "ENVIADO es terminal")
}

func TestAdvance_GeneradoNoEsDestino(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t)
	_, err := f.advance(t, id, entity.OrderStatusGenerado)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdvance_PedidoDeOtraEmpresa(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t)
	_, err := f.uc.Advance(context.Background(), "co-otra", testUserID, id,
		dto.AdvanceOrderRequest{TargetState: entity.OrderStatusSeparado})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAdvance_PedidoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Advance(context.Background(), testCompanyID, testUserID, "no-existe",
		dto.AdvanceOrderRequest{TargetState: entity.OrderStatusSeparado})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
