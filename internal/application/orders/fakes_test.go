package orders_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comercia/pedidos-api/internal/application/dto"
	"github.com/comercia/pedidos-api/internal/domain"
	"github.com/comercia/pedidos-api/internal/domain/entity"
	"github.com/comercia/pedidos-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria con semántica transaccional: el fakeTxRunner toma una
// copia antes de ejecutar el callback y la restaura completa si este falla,
// igual que un rollback de PostgreSQL.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	orders    map[string]entity.Order
	lines     map[string][]entity.OrderLine
	events    map[string][]entity.StatusEvent
	inventory map[string]entity.InventoryRecord // companyID + "|" + productID
	movements []entity.Movement
	cartera   []entity.CarteraMovement
	receipts  map[string]entity.Receipt
	details   []entity.ReceiptDetail
	clients   map[string]entity.Client
	products  map[string]entity.Product
}

func newMemStore() *memStore {
	return &memStore{
		orders:    map[string]entity.Order{},
		lines:     map[string][]entity.OrderLine{},
		events:    map[string][]entity.StatusEvent{},
		inventory: map[string]entity.InventoryRecord{},
		receipts:  map[string]entity.Receipt{},
		clients:   map[string]entity.Client{},
		products:  map[string]entity.Product{},
	}
}

func invKey(companyID, productID string) string { return companyID + "|" + productID }

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]entity.OrderLine(nil), v...)
	}
	for k, v := range s.events {
		c.events[k] = append([]entity.StatusEvent(nil), v...)
	}
	for k, v := range s.inventory {
		c.inventory[k] = v
	}
	c.movements = append([]entity.Movement(nil), s.movements...)
	c.cartera = append([]entity.CarteraMovement(nil), s.cartera...)
	for k, v := range s.receipts {
		c.receipts[k] = v
	}
	c.details = append([]entity.ReceiptDetail(nil), s.details...)
	for k, v := range s.clients {
		c.clients[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	return c
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios fake sobre el almacén
// ──────────────────────────────────────────────────────────────────────────────

type fakeOrderRepo struct{ s *memStore }

var _ repository.OrderRepository = (*fakeOrderRepo)(nil)

func (r *fakeOrderRepo) Create(o *entity.Order) error {
	r.s.orders[o.ID] = *o
	return nil
}

func (r *fakeOrderRepo) GetByID(id string) (*entity.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := o
	return &cp, nil
}

// GetForUpdate no bloquea nada en memoria; los tests son secuenciales.
func (r *fakeOrderRepo) GetForUpdate(id string) (*entity.Order, error) { return r.GetByID(id) }

func (r *fakeOrderRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.s.orders {
		if o.CompanyID == companyID {
			cp := o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) CreateLine(l *entity.OrderLine) error {
	r.s.lines[l.OrderID] = append(r.s.lines[l.OrderID], *l)
	return nil
}

func (r *fakeOrderRepo) GetLines(orderID string) ([]*entity.OrderLine, error) {
	var out []*entity.OrderLine
	for _, l := range r.s.lines[orderID] {
		cp := l
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeOrderRepo) DeleteLines(orderID string) error {
	delete(r.s.lines, orderID)
	return nil
}

func (r *fakeOrderRepo) AppendStatusEvent(ev *entity.StatusEvent) error {
	r.s.events[ev.OrderID] = append(r.s.events[ev.OrderID], *ev)
	return nil
}

func (r *fakeOrderRepo) ListStatusEvents(orderID string) ([]*entity.StatusEvent, error) {
	var out []*entity.StatusEvent
	for _, ev := range r.s.events[orderID] {
		cp := ev
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateTotal(orderID string, total decimal.Decimal) error {
	o, ok := r.s.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Total = total
	r.s.orders[orderID] = o
	return nil
}

func (r *fakeOrderRepo) UpdateShipment(orderID, guia string, flete decimal.Decimal, fechaEnvio time.Time) error {
	o, ok := r.s.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Guia = guia
	o.Flete = flete
	o.FechaEnvio = &fechaEnvio
	r.s.orders[orderID] = o
	return nil
}

type fakeInventoryRepo struct{ s *memStore }

var _ repository.InventoryRepository = (*fakeInventoryRepo)(nil)

func (r *fakeInventoryRepo) Get(companyID, productID string) (*entity.InventoryRecord, error) {
	rec, ok := r.s.inventory[invKey(companyID, productID)]
	if !ok {
		return nil, nil
	}
	cp := rec
	return &cp, nil
}

func (r *fakeInventoryRepo) EnsureExists(companyID, productID string, initial decimal.Decimal) error {
	key := invKey(companyID, productID)
	if _, ok := r.s.inventory[key]; ok {
		return nil
	}
	r.s.inventory[key] = entity.InventoryRecord{
		CompanyID:       companyID,
		ProductID:       productID,
		StockReferencia: initial,
		StockActual:     initial,
		UpdatedAt:       time.Now(),
	}
	return nil
}

func (r *fakeInventoryRepo) Decrement(companyID, productID string, quantity decimal.Decimal) error {
	key := invKey(companyID, productID)
	rec, ok := r.s.inventory[key]
	if !ok {
		return &domain.MissingInventoryRecordError{ProductID: productID}
	}
	if rec.StockActual.LessThan(quantity) {
		return &domain.InsufficientStockError{ProductID: productID, Requested: quantity}
	}
	rec.StockActual = rec.StockActual.Sub(quantity)
	r.s.inventory[key] = rec
	return nil
}

func (r *fakeInventoryRepo) Credit(companyID, productID string, quantity decimal.Decimal) error {
	key := invKey(companyID, productID)
	rec, ok := r.s.inventory[key]
	if !ok {
		return &domain.MissingInventoryRecordError{ProductID: productID}
	}
	rec.StockActual = rec.StockActual.Add(quantity)
	r.s.inventory[key] = rec
	return nil
}

func (r *fakeInventoryRepo) CreditPurchase(companyID, productID string, quantity decimal.Decimal) error {
	key := invKey(companyID, productID)
	rec, ok := r.s.inventory[key]
	if !ok {
		return &domain.MissingInventoryRecordError{ProductID: productID}
	}
	rec.StockActual = rec.StockActual.Add(quantity)
	rec.StockReferencia = rec.StockReferencia.Add(quantity)
	r.s.inventory[key] = rec
	return nil
}

func (r *fakeInventoryRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	var out []*entity.InventoryRecord
	for _, rec := range r.s.inventory {
		if rec.CompanyID == companyID {
			cp := rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeMovementRepo struct{ s *memStore }

var _ repository.MovementRepository = (*fakeMovementRepo)(nil)

func (r *fakeMovementRepo) Create(m *entity.Movement) error {
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *fakeMovementRepo) ListByProduct(companyID, productID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.s.movements {
		if m.CompanyID == companyID && m.ProductID == productID {
			cp := m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) ListByOrder(orderID string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.s.movements {
		if m.OrderID != nil && *m.OrderID == orderID {
			cp := m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) SumByOrder(orderID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.s.movements {
		if m.OrderID != nil && *m.OrderID == orderID {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum, nil
}

type fakeCarteraRepo struct{ s *memStore }

var _ repository.CarteraRepository = (*fakeCarteraRepo)(nil)

func (r *fakeCarteraRepo) Create(m *entity.CarteraMovement) error {
	r.s.cartera = append(r.s.cartera, *m)
	return nil
}

func (r *fakeCarteraRepo) DeleteByOrder(orderID string) error {
	kept := r.s.cartera[:0]
	for _, m := range r.s.cartera {
		if m.OrderID != orderID {
			kept = append(kept, m)
		}
	}
	r.s.cartera = kept
	return nil
}

func (r *fakeCarteraRepo) ListByClient(companyID, clientID string, limit, offset int) ([]*entity.CarteraMovement, error) {
	var out []*entity.CarteraMovement
	for _, m := range r.s.cartera {
		if m.CompanyID == companyID && m.ClientID == clientID {
			cp := m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCarteraRepo) ListByOrder(orderID string) ([]*entity.CarteraMovement, error) {
	var out []*entity.CarteraMovement
	for _, m := range r.s.cartera {
		if m.OrderID == orderID {
			cp := m
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeReceiptRepo struct{ s *memStore }

var _ repository.ReceiptRepository = (*fakeReceiptRepo)(nil)

func (r *fakeReceiptRepo) Create(rec *entity.Receipt) error {
	r.s.receipts[rec.ID] = *rec
	return nil
}

func (r *fakeReceiptRepo) GetByID(id string) (*entity.Receipt, error) {
	rec, ok := r.s.receipts[id]
	if !ok {
		return nil, nil
	}
	cp := rec
	return &cp, nil
}

func (r *fakeReceiptRepo) CreateDetail(d *entity.ReceiptDetail) error {
	r.s.details = append(r.s.details, *d)
	return nil
}

func (r *fakeReceiptRepo) ListDetails(receiptID string) ([]*entity.ReceiptDetail, error) {
	var out []*entity.ReceiptDetail
	for _, d := range r.s.details {
		if d.ReceiptID == receiptID {
			cp := d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeReceiptRepo) SumAppliedByOrder(orderID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, d := range r.s.details {
		if d.OrderID == orderID {
			sum = sum.Add(d.Amount)
		}
	}
	return sum, nil
}

func (r *fakeReceiptRepo) HasAllocations(orderID string) (bool, error) {
	for _, d := range r.s.details {
		if d.OrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

type fakeClientRepo struct{ s *memStore }

var _ repository.ClientRepository = (*fakeClientRepo)(nil)

func (r *fakeClientRepo) Create(c *entity.Client) error {
	r.s.clients[c.ID] = *c
	return nil
}

func (r *fakeClientRepo) GetByID(id string) (*entity.Client, error) {
	c, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	cp := c
	return &cp, nil
}

func (r *fakeClientRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Client, error) {
	var out []*entity.Client
	for _, c := range r.s.clients {
		if c.CompanyID == companyID {
			cp := c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeProductRepo struct{ s *memStore }

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

func (r *fakeProductRepo) Create(p *entity.Product) error {
	r.s.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

func (r *fakeProductRepo) GetByCompanyAndSKU(companyID, sku string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.CompanyID == companyID && p.SKU == sku {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.CompanyID == companyID {
			cp := p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// TxRunner fake con rollback por restauración del almacén
// ──────────────────────────────────────────────────────────────────────────────

type fakeTxRunner struct{ s *memStore }

func (r *fakeTxRunner) RunOrder(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	invRepo repository.InventoryRepository,
	movRepo repository.MovementRepository,
	carteraRepo repository.CarteraRepository,
	receiptRepo repository.ReceiptRepository,
) error) error {
	backup := r.s.clone()
	err := fn(
		&fakeOrderRepo{s: r.s},
		&fakeInventoryRepo{s: r.s},
		&fakeMovementRepo{s: r.s},
		&fakeCarteraRepo{s: r.s},
		&fakeReceiptRepo{s: r.s},
	)
	if err != nil {
		*r.s = *backup
	}
	return err
}

func (r *fakeTxRunner) RunPayment(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	receiptRepo repository.ReceiptRepository,
) error) error {
	backup := r.s.clone()
	err := fn(&fakeOrderRepo{s: r.s}, &fakeReceiptRepo{s: r.s})
	if err != nil {
		*r.s = *backup
	}
	return err
}

func (r *fakeTxRunner) RunInventory(ctx context.Context, fn func(
	invRepo repository.InventoryRepository,
	movRepo repository.MovementRepository,
) error) error {
	backup := r.s.clone()
	err := fn(&fakeInventoryRepo{s: r.s}, &fakeMovementRepo{s: r.s})
	if err != nil {
		*r.s = *backup
	}
	return err
}

// ──────────────────────────────────────────────────────────────────────────────
// Notificador de captura: el caso de uso lo invoca en una goroutine post-commit,
// así que la captura sincroniza por canal.
// ──────────────────────────────────────────────────────────────────────────────

type captureNotifier struct {
	mu    sync.Mutex
	snaps []*dto.OrderSnapshot
	ch    chan *dto.OrderSnapshot
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{ch: make(chan *dto.OrderSnapshot, 8)}
}

func (n *captureNotifier) OrderInvoiced(snapshot *dto.OrderSnapshot) {
	n.mu.Lock()
	n.snaps = append(n.snaps, snapshot)
	n.mu.Unlock()
	n.ch <- snapshot
}

// waitSnapshot espera la notificación post-commit o falla por timeout.
func (n *captureNotifier) waitSnapshot(t *testing.T) *dto.OrderSnapshot {
	t.Helper()
	select {
	case snap := <-n.ch:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó la notificación de facturación")
		return nil
	}
}

// assertNoSnapshot verifica que no hubo notificación.
func (n *captureNotifier) assertNoSnapshot(t *testing.T) {
	t.Helper()
	select {
	case <-n.ch:
		t.Fatal("hubo notificación cuando no debía haberla")
	case <-time.After(50 * time.Millisecond):
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }
