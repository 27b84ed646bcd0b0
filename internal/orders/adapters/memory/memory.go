// Package memory provides in-process implementations of the order ports,
// used for local development without Postgres and as test doubles.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"storefront/internal/orders/domain"
	"storefront/internal/orders/ports"
)

// Store holds orders, products and counters behind a single lock.
// RunInTx serialises transactions and restores a snapshot when fn fails.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	orders      map[uint]*domain.Order
	products    map[uint]domain.Product
	counters    map[int]int64
	nextOrderID uint
	nextEntryID uint
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		orders:      make(map[uint]*domain.Order),
		products:    make(map[uint]domain.Product),
		counters:    make(map[int]int64),
		nextOrderID: 1,
		nextEntryID: 1,
	}
}

type snapshot struct {
	orders      map[uint]*domain.Order
	products    map[uint]domain.Product
	counters    map[int]int64
	nextOrderID uint
	nextEntryID uint
}

// RunInTx implements ports.Transactor
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		orders:      make(map[uint]*domain.Order, len(s.orders)),
		products:    make(map[uint]domain.Product, len(s.products)),
		counters:    make(map[int]int64, len(s.counters)),
		nextOrderID: s.nextOrderID,
		nextEntryID: s.nextEntryID,
	}
	for id, o := range s.orders {
		snap.orders[id] = cloneOrder(o)
	}
	for id, p := range s.products {
		snap.products[id] = p
	}
	for y, v := range s.counters {
		snap.counters[y] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = snap.orders
	s.products = snap.products
	s.counters = snap.counters
	s.nextOrderID = snap.nextOrderID
	s.nextEntryID = snap.nextEntryID
}

// PutProduct inserts or replaces a catalog product
func (s *Store) PutProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// DeleteProduct removes a product from the catalog
func (s *Store) DeleteProduct(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

// Orders returns the order repository view of the store
func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{store: s}
}

// Catalog returns the product catalog view of the store
func (s *Store) Catalog() *Catalog {
	return &Catalog{store: s}
}

// Counter returns the order number generator view of the store
func (s *Store) Counter() *Counter {
	return &Counter{store: s}
}

// OrderRepository implements ports.OrderRepository in memory
type OrderRepository struct {
	store *Store
}

// Create stores a new order and assigns its IDs
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	order.ID = s.nextOrderID
	s.nextOrderID++
	order.Timeline = s.assignEntryIDs(order.Timeline)
	s.orders[order.ID] = cloneOrder(order)
	return nil
}

// GetByID retrieves an order by ID
func (r *OrderRepository) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.NewOrderNotFound(id)
	}
	return cloneOrder(o), nil
}

// GetForUpdate retrieves an order by ID. Transactions are already
// serialised by the store.
func (r *OrderRepository) GetForUpdate(ctx context.Context, id uint) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

// GetForCustomer retrieves an order owned by the customer
func (r *OrderRepository) GetForCustomer(ctx context.Context, id, customerID uint) (*domain.Order, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, domain.NewOrderNotFound(id)
	}
	return o, nil
}

// SaveStatus writes status fields and appends new timeline entries
func (r *OrderRepository) SaveStatus(ctx context.Context, order *domain.Order) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[order.ID]
	if !ok {
		return domain.NewOrderNotFound(order.ID)
	}

	timeline := domain.NewTimeline(stored.Timeline.Entries())
	for _, e := range order.Timeline.Unsaved() {
		e.ID = s.nextEntryID
		s.nextEntryID++
		timeline.Append(e)
	}
	order.Timeline = domain.NewTimeline(timeline.Entries())

	stored.Status = order.Status
	stored.PaymentStatus = order.PaymentStatus
	stored.DeliveredAt = order.DeliveredAt
	stored.CancelledAt = order.CancelledAt
	stored.UpdatedAt = order.UpdatedAt
	stored.Timeline = timeline
	return nil
}

// List returns a page of orders, newest first
func (r *OrderRepository) List(ctx context.Context, filter ports.OrderFilter) ([]*domain.Order, int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Order
	for _, o := range s.orders {
		if matches(o, filter) {
			matched = append(matched, o)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}

	page := make([]*domain.Order, 0, end-start)
	for _, o := range matched[start:end] {
		page = append(page, cloneOrder(o))
	}
	return page, total, nil
}

func matches(o *domain.Order, f ports.OrderFilter) bool {
	if f.CustomerID != 0 && o.CustomerID != f.CustomerID {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(o.OrderNumber), q) &&
			!strings.Contains(strings.ToLower(o.ShippingAddress.FirstName), q) &&
			!strings.Contains(strings.ToLower(o.ShippingAddress.LastName), q) {
			return false
		}
	}
	return true
}

// assignEntryIDs gives unsaved timeline entries an ID. Caller holds s.mu.
func (s *Store) assignEntryIDs(t domain.Timeline) domain.Timeline {
	entries := t.Entries()
	for i := range entries {
		if entries[i].ID == 0 {
			entries[i].ID = s.nextEntryID
			s.nextEntryID++
		}
	}
	return domain.NewTimeline(entries)
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = make([]domain.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	cp.Timeline = domain.NewTimeline(o.Timeline.Entries())
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		cp.DeliveredAt = &t
	}
	if o.CancelledAt != nil {
		t := *o.CancelledAt
		cp.CancelledAt = &t
	}
	return &cp
}

// Catalog implements ports.ProductCatalog in memory
type Catalog struct {
	store *Store
}

// FindByID returns the product
func (c *Catalog) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	s := c.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, domain.NewProductNotFound(id)
	}
	return &p, nil
}

// AdjustStock applies delta under the store lock, refusing to go negative
func (c *Catalog) AdjustStock(ctx context.Context, id uint, delta int) (*domain.Product, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, domain.NewProductNotFound(id)
	}
	if p.Stock+delta < 0 {
		return nil, domain.NewInsufficientStock(p.ID, p.Name, -delta, p.Stock)
	}
	p.Stock += delta
	s.products[id] = p
	return &p, nil
}

// Counter implements ports.OrderNumberGenerator in memory
type Counter struct {
	store *Store
}

// NextOrderNumber allocates the next per-year order number
func (c *Counter) NextOrderNumber(ctx context.Context, year int) (string, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[year]++
	return domain.OrderNumber(year, s.counters[year]), nil
}
