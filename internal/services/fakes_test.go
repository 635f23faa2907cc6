package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"woosync/internal/locking"
	"woosync/internal/models"
	"woosync/internal/repositories"
	"woosync/internal/woocommerce"

	"github.com/google/uuid"
)

// In-memory repositories with the same conflict and cleanup rules as the SQL ones.

type memStoreRepo struct {
	mu        sync.Mutex
	stores    map[uuid.UUID]*models.Store
	updateErr error
	listErr   error
}

func newMemStoreRepo(stores ...*models.Store) *memStoreRepo {
	r := &memStoreRepo{stores: make(map[uuid.UUID]*models.Store)}
	for _, s := range stores {
		r.stores[s.ID] = s
	}
	return r
}

func (r *memStoreRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memStoreRepo) List(ctx context.Context) ([]*models.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*models.Store
	for _, s := range r.stores {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memStoreRepo) UpdateCurrency(ctx context.Context, id uuid.UUID, currency string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	s, ok := r.stores[id]
	if !ok {
		return repositories.ErrNotFound
	}
	s.Currency = currency
	return nil
}

type memProductRepo struct {
	mu         sync.Mutex
	products   map[uuid.UUID]*models.Product
	replaceErr error
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*models.Product)}
}

func (r *memProductRepo) put(run models.SyncRun, p *models.Product) {
	p.StoreID = run.StoreID
	p.SyncedAt = run.Stamp
	if p.ID == uuid.Nil {
		p.ID = models.ProductIDFor(run.StoreID, p.WooID)
	}
	cp := *p
	r.products[p.ID] = &cp
}

func (r *memProductRepo) ReplaceAll(ctx context.Context, run models.SyncRun, products []*models.Product) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replaceErr != nil {
		return 0, r.replaceErr
	}
	wooIDs := make(map[int64]bool, len(products))
	for _, p := range products {
		if wooIDs[p.WooID] {
			return 0, fmt.Errorf("duplicate key value violates unique constraint: woo_id %d", p.WooID)
		}
		wooIDs[p.WooID] = true
	}
	var deleted int64
	for id, p := range r.products {
		if p.StoreID == run.StoreID {
			delete(r.products, id)
			deleted++
		}
	}
	for _, p := range products {
		r.put(run, p)
	}
	return deleted, nil
}

func (r *memProductRepo) UpsertStamped(ctx context.Context, run models.SyncRun, products []*models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range products {
		r.put(run, p)
	}
	return nil
}

func (r *memProductRepo) DeleteStale(ctx context.Context, run models.SyncRun) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, p := range r.products {
		if p.StoreID == run.StoreID && p.SyncedAt.Before(run.Stamp) {
			delete(r.products, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memProductRepo) ListByStore(ctx context.Context, storeID uuid.UUID) ([]*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Product
	for _, p := range r.products {
		if p.StoreID == storeID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WooID < out[j].WooID })
	return out, nil
}

func (r *memProductRepo) exists(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.products[id]
	return ok
}

type imageKey struct {
	productID uuid.UUID
	url       string
}

type memImageRepo struct {
	mu        sync.Mutex
	rows      map[imageKey]*models.ProductImage
	products  *memProductRepo
	upsertErr map[uuid.UUID]error
	upserts   int
}

func newMemImageRepo(products *memProductRepo) *memImageRepo {
	return &memImageRepo{
		rows:      make(map[imageKey]*models.ProductImage),
		products:  products,
		upsertErr: make(map[uuid.UUID]error),
	}
}

func (r *memImageRepo) seed(img models.ProductImage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	r.rows[imageKey{img.ProductID, img.OriginalURL}] = &img
}

func (r *memImageRepo) UpsertWoo(ctx context.Context, images []*models.ProductImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(images) == 0 {
		return nil
	}
	if err := r.upsertErr[images[0].ProductID]; err != nil {
		return err
	}
	r.upserts++
	for _, img := range images {
		key := imageKey{img.ProductID, img.OriginalURL}
		existing, ok := r.rows[key]
		if ok {
			if existing.Source != models.ImageSourceWoo {
				continue
			}
			existing.Type = img.Type
			existing.DisplayOrder = img.DisplayOrder
			existing.AltText = img.AltText
			existing.Description = img.Description
			existing.SyncedAt = img.SyncedAt
			img.ID = existing.ID
			img.Source = models.ImageSourceWoo
			continue
		}
		cp := *img
		if cp.ID == uuid.Nil {
			cp.ID = uuid.New()
		}
		cp.Source = models.ImageSourceWoo
		r.rows[key] = &cp
		img.ID = cp.ID
		img.Source = cp.Source
	}
	return nil
}

func (r *memImageRepo) DeleteStaleWoo(ctx context.Context, productID uuid.UUID, stamp time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for key, img := range r.rows {
		if img.ProductID == productID && img.Source == models.ImageSourceWoo && img.SyncedAt.Before(stamp) {
			delete(r.rows, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memImageRepo) DeleteOrphanedWoo(ctx context.Context, storeID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for key, img := range r.rows {
		if img.StoreID == storeID && img.Source == models.ImageSourceWoo && !r.products.exists(img.ProductID) {
			delete(r.rows, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memImageRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error) {
	return r.filter(func(img *models.ProductImage) bool { return img.ProductID == productID }), nil
}

func (r *memImageRepo) ListByStore(ctx context.Context, storeID uuid.UUID) ([]*models.ProductImage, error) {
	return r.filter(func(img *models.ProductImage) bool { return img.StoreID == storeID }), nil
}

func (r *memImageRepo) filter(keep func(*models.ProductImage) bool) []*models.ProductImage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ProductImage
	for _, img := range r.rows {
		if keep(img) {
			cp := *img
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].OriginalURL < out[j].OriginalURL
	})
	return out
}

type fakeCatalog struct {
	mu          sync.Mutex
	products    []woocommerce.Product
	fetchErr    error
	currency    string
	currencyErr error
	fetches     int
}

func (c *fakeCatalog) FetchProducts(ctx context.Context) ([]woocommerce.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches++
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	out := make([]woocommerce.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

func (c *fakeCatalog) FetchCurrency(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currency, c.currencyErr
}

type memLocker struct {
	mu   sync.Mutex
	held map[uuid.UUID]bool
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[uuid.UUID]bool)}
}

func (l *memLocker) Acquire(ctx context.Context, storeID uuid.UUID, ttl time.Duration) (locking.Lease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[storeID] {
		return nil, locking.ErrLocked
	}
	l.held[storeID] = true
	return &memLease{locker: l, storeID: storeID}, nil
}

func (l *memLocker) isHeld(storeID uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[storeID]
}

type memLease struct {
	locker  *memLocker
	storeID uuid.UUID
}

func (l *memLease) Release(ctx context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()
	delete(l.locker.held, l.storeID)
	return nil
}

// tickingClock advances by step on every call.
type tickingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}
