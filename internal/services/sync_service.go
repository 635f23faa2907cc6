package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"woosync/internal/locking"
	"woosync/internal/models"
	"woosync/internal/repositories"
	"woosync/internal/woocommerce"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Catalog is the remote side of a store.
type Catalog interface {
	FetchProducts(ctx context.Context) ([]woocommerce.Product, error)
	FetchCurrency(ctx context.Context) (string, error)
}

// CatalogFactory builds the remote client for a store from its credentials.
type CatalogFactory func(store *models.Store) Catalog

// WooCatalogFactory returns a factory creating woocommerce clients with opts.
func WooCatalogFactory(opts woocommerce.Options, log zerolog.Logger) CatalogFactory {
	return func(store *models.Store) Catalog {
		return woocommerce.NewClient(woocommerce.Credentials{
			BaseURL: store.URL,
			Key:     store.APIKey,
			Secret:  store.APISecret,
		}, opts, log)
	}
}

type SyncOptions struct {
	ProductMode string
	LockTTL     time.Duration
	RunTimeout  time.Duration
	Concurrency int
	Now         func() time.Time
}

type StoreSyncOutcome struct {
	StoreID uuid.UUID
	Result  *models.SyncResult
	Err     error
}

type SyncService interface {
	SyncStore(ctx context.Context, storeID uuid.UUID) (*models.SyncResult, error)
	SyncAll(ctx context.Context) ([]StoreSyncOutcome, error)
}

type syncService struct {
	storeRepo   repositories.StoreRepository
	productRepo repositories.ProductRepository
	imageRepo   repositories.ProductImageRepository
	locker      locking.Locker
	catalogs    CatalogFactory
	opts        SyncOptions
	log         zerolog.Logger
}

func NewSyncService(storeRepo repositories.StoreRepository, productRepo repositories.ProductRepository,
	imageRepo repositories.ProductImageRepository, locker locking.Locker, catalogs CatalogFactory,
	opts SyncOptions, log zerolog.Logger) SyncService {

	if opts.ProductMode == "" {
		opts.ProductMode = models.ProductModeReplace
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 15 * time.Minute
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &syncService{
		storeRepo:   storeRepo,
		productRepo: productRepo,
		imageRepo:   imageRepo,
		locker:      locker,
		catalogs:    catalogs,
		opts:        opts,
		log:         log.With().Str("component", "sync").Logger(),
	}
}

// SyncStore mirrors the remote catalog of one store into the local tables.
func (s *syncService) SyncStore(ctx context.Context, storeID uuid.UUID) (*models.SyncResult, error) {
	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to load store: %w", err)
	}
	if err := store.ValidateCredentials(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreMisconfigured, err)
	}

	lease, err := s.locker.Acquire(ctx, storeID, s.opts.LockTTL)
	if err != nil {
		if errors.Is(err, locking.ErrLocked) {
			return nil, ErrSyncInProgress
		}
		return nil, fmt.Errorf("failed to lock store: %w", err)
	}

	run := models.NewSyncRun(storeID, s.opts.Now())
	log := s.log.With().Str("store_id", storeID.String()).Str("sync_run_id", run.ID.String()).Logger()

	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("failed to release sync lock")
		}
	}()

	result := &models.SyncResult{
		RunID:     run.ID,
		StoreID:   storeID,
		Mode:      s.opts.ProductMode,
		StartedAt: run.StartedAt,
	}

	catalog := s.catalogs(store)
	result.CurrencyUpdated = s.checkCurrency(ctx, store, catalog, log)

	remote, err := catalog.FetchProducts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("remote catalog fetch failed")
		return nil, &RemoteCatalogError{Err: err}
	}
	result.ProductsFetched = len(remote)
	remote = uniqueByWooID(remote, log)

	products := make([]*models.Product, 0, len(remote))
	for _, p := range remote {
		products = append(products, toProduct(storeID, p))
	}

	if err := s.writeProducts(ctx, run, products, result); err != nil {
		log.Error().Err(err).Msg("product write failed")
		return nil, err
	}

	for i, p := range remote {
		s.syncImages(ctx, run, products[i], p.Images, result, log)
	}

	orphaned, err := s.imageRepo.DeleteOrphanedWoo(ctx, storeID)
	if err != nil {
		log.Warn().Err(err).Msg("orphaned image sweep failed")
	}
	result.ImagesDeleted += orphaned

	result.FinishedAt = s.opts.Now().UTC()
	log.Info().
		Str("mode", result.Mode).
		Int("products", result.ProductsWritten).
		Int("images_upserted", result.ImagesUpserted).
		Int64("images_deleted", result.ImagesDeleted).
		Int("product_errors", len(result.ProductErrors)).
		Msg("store synchronized")

	return result, nil
}

func (s *syncService) writeProducts(ctx context.Context, run models.SyncRun, products []*models.Product, result *models.SyncResult) error {
	if s.opts.ProductMode == models.ProductModeStamped {
		if err := s.productRepo.UpsertStamped(ctx, run, products); err != nil {
			return fmt.Errorf("failed to upsert products: %w", err)
		}
		deleted, err := s.productRepo.DeleteStale(ctx, run)
		if err != nil {
			return fmt.Errorf("failed to delete stale products: %w", err)
		}
		result.ProductsDeleted = deleted
		result.ProductsWritten = len(products)
		return nil
	}

	deleted, err := s.productRepo.ReplaceAll(ctx, run, products)
	if err != nil {
		return fmt.Errorf("failed to replace products: %w", err)
	}
	result.ProductsDeleted = deleted
	result.ProductsWritten = len(products)
	return nil
}

// syncImages upserts the product's current images and then deletes its older woo rows.
// Failures are recorded on the result and do not stop the run.
func (s *syncService) syncImages(ctx context.Context, run models.SyncRun, product *models.Product, remote []woocommerce.Image,
	result *models.SyncResult, log zerolog.Logger) {

	images := buildImages(run, product, remote)
	if err := s.imageRepo.UpsertWoo(ctx, images); err != nil {
		log.Warn().Err(err).Int64("woo_id", product.WooID).Msg("failed to upsert product images, skipping product")
		result.ProductErrors = append(result.ProductErrors, models.ProductSyncError{
			WooID: product.WooID, ProductID: product.ID, Stage: "upsert_images", Error: err.Error(),
		})
		return
	}
	result.ImagesUpserted += len(images)

	deleted, err := s.imageRepo.DeleteStaleWoo(ctx, product.ID, run.Stamp)
	if err != nil {
		log.Warn().Err(err).Int64("woo_id", product.WooID).Msg("failed to delete stale product images")
		result.ProductErrors = append(result.ProductErrors, models.ProductSyncError{
			WooID: product.WooID, ProductID: product.ID, Stage: "cleanup_images", Error: err.Error(),
		})
		return
	}
	result.ImagesDeleted += deleted
}

// checkCurrency updates the cached currency when the remote one differs.
// Errors are logged only.
func (s *syncService) checkCurrency(ctx context.Context, store *models.Store, catalog Catalog, log zerolog.Logger) bool {
	currency, err := catalog.FetchCurrency(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("currency check failed")
		return false
	}
	currency = strings.TrimSpace(currency)
	if currency == "" || currency == store.Currency {
		return false
	}

	if err := s.storeRepo.UpdateCurrency(ctx, store.ID, currency); err != nil {
		log.Warn().Err(err).Str("currency", currency).Msg("failed to update store currency")
		return false
	}
	log.Info().Str("from", store.Currency).Str("to", currency).Msg("store currency updated")
	store.Currency = currency
	return true
}

// SyncAll runs SyncStore for every store, at most opts.Concurrency at a time.
func (s *syncService) SyncAll(ctx context.Context) ([]StoreSyncOutcome, error) {
	stores, err := s.storeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}

	outcomes := make([]StoreSyncOutcome, len(stores))
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)

	for i, store := range stores {
		g.Go(func() error {
			result, err := s.SyncStore(ctx, store.ID)
			if err != nil {
				s.log.Error().Err(err).Str("store_id", store.ID.String()).Msg("scheduled sync failed")
			}
			outcomes[i] = StoreSyncOutcome{StoreID: store.ID, Result: result, Err: err}
			// per-store failures live in outcomes and never cancel the batch
			return nil
		})
	}

	_ = g.Wait()
	return outcomes, nil
}

// uniqueByWooID keeps the first occurrence of each woo id. Paging over a catalog
// that is edited mid-fetch can return the same product twice.
func uniqueByWooID(remote []woocommerce.Product, log zerolog.Logger) []woocommerce.Product {
	seen := make(map[int64]bool, len(remote))
	unique := remote[:0:0]
	for _, p := range remote {
		if seen[p.ID] {
			log.Warn().Int64("woo_id", p.ID).Msg("duplicate product in remote catalog, keeping first")
			continue
		}
		seen[p.ID] = true
		unique = append(unique, p)
	}
	return unique
}

func toProduct(storeID uuid.UUID, p woocommerce.Product) *models.Product {
	product := &models.Product{
		ID:            models.ProductIDFor(storeID, p.ID),
		StoreID:       storeID,
		WooID:         p.ID,
		Name:          p.Name,
		Price:         float64(p.Price),
		StockQuantity: p.StockQuantity,
		Status:        p.Status,
		Type:          p.Type,
	}
	if product.Type == "" {
		product.Type = models.ProductTypeSimple
	}

	for _, v := range p.Variations {
		variation := models.ProductVariation{
			WooID:         v.ID,
			SKU:           v.SKU,
			Price:         float64(v.Price),
			StockQuantity: v.StockQuantity,
			Status:        v.Status,
		}
		if len(v.Attributes) > 0 {
			variation.Attributes = make(map[string]string, len(v.Attributes))
			for _, a := range v.Attributes {
				variation.Attributes[a.Name] = a.Option
			}
		}
		product.Variations = append(product.Variations, variation)
	}
	return product
}

// buildImages maps remote images to woo rows stamped with the run. Blank and
// repeated URLs are dropped; position decides featured/gallery and display order.
func buildImages(run models.SyncRun, product *models.Product, remote []woocommerce.Image) []*models.ProductImage {
	seen := make(map[string]bool, len(remote))
	images := make([]*models.ProductImage, 0, len(remote))
	for _, img := range remote {
		src := strings.TrimSpace(img.Src)
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true

		pos := len(images)
		row := &models.ProductImage{
			StoreID:      run.StoreID,
			ProductID:    product.ID,
			OriginalURL:  src,
			Source:       models.ImageSourceWoo,
			Type:         models.ImageTypeForPosition(pos),
			DisplayOrder: pos,
			SyncedAt:     run.Stamp,
		}
		if img.Alt != "" {
			alt := img.Alt
			row.AltText = &alt
		}
		if img.Name != "" {
			name := img.Name
			row.Description = &name
		}
		images = append(images, row)
	}
	return images
}
