package services

import (
	"context"
	"errors"
	"fmt"

	"woosync/internal/models"
	"woosync/internal/repositories"

	"github.com/google/uuid"
)

type ProductWithImages struct {
	*models.Product
	Images []*models.ProductImage `json:"images"`
}

// ProductService is the read side over the mirrored catalog.
type ProductService interface {
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]ProductWithImages, error)
}

type productService struct {
	storeRepo   repositories.StoreRepository
	productRepo repositories.ProductRepository
	imageRepo   repositories.ProductImageRepository
}

func NewProductService(storeRepo repositories.StoreRepository, productRepo repositories.ProductRepository, imageRepo repositories.ProductImageRepository) ProductService {
	return &productService{
		storeRepo:   storeRepo,
		productRepo: productRepo,
		imageRepo:   imageRepo,
	}
}

func (s *productService) ListByStore(ctx context.Context, storeID uuid.UUID) ([]ProductWithImages, error) {
	if _, err := s.storeRepo.GetByID(ctx, storeID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	products, err := s.productRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	images, err := s.imageRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product images: %w", err)
	}

	byProduct := make(map[uuid.UUID][]*models.ProductImage)
	for _, img := range images {
		byProduct[img.ProductID] = append(byProduct[img.ProductID], img)
	}

	out := make([]ProductWithImages, 0, len(products))
	for _, p := range products {
		imgs := byProduct[p.ID]
		if imgs == nil {
			imgs = []*models.ProductImage{}
		}
		out = append(out, ProductWithImages{Product: p, Images: imgs})
	}
	return out, nil
}
