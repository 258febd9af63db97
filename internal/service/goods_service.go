package service

import (
	"context"
	"log"
	"time"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
	"github.com/zhli-dev/meiduo-backend/internal/repository/ports"
)

const (
	hotSKULimit     = 2
	defaultPageSize = 5
	maxPageSize     = 20
)

type SKUPage struct {
	Count   int          `json:"count"`
	Results []domain.SKU `json:"results"`
}

type GoodsService struct {
	skus      ports.SKURepository
	storage   ports.ObjectStorage
	bucket    string
	urlExpiry time.Duration
}

func NewGoodsService(skus ports.SKURepository, storage ports.ObjectStorage, bucket string, urlExpiry time.Duration) *GoodsService {
	return &GoodsService{skus: skus, storage: storage, bucket: bucket, urlExpiry: urlExpiry}
}

// HotSKUs returns the category's best sellers.
func (s *GoodsService) HotSKUs(ctx context.Context, categoryID int64) ([]domain.SKU, error) {
	skus, err := s.skus.ListHotByCategory(ctx, categoryID, hotSKULimit)
	if err != nil {
		return nil, err
	}
	s.resolveImages(ctx, skus)
	return skus, nil
}

// ListSKUs pages through a category's launched SKUs.
func (s *GoodsService) ListSKUs(ctx context.Context, categoryID int64, orderBy string, page, pageSize int) (*SKUPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	count, err := s.skus.CountByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	skus, err := s.skus.ListByCategory(ctx, categoryID, orderBy, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	s.resolveImages(ctx, skus)
	return &SKUPage{Count: count, Results: skus}, nil
}

// resolveImages swaps stored object names for presigned URLs. A failed
// resolution leaves the raw object name in place rather than failing the
// listing.
func (s *GoodsService) resolveImages(ctx context.Context, skus []domain.SKU) {
	for i := range skus {
		if skus[i].DefaultImage == "" {
			continue
		}
		url, err := s.storage.PresignedURL(ctx, s.bucket, skus[i].DefaultImage, s.urlExpiry)
		if err != nil {
			log.Printf("goods: presign %s: %v", skus[i].DefaultImage, err)
			continue
		}
		skus[i].DefaultImage = url
	}
}
