package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kasir-pos/internal/logger"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Service interface {
	Search(ctx context.Context, f Filter) ([]Product, error)
	GetByBarcode(ctx context.Context, barcode, outletID string) (Product, error)
	GetStockLevel(ctx context.Context, productID int64, outletID string) (StockLevel, error)
	// Purge drops every cached search result.
	Purge()
}

type CacheOptions struct {
	Size int
	TTL  time.Duration
}

type service struct {
	repo   Repository
	cache  *expirable.LRU[string, []Product]
	lookup singleflight.Group
}

func NewService(repo Repository, opts CacheOptions) Service {
	if opts.Size <= 0 {
		opts.Size = 256
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Second
	}
	return &service{
		repo:  repo,
		cache: expirable.NewLRU[string, []Product](opts.Size, nil, opts.TTL),
	}
}

func (s *service) Search(ctx context.Context, f Filter) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Search"),
	)

	f.Search = strings.TrimSpace(f.Search)
	if f.Limit <= 0 {
		f.Limit = 20
	} else if f.Limit > 100 {
		f.Limit = 100
	}

	key := cacheKey(f)
	if cached, ok := s.cache.Get(key); ok {
		log.Debug("search cache hit", zap.String("key", key))
		return cloneAll(cached), nil
	}

	products, err := s.repo.Search(ctx, f)
	if err != nil {
		log.Error("search failed", zap.Error(err))
		return nil, err
	}

	s.cache.Add(key, cloneAll(products))
	log.Debug("search completed", zap.Int("count", len(products)))
	return products, nil
}

// GetByBarcode coalesces identical in-flight lookups into one backend call.
func (s *service) GetByBarcode(ctx context.Context, barcode, outletID string) (Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetByBarcode"),
		zap.String("barcode", barcode),
	)

	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Product{}, ErrBarcodeRequired
	}
	if outletID == "" {
		log.Warn("barcode lookup without outlet")
		return Product{}, ErrOutletRequired
	}

	v, err, shared := s.lookup.Do(outletID+":"+barcode, func() (any, error) {
		return s.repo.GetByBarcode(ctx, barcode, outletID)
	})
	if err != nil {
		log.Info("barcode lookup failed", zap.Error(err))
		return Product{}, err
	}

	log.Debug("barcode resolved", zap.Bool("shared", shared))
	return v.(Product).Clone(), nil
}

func (s *service) GetStockLevel(ctx context.Context, productID int64, outletID string) (StockLevel, error) {
	if outletID == "" {
		return StockLevel{}, ErrOutletRequired
	}

	level, err := s.repo.GetStockLevel(ctx, productID, outletID)
	if err != nil {
		logger.FromCtx(ctx).Error("stock lookup failed",
			zap.String("layer", "service"),
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
		return StockLevel{}, err
	}
	return level, nil
}

func (s *service) Purge() {
	s.cache.Purge()
}

func cacheKey(f Filter) string {
	return fmt.Sprintf("%s|%s|%s|%d", strings.ToLower(f.Search), f.CategoryID, f.OutletID, f.Limit)
}

func cloneAll(in []Product) []Product {
	out := make([]Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
