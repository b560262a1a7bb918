package product

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"kasir-pos/internal/backend"
)

// Repository is the remote product and stock service.
type Repository interface {
	Search(ctx context.Context, f Filter) ([]Product, error)
	GetByBarcode(ctx context.Context, barcode, outletID string) (Product, error)
	GetStockLevel(ctx context.Context, productID int64, outletID string) (StockLevel, error)
}

type Getter interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

type repository struct {
	client Getter
}

func NewRepository(client Getter) Repository {
	return &repository{client: client}
}

func (r *repository) Search(ctx context.Context, f Filter) ([]Product, error) {
	query := url.Values{}
	if f.Search != "" {
		query.Set("search", f.Search)
	}
	if f.CategoryID != "" {
		query.Set("category_id", f.CategoryID)
	}
	if f.OutletID != "" {
		query.Set("outlet_id", f.OutletID)
	}
	if f.Limit > 0 {
		query.Set("limit", strconv.Itoa(f.Limit))
	}

	var products []Product
	if err := r.client.Get(ctx, "/products", query, &products); err != nil {
		if errors.Is(err, backend.ErrEmptyResponse) {
			return []Product{}, nil
		}
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

func (r *repository) GetByBarcode(ctx context.Context, barcode, outletID string) (Product, error) {
	var p Product
	path := "/products/barcode/" + url.PathEscape(barcode)
	err := r.client.Get(ctx, path, url.Values{"outlet_id": {outletID}}, &p)
	if err != nil {
		return Product{}, notFound(err, "get product by barcode")
	}
	return p, nil
}

func (r *repository) GetStockLevel(ctx context.Context, productID int64, outletID string) (StockLevel, error) {
	var level StockLevel
	path := "/stocks/" + strconv.FormatInt(productID, 10)
	err := r.client.Get(ctx, path, url.Values{"outlet_id": {outletID}}, &level)
	if err != nil {
		return StockLevel{}, notFound(err, "get stock level")
	}
	if level.ProductID == 0 {
		level.ProductID = productID
	}
	if level.OutletID == "" {
		level.OutletID = outletID
	}
	return level, nil
}

// notFound folds 404s and empty payloads into ErrProductNotFound.
func notFound(err error, op string) error {
	if errors.Is(err, backend.ErrEmptyResponse) || backend.KindOf(err) == backend.KindNotFound {
		return fmt.Errorf("%s: %w", op, ErrProductNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
