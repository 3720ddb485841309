package screens

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/export"
	"github.com/sandeepkv93/storefront-admin-console/internal/listctl"
	"github.com/sandeepkv93/storefront-admin-console/internal/permission"
	"github.com/sandeepkv93/storefront-admin-console/internal/present"
)

const (
	ResourceProducts = "products"

	ProductFilterCategory = "category"
	ProductFilterStatus   = "status"
	ProductFilterMinPrice = "minPrice"
	ProductFilterMaxPrice = "maxPrice"
	ProductFilterStock    = "stock"

	StockIn  = "in_stock"
	StockLow = "low_stock"
	StockOut = "out_of_stock"
)

type Products struct {
	*screen[domain.Product, domain.ProductStats]
	images present.ImageResolver
}

func NewProducts(src Source[domain.Product], images present.ImageResolver, opts Options) (*Products, error) {
	p := &Products{images: images}
	base, err := newScreen[domain.Product, domain.ProductStats](src, opts, screenSpec[domain.Product]{
		resource: ResourceProducts,
		id:       func(p domain.Product) string { return p.ID },
		rules: []rule{
			{AffordanceView, permission.ProductsRead},
			{AffordanceToggleActive, permission.ProductsUpdate},
			{AffordanceDelete, permission.ProductsDelete},
			{AffordanceBulkDelete, permission.ProductsDelete},
			{AffordanceExport, permission.ProductsExport},
		},
		filters: []FilterSpec{
			{Key: ProductFilterCategory, Label: "Category"},
			{Key: ProductFilterStatus, Label: "Status", Options: []string{domain.ProductStatusActive, domain.ProductStatusInactive}},
			{Key: ProductFilterMinPrice, Label: "Min price"},
			{Key: ProductFilterMaxPrice, Label: "Max price"},
			{Key: ProductFilterStock, Label: "Stock", Options: []string{StockIn, StockLow, StockOut}},
		},
		sort:  listctl.Sort{Field: "createdAt", Order: listctl.SortDesc},
		table: p.table,
	}, nil)
	if err != nil {
		return nil, err
	}
	p.screen = base
	return p, nil
}

// SetPriceRange sets both price bounds. Empty strings clear a bound.
func (p *Products) SetPriceRange(ctx context.Context, minPrice, maxPrice string) error {
	lo, err := parsePrice(minPrice)
	if err != nil {
		return p.invalid(ctx, ProductFilterMinPrice, "Min price must be a non-negative number")
	}
	hi, err := parsePrice(maxPrice)
	if err != nil {
		return p.invalid(ctx, ProductFilterMaxPrice, "Max price must be a non-negative number")
	}
	if lo != nil && hi != nil && *lo > *hi {
		return p.invalid(ctx, ProductFilterMinPrice, "Min price cannot exceed max price")
	}
	p.list.SetFilter(ProductFilterMinPrice, minPrice)
	p.list.SetFilter(ProductFilterMaxPrice, maxPrice)
	return nil
}

func parsePrice(v string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return nil, fmt.Errorf("invalid price %q", v)
	}
	return &f, nil
}

func (p *Products) ToggleActive(ctx context.Context, id string) error {
	if !p.Can(AffordanceToggleActive) {
		return ErrUnavailable
	}
	msg := "Product status updated"
	if current, ok := p.loaded(id); ok {
		if current.IsActive {
			msg = current.Name + " deactivated"
		} else {
			msg = current.Name + " activated"
		}
	}
	return p.list.UpdateField(ctx, id, listctl.Patch[domain.Product]{
		Op:    "toggle-active",
		Apply: func(prod *domain.Product) { prod.IsActive = !prod.IsActive },
		Commit: func(ctx context.Context, id string) (*domain.Product, error) {
			return p.src.Patch(ctx, id, "toggle-active", nil)
		},
		FailureMessage: "Failed to update product status",
		SuccessMessage: msg,
	})
}

// ImageURL resolves the product image for display.
func (p *Products) ImageURL(ctx context.Context, prod domain.Product) string {
	url, err := p.images.Resolve(ctx, prod.ImageURL)
	if err != nil {
		p.logger.WarnContext(ctx, "image resolve failed", "product_id", prod.ID, "error", err)
		return ""
	}
	return url
}

func (p *Products) table(ctx context.Context, products []domain.Product) (export.Table, error) {
	t := export.Table{
		Columns: []export.Column{
			{Title: "Name", Width: 28},
			{Title: "SKU", Width: 14},
			{Title: "Category", Width: 16},
			{Title: "Status", Width: 10},
			{Title: "Price", Width: 10},
			{Title: "Stock", Width: 8},
			{Title: "Image", Width: 40},
		},
		Rows: make([][]any, 0, len(products)),
	}
	for _, prod := range products {
		t.Rows = append(t.Rows, []any{
			prod.Name,
			prod.SKU,
			prod.Category,
			present.ProductStatus(prod),
			prod.Price,
			prod.Stock,
			p.ImageURL(ctx, prod),
		})
	}
	return t, nil
}
