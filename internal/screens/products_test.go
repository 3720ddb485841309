package screens

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/export"
	"github.com/sandeepkv93/storefront-admin-console/internal/listctl"
	"github.com/sandeepkv93/storefront-admin-console/internal/permission"
	"github.com/sandeepkv93/storefront-admin-console/internal/present"
	screensgomock "github.com/sandeepkv93/storefront-admin-console/internal/screens/gomock"
)

func productFixtures() []domain.Product {
	return []domain.Product{
		{ID: "p1", Name: "Desk Lamp", SKU: "LAMP-1", Category: "lighting", Price: 49.5, Stock: 3, IsActive: true, ImageURL: "/images/lamp.png"},
		{ID: "p2", Name: "Chair", SKU: "CHAIR-1", Category: "furniture", Price: 120, Stock: 0, IsActive: false, ImageURL: "https://img.example.com/chair.png"},
	}
}

func newProductsForTest(t *testing.T, src Source[domain.Product], actor *permission.Actor) (*Products, *listctl.ManualScheduler, *noticeLog) {
	t.Helper()
	opts, sched, notices := testOptions(actor)
	products, err := NewProducts(src, present.ImageResolver{BaseURL: "https://cdn.example.com/"}, opts)
	if err != nil {
		t.Fatalf("new products: %v", err)
	}
	return products, sched, notices
}

func TestProductsToggleActive(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := screensgomock.NewMockSource[domain.Product](ctrl)
	products, _, notices := newProductsForTest(t, src, admin())
	ctx := context.Background()
	rows := productFixtures()

	src.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, q listctl.Query) (listctl.Page[domain.Product], error) {
		return pageOf(rows, q), nil
	})
	src.EXPECT().Patch(gomock.Any(), "p1", "toggle-active", nil).Return(nil, nil)
	src.EXPECT().Stats(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, out any) error {
		*out.(*domain.ProductStats) = domain.ProductStats{Total: 2, Inactive: 2}
		return nil
	})

	if err := products.List().Refresh(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := products.ToggleActive(ctx, "p1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if products.List().Items()[0].IsActive {
		t.Fatal("expected product deactivated")
	}
	if n := notices.last(t); n.Message != "Desk Lamp deactivated" {
		t.Fatalf("unexpected notice %q", n.Message)
	}
	if stats, ok := products.Stats(); !ok || stats.Inactive != 2 {
		t.Fatalf("expected refreshed stats, got %+v", stats)
	}
}

func TestProductsToggleActiveRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := screensgomock.NewMockSource[domain.Product](ctrl)
	products, _, _ := newProductsForTest(t, src, admin())
	ctx := context.Background()
	rows := productFixtures()

	src.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, q listctl.Query) (listctl.Page[domain.Product], error) {
		return pageOf(rows, q), nil
	})
	src.EXPECT().Patch(gomock.Any(), "p2", "toggle-active", nil).Return(nil, errors.New("boom"))

	if err := products.List().Refresh(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := products.ToggleActive(ctx, "p2"); err == nil {
		t.Fatal("expected toggle failure")
	}
	if got := products.List().Items()[1]; got.IsActive || got.Name != "Chair" {
		t.Fatalf("expected row restored, got %+v", got)
	}
}

func TestProductsPriceRangeValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := screensgomock.NewMockSource[domain.Product](ctrl)
	products, sched, _ := newProductsForTest(t, src, admin())
	ctx := context.Background()

	var ve *listctl.ValidationError
	if err := products.SetPriceRange(ctx, "50", "10"); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := products.SetPriceRange(ctx, "-1", ""); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if sched.Pending() != 0 {
		t.Fatal("expected no fetch for rejected price range")
	}

	src.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, q listctl.Query) (listctl.Page[domain.Product], error) {
		if q.Filter(ProductFilterMinPrice) != "10" || q.Filter(ProductFilterMaxPrice) != "" {
			t.Fatalf("unexpected price filters %v", q.Filters)
		}
		return pageOf([]domain.Product{}, q), nil
	}).Times(1)
	if err := products.SetPriceRange(ctx, "10", ""); err != nil {
		t.Fatalf("set price range: %v", err)
	}
	sched.Advance(0)
	if products.List().View() != listctl.ViewEmpty {
		t.Fatalf("expected empty view, got %s", products.List().View())
	}
}

func TestProductsExportResolvesImages(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := screensgomock.NewMockSource[domain.Product](ctrl)
	products, _, notices := newProductsForTest(t, src, admin())
	ctx := context.Background()
	rows := productFixtures()

	src.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, q listctl.Query) (listctl.Page[domain.Product], error) {
		return pageOf(rows, q), nil
	}).Times(1)
	if err := products.List().Refresh(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	table, _, err := products.ExportTable(ctx)
	if err != nil {
		t.Fatalf("export table: %v", err)
	}
	if got := table.Rows[0][6]; got != "https://cdn.example.com/images/lamp.png" {
		t.Fatalf("unexpected image url %v", got)
	}
	if got := table.Rows[1][6]; got != "https://img.example.com/chair.png" {
		t.Fatalf("unexpected image url %v", got)
	}

	var buf bytes.Buffer
	if err := products.Export(ctx, &buf, export.FormatPDF); err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("expected pdf output")
	}
	if n := notices.last(t); n.Message != "Exported 2 rows" {
		t.Fatalf("unexpected notice %q", n.Message)
	}
}

func TestProductsExportHiddenWithoutPermission(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := screensgomock.NewMockSource[domain.Product](ctrl)
	products, _, _ := newProductsForTest(t, src, permission.NewActor(false, permission.ProductsRead))
	if err := products.Export(context.Background(), &bytes.Buffer{}, export.FormatXLSX); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
