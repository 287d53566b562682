package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/birracraft/internal/order/domain"
	"github.com/smallbiznis/birracraft/internal/order/repository"
	paymentdomain "github.com/smallbiznis/birracraft/internal/payment/domain"
	productdomain "github.com/smallbiznis/birracraft/internal/product/domain"
	quotadomain "github.com/smallbiznis/birracraft/internal/quota/domain"
	"github.com/smallbiznis/birracraft/internal/testutil"
	"github.com/smallbiznis/birracraft/pkg/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc      domain.Service
	seed     *testutil.Seeder
	customer string
	products []string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := testutil.NewDB(t)
	node := testutil.NewNode(t)
	seed := testutil.NewSeeder(t, conn, node)

	keg := seed.Container("Keg", "20")
	ipa := seed.Flavour("IPA", "4.50")
	a := seed.Product("A1", keg, ipa)
	b := seed.Product("B1", keg, ipa)

	return fixture{
		svc:      New(Params{DB: conn, Log: zap.NewNop(), GenID: node, Repo: repository.Provide()}),
		seed:     seed,
		customer: seed.Customer("Ana").ID.String(),
		products: []string{a.ID.String(), b.ID.String()},
	}
}

func decPtr(raw string) *decimal.Decimal {
	d := decimal.RequireFromString(raw)
	return &d
}

func TestCreateRoundTripsAmounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, domain.CreateRequest{
		Date:         date.New(2023, time.May, 4),
		ProductIDs:   f.products,
		Price:        decimal.RequireFromString("11.3"),
		DeliveryCost: decimal.RequireFromString("1.2"),
		TotalAmount:  decPtr("12.5"),
		CustomerID:   f.customer,
		State:        domain.StateInQuotas,
		Comment:      "deliver after 6pm",
	})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "11.30", got.Price)
	assert.Equal(t, "1.20", got.DeliveryCost)
	assert.Equal(t, "12.50", got.TotalAmount)
	assert.Equal(t, "2023-05-04", got.Date.String())
	assert.Equal(t, domain.StateInQuotas, got.State)
	assert.ElementsMatch(t, f.products, got.Products)
	assert.Equal(t, f.customer, got.Customer)
	assert.Equal(t, "deliver after 6pm", got.Comment)
}

func TestCreateDefaults(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Price:        decimal.RequireFromString("20"),
		DeliveryCost: decimal.RequireFromString("2.5"),
		CustomerID:   f.customer,
	})
	require.NoError(t, err)
	assert.Equal(t, "22.50", created.TotalAmount)
	assert.Equal(t, domain.StatePending, created.State)
	assert.Equal(t, date.FromTime(time.Now().UTC()).String(), created.Date.String())
	assert.Empty(t, created.Products)
}

func TestCreateKeepsSuppliedTotal(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Price:        decimal.RequireFromString("20"),
		DeliveryCost: decimal.RequireFromString("2"),
		TotalAmount:  decPtr("18"),
		CustomerID:   f.customer,
	})
	require.NoError(t, err)
	assert.Equal(t, "18.00", created.TotalAmount)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CreateRequest{Price: decimal.NewFromInt(1), CustomerID: "99"})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	_, err = f.svc.Create(ctx, domain.CreateRequest{Price: decimal.NewFromInt(1), CustomerID: f.customer, ProductIDs: []string{"12345"}})
	assert.ErrorIs(t, err, domain.ErrInvalidProducts)

	_, err = f.svc.Create(ctx, domain.CreateRequest{Price: decimal.NewFromInt(1), CustomerID: f.customer, State: "Shipped"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.svc.Create(ctx, domain.CreateRequest{Price: decimal.RequireFromString("-3"), CustomerID: f.customer})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestDuplicateProductsAreLinkedOnce(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Price:      decimal.NewFromInt(1),
		CustomerID: f.customer,
		ProductIDs: []string{f.products[0], f.products[0]},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{f.products[0]}, created.Products)
}

func TestUpdateAllowsAnyStateAndReplacesProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, domain.CreateRequest{
		Price:      decimal.NewFromInt(10),
		CustomerID: f.customer,
		State:      domain.StatePaid,
		ProductIDs: f.products,
	})
	require.NoError(t, err)

	pending := domain.StatePending
	only := []string{f.products[1]}
	updated, err := f.svc.Update(ctx, domain.UpdateRequest{ID: created.ID, State: &pending, ProductIDs: &only})
	require.NoError(t, err)
	assert.Equal(t, domain.StatePending, updated.State)
	assert.Equal(t, "10.00", updated.Price)

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, only, got.Products)
	// links never mutate the products themselves
	assert.Equal(t, int64(2), f.seed.Count(&productdomain.Product{}))
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, d := range []date.Date{date.New(2023, 1, 10), date.New(2023, 6, 1)} {
		_, err := f.svc.Create(ctx, domain.CreateRequest{Date: d, Price: decimal.NewFromInt(1), CustomerID: f.customer})
		require.NoError(t, err)
	}

	since, err := f.svc.List(ctx, domain.ListRequest{DateFrom: date.New(2023, 3, 1)})
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, "2023-06-01", since[0].Date.String())

	mine, err := f.svc.List(ctx, domain.ListRequest{CustomerID: f.customer})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestDeleteCascadesToPaymentAndQuotas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	keg := f.seed.Container("Keg", "30")
	stout := f.seed.Flavour("Stout", "5.00")
	product := f.seed.Product("S1", keg, stout)
	order := f.seed.Order(f.seed.Customer("Bruno"), product)
	payment := f.seed.Payment(order, 1)
	f.seed.Quota(payment, 1, 2)
	f.seed.Quota(payment, 2, 2)

	require.NoError(t, f.svc.Delete(ctx, order.ID.String()))
	assert.Zero(t, f.seed.Count(&domain.Order{}))
	assert.Zero(t, f.seed.Count(&domain.OrderProduct{}))
	assert.Zero(t, f.seed.Count(&paymentdomain.Payment{}))
	assert.Zero(t, f.seed.Count(&quotadomain.Quota{}))
	assert.Equal(t, int64(3), f.seed.Count(&productdomain.Product{}))

	_, err := f.svc.Get(ctx, order.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
