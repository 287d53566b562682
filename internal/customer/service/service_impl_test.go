package service

import (
	"context"
	"testing"

	"github.com/smallbiznis/birracraft/internal/customer/domain"
	orderdomain "github.com/smallbiznis/birracraft/internal/order/domain"
	paymentdomain "github.com/smallbiznis/birracraft/internal/payment/domain"
	productdomain "github.com/smallbiznis/birracraft/internal/product/domain"
	quotadomain "github.com/smallbiznis/birracraft/internal/quota/domain"
	"github.com/smallbiznis/birracraft/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *testutil.Seeder) {
	t.Helper()
	conn := testutil.NewDB(t)
	node := testutil.NewNode(t)
	return New(Params{DB: conn, Log: zap.NewNop(), GenID: node}), testutil.NewSeeder(t, conn, node)
}

func validRequest() domain.CreateCustomerRequest {
	return domain.CreateCustomerRequest{
		Name:      "Bar El Faro",
		Address:   "San Martin 1200",
		Email:     "faro@example.com",
		Cellphone: "3415550101",
		Type:      domain.TypeComerce,
	}
}

func TestCreateCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, domain.TypeComerce, got.Type)
}

func TestCreateCustomerValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*domain.CreateCustomerRequest)
		err    error
	}{
		{"empty name", func(r *domain.CreateCustomerRequest) { r.Name = "" }, domain.ErrInvalidName},
		{"long name", func(r *domain.CreateCustomerRequest) { r.Name = "abcdefghijklmnopqrstuvwxyz12345" }, domain.ErrInvalidName},
		{"bad email", func(r *domain.CreateCustomerRequest) { r.Email = "faro-at-example" }, domain.ErrInvalidEmail},
		{"long cellphone", func(r *domain.CreateCustomerRequest) { r.Cellphone = "1234567890123" }, domain.ErrInvalidCellphone},
		{"unknown type", func(r *domain.CreateCustomerRequest) { r.Type = "Wholesale" }, domain.ErrInvalidType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.Create(ctx, req)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestPartialUpdate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	phone := "3415550199"
	updated, err := svc.Update(ctx, domain.UpdateCustomerRequest{ID: created.ID.String(), Cellphone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Cellphone)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.Address, updated.Address)

	bad := "x"
	_, err = svc.Update(ctx, domain.UpdateCustomerRequest{ID: created.ID.String(), Email: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestDeleteCascadesToOrdersPaymentsAndQuotas(t *testing.T) {
	svc, seed := newTestService(t)
	ctx := context.Background()

	keg := seed.Container("Keg", "30")
	ipa := seed.Flavour("IPA", "4.50")
	product := seed.Product("K1", keg, ipa)

	gone := seed.Customer("Ana")
	stays := seed.Customer("Bruno")
	order := seed.Order(gone, product)
	payment := seed.Payment(order, 1)
	seed.Quota(payment, 1, 2)
	seed.Quota(payment, 2, 2)
	seed.Payment(seed.Order(stays, product), 2)

	require.NoError(t, svc.Delete(ctx, gone.ID.String()))

	_, err := svc.GetByID(ctx, gone.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(1), seed.Count(&domain.Customer{}))
	assert.Equal(t, int64(1), seed.Count(&orderdomain.Order{}))
	assert.Equal(t, int64(1), seed.Count(&orderdomain.OrderProduct{}))
	assert.Equal(t, int64(1), seed.Count(&paymentdomain.Payment{}))
	assert.Zero(t, seed.Count(&quotadomain.Quota{}))
	// products are never owned by orders
	assert.Equal(t, int64(1), seed.Count(&productdomain.Product{}))
}
