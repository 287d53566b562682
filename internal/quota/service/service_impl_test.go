package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	paymentdomain "github.com/smallbiznis/birracraft/internal/payment/domain"
	"github.com/smallbiznis/birracraft/internal/quota/domain"
	"github.com/smallbiznis/birracraft/internal/quota/repository"
	"github.com/smallbiznis/birracraft/internal/testutil"
	"github.com/smallbiznis/birracraft/pkg/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *testutil.Seeder, []paymentdomain.Payment) {
	t.Helper()
	conn := testutil.NewDB(t)
	node := testutil.NewNode(t)
	seed := testutil.NewSeeder(t, conn, node)

	customer := seed.Customer("Ana")
	payments := []paymentdomain.Payment{
		seed.Payment(seed.Order(customer), 1),
		seed.Payment(seed.Order(customer), 2),
	}
	svc := New(Params{DB: conn, Log: zap.NewNop(), GenID: node, Repo: repository.Provide()})
	return svc, seed, payments
}

func create(t *testing.T, svc domain.Service, paymentID string, current, total int) *domain.Response {
	t.Helper()
	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		CurrentQuota: current,
		TotalQuota:   total,
		Value:        decimal.RequireFromString("4.17"),
		Date:         date.New(2023, time.Month(current), 10),
		PaymentID:    paymentID,
	})
	require.NoError(t, err)
	return resp
}

func TestListByPaymentReturnsOnlyThatSchedule(t *testing.T) {
	svc, _, payments := newTestService(t)
	target := payments[0].ID.String()
	other := payments[1].ID.String()

	create(t, svc, target, 3, 3)
	create(t, svc, other, 1, 2)
	create(t, svc, target, 1, 3)
	create(t, svc, other, 2, 2)
	create(t, svc, target, 2, 3)

	quotas, err := svc.ListByPayment(context.Background(), target)
	require.NoError(t, err)
	require.Len(t, quotas, 3)
	for i, q := range quotas {
		assert.Equal(t, i+1, q.CurrentQuota)
		assert.Equal(t, target, q.Payment)
		assert.Equal(t, "4.17", q.Value)
	}

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestListByPaymentUnknownPaymentIsEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)

	quotas, err := svc.ListByPayment(context.Background(), "777")
	require.NoError(t, err)
	assert.Empty(t, quotas)

	_, err = svc.ListByPayment(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)
}

func TestScheduleIsNotReconciled(t *testing.T) {
	svc, _, payments := newTestService(t)

	// duplicate positions and a position past the total are stored as given
	create(t, svc, payments[0].ID.String(), 1, 2)
	create(t, svc, payments[0].ID.String(), 1, 2)
	beyond := create(t, svc, payments[0].ID.String(), 5, 2)
	assert.Equal(t, 5, beyond.CurrentQuota)
}

func TestCreateValidation(t *testing.T) {
	svc, _, payments := newTestService(t)
	ctx := context.Background()
	paymentID := payments[0].ID.String()

	_, err := svc.Create(ctx, domain.CreateRequest{CurrentQuota: 0, TotalQuota: 1, Value: decimal.NewFromInt(1), PaymentID: paymentID})
	assert.ErrorIs(t, err, domain.ErrInvalidCurrentQuota)

	_, err = svc.Create(ctx, domain.CreateRequest{CurrentQuota: 1, TotalQuota: 0, Value: decimal.NewFromInt(1), PaymentID: paymentID})
	assert.ErrorIs(t, err, domain.ErrInvalidTotalQuota)

	_, err = svc.Create(ctx, domain.CreateRequest{CurrentQuota: 1, TotalQuota: 1, Value: decimal.RequireFromString("0.001"), PaymentID: paymentID})
	assert.ErrorIs(t, err, domain.ErrInvalidValue)

	_, err = svc.Create(ctx, domain.CreateRequest{CurrentQuota: 1, TotalQuota: 1, Value: decimal.NewFromInt(1), PaymentID: "31337"})
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)
}

func TestInstalmentIndexesMustBePositive(t *testing.T) {
	svc, _, payments := newTestService(t)
	ctx := context.Background()
	paymentID := payments[0].ID.String()

	_, err := svc.Create(ctx, domain.CreateRequest{CurrentQuota: -2, TotalQuota: 3, Value: decimal.NewFromInt(1), PaymentID: paymentID})
	assert.ErrorIs(t, err, domain.ErrInvalidCurrentQuota)
	_, err = svc.Create(ctx, domain.CreateRequest{CurrentQuota: 1, TotalQuota: -3, Value: decimal.NewFromInt(1), PaymentID: paymentID})
	assert.ErrorIs(t, err, domain.ErrInvalidTotalQuota)

	created := create(t, svc, paymentID, 1, 3)
	zero := 0
	_, err = svc.Update(ctx, domain.UpdateRequest{ID: created.ID, CurrentQuota: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidCurrentQuota)
	_, err = svc.Update(ctx, domain.UpdateRequest{ID: created.ID, TotalQuota: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidTotalQuota)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentQuota)
	assert.Equal(t, 3, got.TotalQuota)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, seed, payments := newTestService(t)
	ctx := context.Background()

	created := create(t, svc, payments[0].ID.String(), 1, 3)

	value := decimal.RequireFromString("10")
	moved := payments[1].ID.String()
	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Value: &value, PaymentID: &moved})
	require.NoError(t, err)
	assert.Equal(t, "10.00", updated.Value)
	assert.Equal(t, moved, updated.Payment)
	assert.Equal(t, 3, updated.TotalQuota)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Zero(t, seed.Count(&domain.Quota{}))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
