package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/birracraft/internal/order/domain"
	"github.com/smallbiznis/birracraft/internal/payment/domain"
	"github.com/smallbiznis/birracraft/internal/payment/repository"
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
	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, testutil.NewSeeder(t, conn, node)
}

func seedOrders(seed *testutil.Seeder, n int) []orderdomain.Order {
	customer := seed.Customer("Ana")
	orders := make([]orderdomain.Order, 0, n)
	for i := 0; i < n; i++ {
		orders = append(orders, seed.Order(customer))
	}
	return orders
}

func int64Ptr(v int64) *int64 { return &v }

func TestCreateTransactionNumbering(t *testing.T) {
	svc, seed := newTestService(t)
	ctx := context.Background()
	orders := seedOrders(seed, 3)

	first, err := svc.Create(ctx, domain.CreateRequest{
		Transaction: int64Ptr(100),
		Amount:      decimal.RequireFromString("22.00"),
		Method:      domain.MethodCash,
		OrderID:     orders[0].ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), first.Transaction)
	assert.Equal(t, "22.00", first.Amount)

	second, err := svc.Create(ctx, domain.CreateRequest{
		Amount:  decimal.RequireFromString("10"),
		Method:  domain.MethodDebitCard,
		OrderID: orders[1].ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(101), second.Transaction)

	// the caller value only seeds the very first number
	third, err := svc.Create(ctx, domain.CreateRequest{
		Transaction: int64Ptr(5),
		Amount:      decimal.RequireFromString("10"),
		Method:      domain.MethodDebitCard,
		OrderID:     orders[2].ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(102), third.Transaction)
}

func TestCreateDefaultsFirstTransactionToOne(t *testing.T) {
	svc, seed := newTestService(t)
	orders := seedOrders(seed, 1)

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Amount:  decimal.RequireFromString("12.50"),
		Method:  domain.MethodBankTransfer,
		OrderID: orders[0].ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTransaction, resp.Transaction)
}

func TestCreateAfterAllPaymentsDeletedUsesCallerValue(t *testing.T) {
	svc, seed := newTestService(t)
	ctx := context.Background()
	orders := seedOrders(seed, 2)

	first, err := svc.Create(ctx, domain.CreateRequest{
		Amount:  decimal.RequireFromString("9.90"),
		Method:  domain.MethodCash,
		OrderID: orders[0].ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Transaction)
	require.NoError(t, svc.Delete(ctx, first.ID))

	next, err := svc.Create(ctx, domain.CreateRequest{
		Transaction: int64Ptr(50),
		Amount:      decimal.RequireFromString("9.90"),
		Method:      domain.MethodCash,
		OrderID:     orders[1].ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50), next.Transaction)
}

func TestDeletedLatestTransactionIsNotReissued(t *testing.T) {
	svc, seed := newTestService(t)
	ctx := context.Background()
	orders := seedOrders(seed, 3)

	var created []*domain.Response
	for _, order := range orders[:2] {
		resp, err := svc.Create(ctx, domain.CreateRequest{
			Amount:  decimal.RequireFromString("5"),
			Method:  domain.MethodCash,
			OrderID: order.ID.String(),
		})
		require.NoError(t, err)
		created = append(created, resp)
	}
	require.NoError(t, svc.Delete(ctx, created[1].ID))

	third, err := svc.Create(ctx, domain.CreateRequest{
		Amount:  decimal.RequireFromString("5"),
		Method:  domain.MethodCash,
		OrderID: orders[2].ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), third.Transaction)
}

func TestCreateContinuesAfterStoredPayments(t *testing.T) {
	svc, seed := newTestService(t)
	orders := seedOrders(seed, 2)
	seed.Payment(orders[0], 7)

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Transaction: int64Ptr(3),
		Amount:      decimal.RequireFromString("5"),
		Method:      domain.MethodCash,
		OrderID:     orders[1].ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), resp.Transaction)
}

func TestConcurrentCreateAllocatesDistinctContiguousNumbers(t *testing.T) {
	svc, seed := newTestService(t)
	const n = 12
	orders := seedOrders(seed, n)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int64
		errs    []error
	)
	for _, order := range orders {
		wg.Add(1)
		go func(orderID string) {
			defer wg.Done()
			resp, err := svc.Create(context.Background(), domain.CreateRequest{
				Amount:  decimal.RequireFromString("1.00"),
				Method:  domain.MethodCash,
				OrderID: orderID,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers = append(numbers, resp.Transaction)
		}(order.ID.String())
	}
	wg.Wait()

	require.Empty(t, errs)
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	expected := make([]int64, 0, n)
	for i := int64(1); i <= n; i++ {
		expected = append(expected, i)
	}
	assert.Equal(t, expected, numbers)
}

func TestSecondPaymentForOrderConflicts(t *testing.T) {
	svc, seed := newTestService(t)
	ctx := context.Background()
	orders := seedOrders(seed, 2)

	first, err := svc.Create(ctx, domain.CreateRequest{
		Amount:  decimal.RequireFromString("22.00"),
		Method:  domain.MethodCash,
		OrderID: orders[0].ID.String(),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateRequest{
		Amount:  decimal.RequireFromString("99.00"),
		Method:  domain.MethodCreditCard,
		OrderID: orders[0].ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrOrderAlreadyPaid)

	stored, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, *first, *stored)

	// the rejected attempt must not burn a number
	next, err := svc.Create(ctx, domain.CreateRequest{
		Amount:  decimal.RequireFromString("1.00"),
		Method:  domain.MethodCash,
		OrderID: orders[1].ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, first.Transaction+1, next.Transaction)
}

func TestCreateValidation(t *testing.T) {
	svc, seed := newTestService(t)
	ctx := context.Background()
	orders := seedOrders(seed, 1)
	orderID := orders[0].ID.String()

	cases := []struct {
		name string
		req  domain.CreateRequest
		err  error
	}{
		{"negative amount", domain.CreateRequest{Amount: decimal.RequireFromString("-1"), Method: domain.MethodCash, OrderID: orderID}, domain.ErrInvalidAmount},
		{"too many places", domain.CreateRequest{Amount: decimal.RequireFromString("1.234"), Method: domain.MethodCash, OrderID: orderID}, domain.ErrInvalidAmount},
		{"unknown method", domain.CreateRequest{Amount: decimal.RequireFromString("1"), Method: "Barter", OrderID: orderID}, domain.ErrInvalidMethod},
		{"zero transaction", domain.CreateRequest{Transaction: int64Ptr(0), Amount: decimal.RequireFromString("1"), Method: domain.MethodCash, OrderID: orderID}, domain.ErrInvalidTransaction},
		{"unknown order", domain.CreateRequest{Amount: decimal.RequireFromString("1"), Method: domain.MethodCash, OrderID: "12345"}, domain.ErrInvalidOrder},
		{"malformed order", domain.CreateRequest{Amount: decimal.RequireFromString("1"), Method: domain.MethodCash, OrderID: "abc"}, domain.ErrInvalidOrder},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestUpdateNeverRecomputesTransaction(t *testing.T) {
	svc, seed := newTestService(t)
	ctx := context.Background()
	orders := seedOrders(seed, 3)

	created, err := svc.Create(ctx, domain.CreateRequest{
		Transaction: int64Ptr(40),
		Amount:      decimal.RequireFromString("22.00"),
		Method:      domain.MethodCash,
		OrderID:     orders[0].ID.String(),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{
		Amount:  decimal.RequireFromString("5.00"),
		Method:  domain.MethodCash,
		OrderID: orders[1].ID.String(),
	})
	require.NoError(t, err)

	amount := decimal.RequireFromString("30.5")
	method := domain.MethodDigitalWallet
	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Amount: &amount, Method: &method})
	require.NoError(t, err)
	assert.Equal(t, int64(40), updated.Transaction)
	assert.Equal(t, "30.50", updated.Amount)
	assert.Equal(t, created.Order, updated.Order)

	taken := orders[1].ID.String()
	_, err = svc.Update(ctx, domain.UpdateRequest{ID: created.ID, OrderID: &taken})
	assert.ErrorIs(t, err, domain.ErrOrderAlreadyPaid)

	free := orders[2].ID.String()
	moved, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, OrderID: &free})
	require.NoError(t, err)
	assert.Equal(t, free, moved.Order)
	assert.Equal(t, int64(40), moved.Transaction)
}

func TestDeleteRemovesQuotas(t *testing.T) {
	svc, seed := newTestService(t)
	ctx := context.Background()
	orders := seedOrders(seed, 2)
	paid := seed.Payment(orders[0], 1)
	kept := seed.Payment(orders[1], 2)
	seed.Quota(paid, 1, 2)
	seed.Quota(paid, 2, 2)
	seed.Quota(kept, 1, 1)

	require.NoError(t, svc.Delete(ctx, paid.ID.String()))

	_, err := svc.Get(ctx, paid.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(1), seed.Count(&quotadomain.Quota{}))
	assert.Equal(t, int64(2), seed.Count(&orderdomain.Order{}))

	assert.ErrorIs(t, svc.Delete(ctx, paid.ID.String()), domain.ErrNotFound)
}

func TestListFiltersByOrder(t *testing.T) {
	svc, seed := newTestService(t)
	ctx := context.Background()
	orders := seedOrders(seed, 2)
	seed.Payment(orders[0], 7)
	seed.Payment(orders[1], 3)

	all, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(3), all[0].Transaction)

	one, err := svc.List(ctx, domain.ListRequest{OrderID: orders[0].ID.String()})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, int64(7), one[0].Transaction)
}
