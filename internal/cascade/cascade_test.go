package cascade_test

import (
	"context"
	"errors"
	"testing"

	"github.com/smallbiznis/birracraft/internal/cascade"
	containerdomain "github.com/smallbiznis/birracraft/internal/container/domain"
	customerdomain "github.com/smallbiznis/birracraft/internal/customer/domain"
	orderdomain "github.com/smallbiznis/birracraft/internal/order/domain"
	paymentdomain "github.com/smallbiznis/birracraft/internal/payment/domain"
	productdomain "github.com/smallbiznis/birracraft/internal/product/domain"
	quotadomain "github.com/smallbiznis/birracraft/internal/quota/domain"
	"github.com/smallbiznis/birracraft/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDeleteCustomersRemovesOwnedRows(t *testing.T) {
	conn := testutil.NewDB(t)
	seed := testutil.NewSeeder(t, conn, testutil.NewNode(t))

	keg := seed.Container(containerdomain.TypeKeg, "20")
	product := seed.Product("K1", keg, seed.Flavour("IPA", "6.80"))
	juan := seed.Customer("Juan")
	ana := seed.Customer("Ana")
	order := seed.Order(juan, product)
	payment := seed.Payment(order, 1)
	seed.Quota(payment, 1, 2)
	seed.Quota(payment, 2, 2)
	kept := seed.Order(ana, product)

	var res cascade.Result
	err := conn.Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = cascade.DeleteCustomers(context.Background(), tx, juan.ID)
		return err
	})
	require.NoError(t, err)

	assert.EqualValues(t, 1, res.Customers)
	assert.EqualValues(t, 1, res.Orders)
	assert.EqualValues(t, 1, res.OrderProducts)
	assert.EqualValues(t, 1, res.Payments)
	assert.EqualValues(t, 2, res.Quotas)

	assert.EqualValues(t, 1, seed.Count(&customerdomain.Customer{}))
	assert.EqualValues(t, 1, seed.Count(&orderdomain.Order{}))
	assert.EqualValues(t, 1, seed.Count(&orderdomain.OrderProduct{}))
	assert.EqualValues(t, 1, seed.Count(&productdomain.Product{}))
	assert.Zero(t, seed.Count(&paymentdomain.Payment{}))
	assert.Zero(t, seed.Count(&quotadomain.Quota{}))

	var left orderdomain.Order
	require.NoError(t, conn.First(&left, kept.ID).Error)
}

func TestDeleteRollsBackWithTransaction(t *testing.T) {
	conn := testutil.NewDB(t)
	seed := testutil.NewSeeder(t, conn, testutil.NewNode(t))

	juan := seed.Customer("Juan")
	seed.Quota(seed.Payment(seed.Order(juan), 1), 1, 1)

	abort := errors.New("abort")
	err := conn.Transaction(func(tx *gorm.DB) error {
		if _, err := cascade.DeleteCustomers(context.Background(), tx, juan.ID); err != nil {
			return err
		}
		return abort
	})
	require.ErrorIs(t, err, abort)

	assert.EqualValues(t, 1, seed.Count(&customerdomain.Customer{}))
	assert.EqualValues(t, 1, seed.Count(&orderdomain.Order{}))
	assert.EqualValues(t, 1, seed.Count(&paymentdomain.Payment{}))
	assert.EqualValues(t, 1, seed.Count(&quotadomain.Quota{}))
}

func TestDeleteContainersKeepsOrders(t *testing.T) {
	conn := testutil.NewDB(t)
	seed := testutil.NewSeeder(t, conn, testutil.NewNode(t))

	keg := seed.Container(containerdomain.TypeKeg, "20")
	bottle := seed.Container(containerdomain.TypeBottle, "1")
	ipa := seed.Flavour("IPA", "6.80")
	k1 := seed.Product("K1", keg, ipa)
	b1 := seed.Product("B1", bottle, ipa)
	seed.Order(seed.Customer("Juan"), k1, b1)

	var res cascade.Result
	err := conn.Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = cascade.DeleteContainers(context.Background(), tx, keg.ID)
		return err
	})
	require.NoError(t, err)

	assert.EqualValues(t, 1, res.Containers)
	assert.EqualValues(t, 1, res.Products)
	assert.EqualValues(t, 1, res.OrderProducts)
	assert.EqualValues(t, 1, seed.Count(&orderdomain.Order{}))
	assert.EqualValues(t, 1, seed.Count(&productdomain.Product{}))
	assert.EqualValues(t, 1, seed.Count(&containerdomain.Container{}))
}
