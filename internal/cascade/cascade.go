// Package cascade removes an entity together with everything it owns.
//
// Ownership edges:
//
//	customer  -> orders
//	order     -> order_products, payment
//	payment   -> quotas
//	container -> products
//	flavour   -> products
//	product   -> order_products
//
// Every function expects to run inside the caller's transaction so a failure
// anywhere leaves all rows in place.
package cascade

import (
	"context"

	"github.com/bwmarrin/snowflake"
	containerdomain "github.com/smallbiznis/birracraft/internal/container/domain"
	customerdomain "github.com/smallbiznis/birracraft/internal/customer/domain"
	flavourdomain "github.com/smallbiznis/birracraft/internal/flavour/domain"
	orderdomain "github.com/smallbiznis/birracraft/internal/order/domain"
	paymentdomain "github.com/smallbiznis/birracraft/internal/payment/domain"
	productdomain "github.com/smallbiznis/birracraft/internal/product/domain"
	quotadomain "github.com/smallbiznis/birracraft/internal/quota/domain"
	"gorm.io/gorm"
)

// Result counts the rows removed per table.
type Result struct {
	Customers     int64
	Orders        int64
	OrderProducts int64
	Payments      int64
	Quotas        int64
	Products      int64
	Containers    int64
	Flavours      int64
}

func (r *Result) merge(other Result) {
	r.Customers += other.Customers
	r.Orders += other.Orders
	r.OrderProducts += other.OrderProducts
	r.Payments += other.Payments
	r.Quotas += other.Quotas
	r.Products += other.Products
	r.Containers += other.Containers
	r.Flavours += other.Flavours
}

func DeleteCustomers(ctx context.Context, tx *gorm.DB, ids ...snowflake.ID) (Result, error) {
	var res Result
	if len(ids) == 0 {
		return res, nil
	}
	tx = tx.WithContext(ctx)

	var orderIDs []snowflake.ID
	if err := tx.Model(&orderdomain.Order{}).Where("customer_id IN ?", ids).Pluck("id", &orderIDs).Error; err != nil {
		return res, err
	}
	orders, err := DeleteOrders(ctx, tx, orderIDs...)
	if err != nil {
		return res, err
	}
	res.merge(orders)

	del := tx.Where("id IN ?", ids).Delete(&customerdomain.Customer{})
	if del.Error != nil {
		return res, del.Error
	}
	res.Customers = del.RowsAffected
	return res, nil
}

func DeleteOrders(ctx context.Context, tx *gorm.DB, ids ...snowflake.ID) (Result, error) {
	var res Result
	if len(ids) == 0 {
		return res, nil
	}
	tx = tx.WithContext(ctx)

	var paymentIDs []snowflake.ID
	if err := tx.Model(&paymentdomain.Payment{}).Where("order_id IN ?", ids).Pluck("id", &paymentIDs).Error; err != nil {
		return res, err
	}
	payments, err := DeletePayments(ctx, tx, paymentIDs...)
	if err != nil {
		return res, err
	}
	res.merge(payments)

	links := tx.Where("order_id IN ?", ids).Delete(&orderdomain.OrderProduct{})
	if links.Error != nil {
		return res, links.Error
	}
	res.OrderProducts += links.RowsAffected

	del := tx.Where("id IN ?", ids).Delete(&orderdomain.Order{})
	if del.Error != nil {
		return res, del.Error
	}
	res.Orders = del.RowsAffected
	return res, nil
}

func DeletePayments(ctx context.Context, tx *gorm.DB, ids ...snowflake.ID) (Result, error) {
	var res Result
	if len(ids) == 0 {
		return res, nil
	}
	tx = tx.WithContext(ctx)

	quotas := tx.Where("payment_id IN ?", ids).Delete(&quotadomain.Quota{})
	if quotas.Error != nil {
		return res, quotas.Error
	}
	res.Quotas = quotas.RowsAffected

	del := tx.Where("id IN ?", ids).Delete(&paymentdomain.Payment{})
	if del.Error != nil {
		return res, del.Error
	}
	res.Payments = del.RowsAffected
	return res, nil
}

// DeleteProducts unlinks the products from their orders before removing
// them. The orders themselves are kept.
func DeleteProducts(ctx context.Context, tx *gorm.DB, ids ...snowflake.ID) (Result, error) {
	var res Result
	if len(ids) == 0 {
		return res, nil
	}
	tx = tx.WithContext(ctx)

	links := tx.Where("product_id IN ?", ids).Delete(&orderdomain.OrderProduct{})
	if links.Error != nil {
		return res, links.Error
	}
	res.OrderProducts = links.RowsAffected

	del := tx.Where("id IN ?", ids).Delete(&productdomain.Product{})
	if del.Error != nil {
		return res, del.Error
	}
	res.Products = del.RowsAffected
	return res, nil
}

func DeleteContainers(ctx context.Context, tx *gorm.DB, ids ...snowflake.ID) (Result, error) {
	if len(ids) == 0 {
		return Result{}, nil
	}
	res, err := deleteProductsBy(ctx, tx, "container_id", ids)
	if err != nil {
		return res, err
	}
	del := tx.WithContext(ctx).Where("id IN ?", ids).Delete(&containerdomain.Container{})
	if del.Error != nil {
		return res, del.Error
	}
	res.Containers = del.RowsAffected
	return res, nil
}

func DeleteFlavours(ctx context.Context, tx *gorm.DB, ids ...snowflake.ID) (Result, error) {
	if len(ids) == 0 {
		return Result{}, nil
	}
	res, err := deleteProductsBy(ctx, tx, "flavour_id", ids)
	if err != nil {
		return res, err
	}
	del := tx.WithContext(ctx).Where("id IN ?", ids).Delete(&flavourdomain.Flavour{})
	if del.Error != nil {
		return res, del.Error
	}
	res.Flavours = del.RowsAffected
	return res, nil
}

func deleteProductsBy(ctx context.Context, tx *gorm.DB, column string, ids []snowflake.ID) (Result, error) {
	if len(ids) == 0 {
		return Result{}, nil
	}
	var productIDs []snowflake.ID
	err := tx.WithContext(ctx).Model(&productdomain.Product{}).Where(column+" IN ?", ids).Pluck("id", &productIDs).Error
	if err != nil {
		return Result{}, err
	}
	return DeleteProducts(ctx, tx, productIDs...)
}
