package testutil

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	containerdomain "github.com/smallbiznis/birracraft/internal/container/domain"
	customerdomain "github.com/smallbiznis/birracraft/internal/customer/domain"
	flavourdomain "github.com/smallbiznis/birracraft/internal/flavour/domain"
	orderdomain "github.com/smallbiznis/birracraft/internal/order/domain"
	paymentdomain "github.com/smallbiznis/birracraft/internal/payment/domain"
	productdomain "github.com/smallbiznis/birracraft/internal/product/domain"
	quotadomain "github.com/smallbiznis/birracraft/internal/quota/domain"
	"github.com/smallbiznis/birracraft/pkg/date"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Seeder inserts rows directly, bypassing the services.
type Seeder struct {
	t    *testing.T
	db   *gorm.DB
	node *snowflake.Node
	now  time.Time
}

func NewSeeder(t *testing.T, db *gorm.DB, node *snowflake.Node) *Seeder {
	return &Seeder{t: t, db: db, node: node, now: time.Now().UTC()}
}

func (s *Seeder) create(value any) {
	s.t.Helper()
	require.NoError(s.t, s.db.Create(value).Error)
}

func (s *Seeder) Customer(name string) customerdomain.Customer {
	s.t.Helper()
	c := customerdomain.Customer{
		ID:        s.node.Generate(),
		Name:      name,
		Address:   "Av. Siempre Viva 742",
		Email:     "cliente@birracraft.test",
		Cellphone: "1155550000",
		Type:      customerdomain.TypeParticular,
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	s.create(&c)
	return c
}

func (s *Seeder) Container(kind containerdomain.Type, liters string) containerdomain.Container {
	s.t.Helper()
	c := containerdomain.Container{
		ID:        s.node.Generate(),
		Type:      kind,
		Liters:    decimal.RequireFromString(liters),
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	s.create(&c)
	return c
}

func (s *Seeder) Flavour(name, pricePerLt string) flavourdomain.Flavour {
	s.t.Helper()
	f := flavourdomain.Flavour{
		ID:          s.node.Generate(),
		Name:        name,
		Description: name + " ale",
		PricePerLt:  decimal.RequireFromString(pricePerLt),
		CreatedAt:   s.now,
		UpdatedAt:   s.now,
	}
	s.create(&f)
	return f
}

func (s *Seeder) Product(code string, container containerdomain.Container, flavour flavourdomain.Flavour) productdomain.Product {
	s.t.Helper()
	p := productdomain.Product{
		ID:          s.node.Generate(),
		Code:        code,
		ContainerID: container.ID,
		FlavourID:   flavour.ID,
		ArrivedDate: date.New(2023, time.January, 15),
		Price:       decimal.RequireFromString("10.00"),
		State:       productdomain.StateInStock,
		CreatedAt:   s.now,
		UpdatedAt:   s.now,
	}
	s.create(&p)
	return p
}

func (s *Seeder) Order(customer customerdomain.Customer, products ...productdomain.Product) orderdomain.Order {
	s.t.Helper()
	o := orderdomain.Order{
		ID:           s.node.Generate(),
		Date:         date.New(2023, time.March, 1),
		Price:        decimal.RequireFromString("20.00"),
		DeliveryCost: decimal.RequireFromString("2.00"),
		TotalAmount:  decimal.RequireFromString("22.00"),
		CustomerID:   customer.ID,
		State:        orderdomain.StatePending,
		CreatedAt:    s.now,
		UpdatedAt:    s.now,
	}
	s.create(&o)
	for _, p := range products {
		s.create(&orderdomain.OrderProduct{OrderID: o.ID, ProductID: p.ID})
		o.ProductIDs = append(o.ProductIDs, p.ID)
	}
	return o
}

func (s *Seeder) Payment(order orderdomain.Order, transaction int64) paymentdomain.Payment {
	s.t.Helper()
	p := paymentdomain.Payment{
		ID:          s.node.Generate(),
		Transaction: transaction,
		Amount:      order.TotalAmount,
		Method:      paymentdomain.MethodCash,
		OrderID:     order.ID,
		CreatedAt:   s.now,
		UpdatedAt:   s.now,
	}
	s.create(&p)
	return p
}

func (s *Seeder) Quota(payment paymentdomain.Payment, current, total int) quotadomain.Quota {
	s.t.Helper()
	q := quotadomain.Quota{
		ID:           s.node.Generate(),
		CurrentQuota: current,
		TotalQuota:   total,
		Value:        decimal.RequireFromString("5.00"),
		Date:         date.New(2023, time.April, current),
		PaymentID:    payment.ID,
		CreatedAt:    s.now,
		UpdatedAt:    s.now,
	}
	s.create(&q)
	return q
}

// Count returns the number of rows in the model's table.
func (s *Seeder) Count(model any) int64 {
	s.t.Helper()
	var n int64
	require.NoError(s.t, s.db.Model(model).Count(&n).Error)
	return n
}
