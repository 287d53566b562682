package bizmetrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/birracraft/internal/config"
	orderdomain "github.com/smallbiznis/birracraft/internal/order/domain"
	"gorm.io/gorm"
)

// Snapshot holds the business gauges refreshed before every push.
type Snapshot struct {
	registry *prometheus.Registry

	customers   prometheus.Gauge
	orders      *prometheus.GaugeVec
	payments    prometheus.Gauge
	quotas      prometheus.Gauge
	paidAmount  prometheus.Gauge
	lastTxn     prometheus.Gauge
}

func NewSnapshot(cfg config.Config) *Snapshot {
	labels := prometheus.Labels{"service": cfg.AppName, "env": cfg.Environment}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help, ConstLabels: labels})
	}

	s := &Snapshot{
		registry:   prometheus.NewRegistry(),
		customers:  gauge("birracraft_customers", "Registered customers."),
		payments:   gauge("birracraft_payments", "Recorded payments."),
		quotas:     gauge("birracraft_quotas", "Scheduled quotas."),
		paidAmount: gauge("birracraft_payments_amount", "Sum of all payment amounts."),
		lastTxn:    gauge("birracraft_last_transaction_number", "Highest allocated payment transaction number."),
		orders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "birracraft_orders",
			Help:        "Orders by state.",
			ConstLabels: labels,
		}, []string{"state"}),
	}
	s.registry.MustRegister(s.customers, s.orders, s.payments, s.quotas, s.paidAmount, s.lastTxn)
	return s
}

func (s *Snapshot) Registry() *prometheus.Registry { return s.registry }

// Refresh reads the current counts from the database.
func (s *Snapshot) Refresh(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	var customers, payments, quotas int64
	if err := db.Table("customers").Count(&customers).Error; err != nil {
		return err
	}
	if err := db.Table("payments").Count(&payments).Error; err != nil {
		return err
	}
	if err := db.Table("quotas").Count(&quotas).Error; err != nil {
		return err
	}

	var byState []struct {
		State string
		Total int64
	}
	if err := db.Table("orders").Select("state, COUNT(1) AS total").Group("state").Scan(&byState).Error; err != nil {
		return err
	}

	var totals struct {
		Amount decimal.NullDecimal
		MaxTxn *int64
	}
	if err := db.Table("payments").
		Select("SUM(amount) AS amount, MAX(transaction_number) AS max_txn").
		Scan(&totals).Error; err != nil {
		return err
	}

	s.customers.Set(float64(customers))
	s.payments.Set(float64(payments))
	s.quotas.Set(float64(quotas))

	for _, state := range []orderdomain.State{orderdomain.StatePending, orderdomain.StateInQuotas, orderdomain.StatePaid} {
		s.orders.WithLabelValues(string(state)).Set(0)
	}
	for _, row := range byState {
		s.orders.WithLabelValues(row.State).Set(float64(row.Total))
	}

	amount := 0.0
	if totals.Amount.Valid {
		amount = totals.Amount.Decimal.InexactFloat64()
	}
	s.paidAmount.Set(amount)
	if totals.MaxTxn != nil {
		s.lastTxn.Set(float64(*totals.MaxTxn))
	} else {
		s.lastTxn.Set(0)
	}
	return nil
}
