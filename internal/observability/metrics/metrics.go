package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics holds the domain counters exported over OTLP.
type Metrics struct {
	ordersCreated     metric.Int64Counter
	paymentsCreated   metric.Int64Counter
	paymentConflicts  metric.Int64Counter
	transactionNumber metric.Int64Gauge
	cascadeDeletes    metric.Int64Counter
	reportsEnqueued   metric.Int64Counter
	rateLimitDenied   metric.Int64Counter
}

// NewProvider configures the global meter provider. Disabled config yields a no-op provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}
	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

// New registers the domain instruments on provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "birracraft"
	}
	meter := provider.Meter(name)

	var (
		m   Metrics
		err error
	)
	if m.ordersCreated, err = meter.Int64Counter("birracraft_orders_created_total"); err != nil {
		return nil, err
	}
	if m.paymentsCreated, err = meter.Int64Counter("birracraft_payments_created_total"); err != nil {
		return nil, err
	}
	if m.paymentConflicts, err = meter.Int64Counter("birracraft_payment_conflicts_total"); err != nil {
		return nil, err
	}
	if m.transactionNumber, err = meter.Int64Gauge("birracraft_payment_transaction_number"); err != nil {
		return nil, err
	}
	if m.cascadeDeletes, err = meter.Int64Counter("birracraft_cascade_deletes_total"); err != nil {
		return nil, err
	}
	if m.reportsEnqueued, err = meter.Int64Counter("birracraft_reports_enqueued_total"); err != nil {
		return nil, err
	}
	if m.rateLimitDenied, err = meter.Int64Counter("birracraft_rate_limit_denied_total"); err != nil {
		return nil, err
	}
	return &m, nil
}

// NewNoop returns instruments bound to a no-op provider, for tests.
func NewNoop() *Metrics {
	m, _ := New(Config{}, noop.NewMeterProvider())
	return m
}

func (m *Metrics) RecordOrderCreated(ctx context.Context, state string) {
	if m == nil {
		return
	}
	m.ordersCreated.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.String("state", state))...))
}

// RecordPaymentCreated counts a payment and publishes the last allocated transaction number.
func (m *Metrics) RecordPaymentCreated(ctx context.Context, method string, transaction int64) {
	if m == nil {
		return
	}
	m.paymentsCreated.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.String("method", method))...))
	m.transactionNumber.Record(ctx, transaction)
}

func (m *Metrics) RecordPaymentConflict(ctx context.Context) {
	if m == nil {
		return
	}
	m.paymentConflicts.Add(ctx, 1)
}

func (m *Metrics) RecordCascadeDelete(ctx context.Context, root string) {
	if m == nil {
		return
	}
	m.cascadeDeletes.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.String("resource", root))...))
}

func (m *Metrics) RecordReportEnqueued(ctx context.Context, backend, result string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("backend", backend),
		attribute.String("result", result),
	)
	m.reportsEnqueued.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.String("endpoint", endpoint))...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"state":    {},
	"method":   {},
	"resource": {},
	"backend":  {},
	"result":   {},
	"endpoint": {},
	"reason":   {},
}

// FilterAttributes keeps only low-cardinality labels.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; ok {
			filtered = append(filtered, attr)
		}
	}
	return filtered
}
