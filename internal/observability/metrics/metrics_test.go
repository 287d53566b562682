package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

func TestFilterAttributesDropsHighCardinalityLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("customer_id", "456"),
		attribute.String("method", "Cash"),
		attribute.String("email", "a@b.c"),
	)
	if len(attrs) != 1 || attrs[0].Key != "method" {
		t.Fatalf("expected only method to survive, got %v", attrs)
	}
}

func TestClassifyJobReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", context.DeadlineExceeded, JobReasonDeadlineExceeded},
		{"decode", fmt.Errorf("bad payload: %w", ErrDecode), JobReasonDecode},
		{"delivery", fmt.Errorf("smtp: %w", ErrDelivery), JobReasonDelivery},
		{"duplicate", gorm.ErrDuplicatedKey, JobReasonDuplicate},
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, JobReasonDBLockTimeout},
		{"unknown", errors.New("boom"), JobReasonUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyJobReason(tc.err); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestWorkerMetricsCountsErrors(t *testing.T) {
	reg := NewRegistry()
	m := NewWorkerMetrics(reg, Config{ServiceName: "birracraft", Environment: "test"})

	m.IncJobRun("sales_report")
	m.IncJobError("sales_report", ErrDelivery)

	if got := testutil.ToFloat64(m.jobRuns.WithLabelValues("sales_report")); got != 1 {
		t.Fatalf("expected 1 run, got %v", got)
	}
	if got := testutil.ToFloat64(m.jobErrors.WithLabelValues("sales_report", JobReasonDelivery)); got != 1 {
		t.Fatalf("expected 1 delivery error, got %v", got)
	}
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := NewRegistry()
	m := NewHTTPMetrics(reg, Config{})

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/order/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/order/7", nil))

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/order/:id", "404")); got != 1 {
		t.Fatalf("expected 1 request, got %v", got)
	}
}

func TestNoopMetricsAreSafe(t *testing.T) {
	m := NewNoop()
	m.RecordPaymentCreated(context.Background(), "Cash", 3)
	var nilMetrics *Metrics
	nilMetrics.RecordOrderCreated(context.Background(), "Pending")
}
