package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSalesReport(t *testing.T) {
	provider := New()

	out, err := provider.RenderSalesReport(context.Background(), SalesReport{
		Title:          "Sales report",
		CompanyName:    "Birracraft",
		RequestedBy:    "ana",
		DateFrom:       "2024-01-01",
		GeneratedAt:    "2024-02-01 10:00",
		CurrencySymbol: "$",
		Rows: []SalesRow{
			{Date: "2024-01-03", Customer: "Bar Uno", State: "Paid", Total: "12.50", Transaction: "7", Method: "Cash", Paid: "12.50"},
			{Date: "2024-01-09", Customer: "Bar Dos", State: "Pending", Total: "22.00"},
		},
		OrdersTotal: "34.50",
		PaidTotal:   "12.50",
		QuotaTotal:  "0.00",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderSalesReportRequiresTitle(t *testing.T) {
	_, err := New().RenderSalesReport(context.Background(), SalesReport{})
	assert.ErrorIs(t, err, ErrEmptyTitle)
}
