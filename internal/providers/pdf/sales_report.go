package pdf

import (
	"context"
	"errors"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// SalesReport is the already formatted content of a sales report. Amounts
// are rendered as given.
type SalesReport struct {
	Title          string
	CompanyName    string
	RequestedBy    string
	DateFrom       string
	GeneratedAt    string
	CurrencySymbol string

	Rows      []SalesRow
	Truncated bool

	OrdersTotal string
	PaidTotal   string
	QuotaTotal  string
}

type SalesRow struct {
	Date        string
	Customer    string
	State       string
	Total       string
	Transaction string
	Method      string
	Paid        string
	Quotas      int
}

var ErrEmptyTitle = errors.New("empty_report_title")

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) RenderSalesReport(ctx context.Context, report SalesReport) ([]byte, error) {
	if report.Title == "" {
		return nil, ErrEmptyTitle
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, report.Title, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, report.CompanyName, props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(18,
		col.New(6).Add(
			text.New("Orders since: "+report.DateFrom, props.Text{Top: 0}),
			text.New("Requested by: "+report.RequestedBy, props.Text{Top: 5}),
			text.New("Generated at: "+report.GeneratedAt, props.Text{Top: 10}),
		),
		col.New(6),
	)

	header := props.Text{Style: fontstyle.Bold, Size: 9}
	headerRight := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}
	m.AddRow(8,
		text.NewCol(2, "Date", header),
		text.NewCol(3, "Customer", header),
		text.NewCol(1, "State", header),
		text.NewCol(2, "Total", headerRight),
		text.NewCol(1, "Txn", headerRight),
		text.NewCol(2, "Method", header),
		text.NewCol(1, "Quotas", headerRight),
	)
	m.AddRow(2, line.NewCol(12))

	cell := props.Text{Size: 8}
	cellRight := props.Text{Size: 8, Align: align.Right}
	for _, row := range report.Rows {
		m.AddRow(7,
			text.NewCol(2, row.Date, cell),
			text.NewCol(3, row.Customer, cell),
			text.NewCol(1, row.State, cell),
			text.NewCol(2, report.CurrencySymbol+row.Total, cellRight),
			text.NewCol(1, row.Transaction, cellRight),
			text.NewCol(2, row.Method, cell),
			text.NewCol(1, fmt.Sprintf("%d", row.Quotas), cellRight),
		)
	}
	if len(report.Rows) == 0 {
		m.AddRow(10, text.NewCol(12, "No orders in the selected period.", props.Text{Size: 9, Top: 2}))
	}
	if report.Truncated {
		m.AddRow(8, text.NewCol(12, "Report truncated, narrow the date range to see every order.", props.Text{Size: 8, Style: fontstyle.Italic, Top: 2}))
	}

	m.AddRow(2, line.NewCol(12))
	totals := []struct{ label, value string }{
		{"Orders total", report.OrdersTotal},
		{"Paid", report.PaidTotal},
		{"Scheduled in quotas", report.QuotaTotal},
	}
	for _, t := range totals {
		m.AddRow(7,
			col.New(7),
			text.NewCol(3, t.label, props.Text{Size: 9}),
			text.NewCol(2, report.CurrencySymbol+t.value, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}
