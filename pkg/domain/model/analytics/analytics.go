package analytics

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

// DefaultLimit is the number of ranked entries requested when none is given
const DefaultLimit = 5

// Period is a predefined reporting window
type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
	PeriodCustom  Period = "custom"
)

// Range selects the reporting window for analytics endpoints
type Range struct {
	Period   Period
	DateFrom string
	DateTo   string
	Limit    int
}

// Validate checks that a custom range has both dates
func (r Range) Validate() error {
	if r.Period == PeriodCustom && (r.DateFrom == "" || r.DateTo == "") {
		return goerr.New("custom period requires date_from and date_to",
			goerr.T(apperr.ErrTagRequiredField),
			goerr.V("date_from", r.DateFrom),
			goerr.V("date_to", r.DateTo))
	}
	if r.Limit < 0 {
		return goerr.New("limit must not be negative",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.V("limit", r.Limit))
	}
	return nil
}

// WithDefaults fills the limit when unset
func (r Range) WithDefaults() Range {
	if r.Limit == 0 {
		r.Limit = DefaultLimit
	}
	return r
}

// DateLayout is the date format of date_from and date_to
const DateLayout = "2006-01-02"

// Resolve fills missing dates of a predefined period, ending today. A
// custom range is returned as is.
func (r Range) Resolve(now time.Time) Range {
	if r.Period == PeriodCustom {
		return r
	}
	if r.Period == "" {
		r.Period = PeriodMonth
	}
	if r.DateTo == "" {
		r.DateTo = now.Format(DateLayout)
	}
	if r.DateFrom == "" {
		var from time.Time
		switch r.Period {
		case PeriodWeek:
			from = now.AddDate(0, 0, -7)
		case PeriodQuarter:
			from = now.AddDate(0, -3, 0)
		case PeriodYear:
			from = now.AddDate(-1, 0, 0)
		default:
			from = now.AddDate(0, -1, 0)
		}
		r.DateFrom = from.Format(DateLayout)
	}
	return r
}

// Query encodes the range as period, date_from, date_to and limit
func (r Range) Query() url.Values {
	q := url.Values{}
	if r.Period != "" {
		q.Set("period", string(r.Period))
	}
	if r.DateFrom != "" {
		q.Set("date_from", r.DateFrom)
	}
	if r.DateTo != "" {
		q.Set("date_to", r.DateTo)
	}
	if r.Limit > 0 {
		q.Set("limit", strconv.Itoa(r.Limit))
	}
	return q
}

// ExportFileName names an export the same way the dashboard download does
func (r Range) ExportFileName(exportType string) string {
	return fmt.Sprintf("analytics_%s_%s.%s", r.DateFrom, r.DateTo, exportType)
}

// Overview is the headline numbers of the analytics page
type Overview struct {
	TotalRevenue      float64 `json:"total_revenue"`
	TotalProfit       float64 `json:"total_profit"`
	TotalOrders       int     `json:"total_orders"`
	AverageOrderValue float64 `json:"average_order_value"`
	MarginPercentage  float64 `json:"margin_percentage"`
	ActiveProducts    int     `json:"active_products"`
}

// RevenuePoint is one bucket of the revenue series
type RevenuePoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
	Orders  int     `json:"orders"`
}

// ProductStat ranks a product by sales
type ProductStat struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Quantity         int     `json:"quantity"`
	Revenue          float64 `json:"revenue"`
	Profit           float64 `json:"profit"`
	MarginPercentage float64 `json:"margin_percentage"`
}

// CategoryStat ranks a category by revenue
type CategoryStat struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ProductsCount int     `json:"products_count"`
	Revenue       float64 `json:"revenue"`
}

// Report is everything the analytics page loads at once
type Report struct {
	Range              Range          `json:"-"`
	Overview           *Overview      `json:"overview"`
	Revenue            []RevenuePoint `json:"revenue"`
	TopProducts        []ProductStat  `json:"top_products"`
	TopCategories      []CategoryStat `json:"top_categories"`
	ProfitableProducts []ProductStat  `json:"profitable_products"`
}
