package analytics_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/analytics"
)

func TestRange_Query(t *testing.T) {
	r := analytics.Range{Period: analytics.PeriodCustom, DateFrom: "2024-01-01", DateTo: "2024-01-31"}.WithDefaults()
	q := r.Query()

	gt.Equal(t, q.Get("period"), "custom")
	gt.Equal(t, q.Get("date_from"), "2024-01-01")
	gt.Equal(t, q.Get("date_to"), "2024-01-31")
	gt.Equal(t, q.Get("limit"), "5")
}

func TestRange_Validate(t *testing.T) {
	gt.NoError(t, analytics.Range{Period: analytics.PeriodMonth}.Validate())
	gt.Error(t, analytics.Range{Period: analytics.PeriodCustom, DateFrom: "2024-01-01"}.Validate())
	gt.Error(t, analytics.Range{Limit: -1}.Validate())
}

func TestRange_ExportFileName(t *testing.T) {
	r := analytics.Range{DateFrom: "2024-01-01", DateTo: "2024-03-31"}
	gt.Equal(t, r.ExportFileName("csv"), "analytics_2024-01-01_2024-03-31.csv")
}

func TestRange_WithDefaultsKeepsExplicitLimit(t *testing.T) {
	r := analytics.Range{Limit: 10}.WithDefaults()
	gt.Equal(t, r.Limit, 10)
}

func TestRange_Resolve(t *testing.T) {
	now := time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		period analytics.Period
		from   string
	}{
		{analytics.PeriodWeek, "2024-03-24"},
		{analytics.PeriodMonth, "2024-03-02"},
		{analytics.PeriodQuarter, "2023-12-31"},
		{analytics.PeriodYear, "2023-03-31"},
		{"", "2024-03-02"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.period), func(t *testing.T) {
			r := analytics.Range{Period: tc.period}.Resolve(now)
			gt.Equal(t, r.DateFrom, tc.from)
			gt.Equal(t, r.DateTo, "2024-03-31")
		})
	}

	t.Run("custom range is kept", func(t *testing.T) {
		r := analytics.Range{Period: analytics.PeriodCustom, DateFrom: "2024-01-01"}.Resolve(now)
		gt.Equal(t, r.DateTo, "")
	})
}
