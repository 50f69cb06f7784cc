package analytics

// DashboardStats is the summary shown on the dashboard landing page
type DashboardStats struct {
	TotalProducts     int     `json:"total_products"`
	MonitoredProducts int     `json:"monitored_products"`
	TotalOrders       int     `json:"total_orders"`
	PendingOrders     int     `json:"pending_orders"`
	Revenue           float64 `json:"revenue"`
	Profit            float64 `json:"profit"`
	LowStockProducts  int     `json:"low_stock_products"`
	PriceAlerts       int     `json:"price_alerts"`
}

// ChartPoint is one bucket of the dashboard sales chart
type ChartPoint struct {
	Label  string  `json:"label"`
	Sales  float64 `json:"sales"`
	Profit float64 `json:"profit"`
	Orders int     `json:"orders"`
}
