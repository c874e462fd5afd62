package models

// AdminOrder is the flattened order row shown on the admin dashboard
type AdminOrder struct {
	OrderID string      `json:"order_id"`
	User    string      `json:"user"`
	Status  OrderStatus `json:"status"`
	Total   float64     `json:"total"`
	Items   string      `json:"items"`
}

// AdminProduct is the flattened product row shown on the admin dashboard
type AdminProduct struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	Category  string  `json:"category"`
	Status    string  `json:"status"`
}

// DashboardStats aggregates order figures for the admin dashboard
type DashboardStats struct {
	Revenue     float64 `db:"revenue" json:"revenue"`
	TotalOrders int     `db:"total_orders" json:"total_orders"`
}

// Dashboard is the full admin dashboard payload
type Dashboard struct {
	Orders    []AdminOrder   `json:"orders"`
	Products  []AdminProduct `json:"products"`
	Stats     DashboardStats `json:"stats"`
	AdminName string         `json:"admin_name"`
}
