package models

type DashboardStats struct {
	TodayBookings        int `json:"today_bookings"`
	PendingConfirmations int `json:"pending_confirmations"`
	TotalCustomers       int `json:"total_customers"`
	ThisWeekRevenue      int `json:"this_week_revenue"`
}
