package handler

import "github.com/labstack/echo/v4"

// Handlers は /api/v1 に登録するハンドラー一式
type Handlers struct {
	Resource *ResourceHandler
	Booking  *BookingHandler
	Payment  *PaymentHandler
}

// RegisterRoutes は API のルートを登録する
func RegisterRoutes(g *echo.Group, h Handlers) {
	g.POST("/resources", h.Resource.Create)
	g.GET("/resources", h.Resource.List)
	g.GET("/resources/:id", h.Resource.GetByID)
	g.GET("/resources/:id/quote", h.Resource.Quote)

	g.POST("/bookings", h.Booking.Create)
	g.GET("/bookings", h.Booking.List)
	g.GET("/bookings/:booking_id", h.Booking.GetByID)
	g.POST("/bookings/:booking_id/cancel", h.Booking.Cancel)
	g.POST("/bookings/:booking_id/complete", h.Booking.Complete)
	g.POST("/bookings/:booking_id/no-show", h.Booking.NoShow)

	g.POST("/payments", h.Payment.Initiate)
	g.POST("/payments/verify", h.Payment.Verify)
	g.POST("/payments/:id/retry", h.Payment.Retry)

	g.POST("/payment-methods", h.Payment.AddMethod)
	g.GET("/payment-methods", h.Payment.ListMethods)
	g.POST("/payment-methods/:id/default", h.Payment.SetDefaultMethod)
}
