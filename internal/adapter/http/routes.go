package http

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the service API. idem guards loan creation only.
func RegisterRoutes(e *echo.Echo, h *Handler, lh *LoanHandler, idem echo.MiddlewareFunc) {
	e.GET("/health", h.Health)
	e.GET("/metrics", h.Metrics)

	g := e.Group("/api/v1/loans")
	g.GET("", lh.ListLoans)
	g.GET("/user/:user_id", lh.ListUserLoans)
	g.GET("/:loan_id", lh.GetLoan)
	if idem != nil {
		g.POST("", lh.CreateLoan, idem)
	} else {
		g.POST("", lh.CreateLoan)
	}
	g.PATCH("/:loan_id/return", lh.ReturnLoan)
	g.DELETE("/:loan_id", lh.DeleteLoan)
}
