package http

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return v, true
}
