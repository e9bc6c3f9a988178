package http

import (
	"net/http"

	"candlerelay/internal/domain/fault"

	"github.com/labstack/echo/v4"
)

// FaultResponse maps a domain fault to its HTTP status and body. Unclassified
// errors become a generic 500 without internal detail.
func FaultResponse(c echo.Context, err error) error {
	switch fault.KindOf(err) {
	case fault.KindInvalidArgument:
		return c.JSON(http.StatusBadRequest, ErrorBody{Error: err.Error()})
	case fault.KindNotFound:
		return c.JSON(http.StatusNotFound, ErrorBody{Error: err.Error()})
	case fault.KindUnavailable:
		return c.JSON(http.StatusServiceUnavailable, UnavailableBody{
			Error:   "Service Unavailable",
			Message: err.Error(),
			Type:    "store_unavailable",
		})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorBody{Error: "Internal server error"})
	}
}

// ValidationErrorResponse writes a 400 with the first violated constraint.
func ValidationErrorResponse(c echo.Context, errs []ValidationError) error {
	msg := "invalid request"
	if len(errs) > 0 {
		msg = errs[0].Message
	}
	return c.JSON(http.StatusBadRequest, ErrorBody{Error: msg})
}
