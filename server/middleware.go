package server

import (
	"time"

	"github.com/existflow/sprintplan/internal/access"
	"github.com/existflow/sprintplan/internal/logger"
	"github.com/labstack/echo/v4"
)

// CallerHeader carries the acting employee's id. It is set by the gateway
// in front of the server.
const CallerHeader = "X-Employee-ID"

const callerKey = "caller"

// requestLogger logs every request and its response
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		// Log request
		logger.Debug("HTTP Request",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("remote", req.RemoteAddr))

		// Process request
		err := next(c)

		// Log response
		res := c.Response()
		logger.Info("HTTP Response",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)),
			logger.F("duration", time.Since(start).String()))

		return err
	}
}

// callerMiddleware resolves the caller from CallerHeader. Unknown or missing
// ids produce a caller without a role, which permission checks deny.
func (s *Server) callerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(CallerHeader)
		caller := access.Caller{EmployeeID: id}
		if e, ok := s.store.Employee(id); ok && !e.Archived {
			caller = access.CallerFor(e)
		}
		c.Set(callerKey, caller)
		return next(c)
	}
}

func callerFrom(c echo.Context) access.Caller {
	caller, _ := c.Get(callerKey).(access.Caller)
	return caller
}
