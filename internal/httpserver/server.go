package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/solpercival/Thoth/internal/middleware"
	"github.com/solpercival/Thoth/internal/session"
)

// Server is the webhook surface: a thin adapter translating call
// lifecycle webhooks into Session Manager operations.
type Server struct {
	manager *session.Manager
	echo    *echo.Echo
}

type callStartedRequest struct {
	CallID string `json:"call_id"`
	From   string `json:"from"`
}

type callEndedRequest struct {
	CallID string `json:"call_id"`
}

func New(manager *session.Manager, webhookKey string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(middleware.WebhookAuth(func() string { return webhookKey }))

	s := &Server{manager: manager, echo: e}
	e.POST("/webhook/call-started", s.callStarted)
	e.POST("/webhook/call-ended", s.callEnded)
	e.GET("/status", s.status)
	e.GET("/health", s.health)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) Start(addr string) error { return s.echo.Start(addr) }

func (s *Server) Shutdown(ctx context.Context) error { return s.echo.Shutdown(ctx) }

func (s *Server) callStarted(c echo.Context) error {
	var req callStartedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid request body"})
	}
	if req.CallID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "call_id is required"})
	}
	if _, err := s.manager.Start(req.CallID, req.From); err != nil {
		if errors.Is(err, session.ErrAlreadyExists) {
			return c.JSON(http.StatusConflict, echo.Map{"status": "error", "message": "call already live"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "failed to start session"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":       "success",
		"call_id":      req.CallID,
		"caller_phone": req.From,
	})
}

func (s *Server) callEnded(c echo.Context) error {
	var req callEndedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid request body"})
	}
	if err := s.manager.Stop(req.CallID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "call not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "failed to stop session"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

func (s *Server) status(c echo.Context) error {
	count, infos := s.manager.Status()
	return c.JSON(http.StatusOK, echo.Map{
		"active_sessions": count,
		"sessions":        infos,
	})
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
