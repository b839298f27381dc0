package referral

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carelink/carelink/internal/platform/auth"
	"github.com/carelink/carelink/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("specialist"))
	g.GET("/referrals", h.List)
	g.GET("/referrals/:id", h.Get)
	g.POST("/referrals/:id/accept", h.Accept)
	g.POST("/referrals/:id/decline", h.Decline)
	g.POST("/referrals/:id/complete", h.Complete)
}

func (h *Handler) List(c echo.Context) error {
	specialistID := c.QueryParam("specialist_id")
	if specialistID == "" {
		specialistID = auth.UserIDFromContext(c.Request().Context())
	}
	if specialistID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "specialist_id is required")
	}
	items, err := h.svc.ListBySpecialist(c.Request().Context(), specialistID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	params := pagination.FromContext(c)
	start, end := params.Slice(len(items))
	return c.JSON(http.StatusOK, pagination.NewResponse(items[start:end], len(items), params.Limit, params.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	view, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "referral not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) Accept(c echo.Context) error {
	return h.transition(c, h.svc.Accept)
}

func (h *Handler) Decline(c echo.Context) error {
	return h.transition(c, h.svc.Decline)
}

func (h *Handler) Complete(c echo.Context) error {
	return h.transition(c, h.svc.Complete)
}

func (h *Handler) transition(c echo.Context, op func(ctx context.Context, id string) error) error {
	err := op(c.Request().Context(), c.Param("id"))
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "referral not found")
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		// Write failures are surfaced; the client may retry.
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
