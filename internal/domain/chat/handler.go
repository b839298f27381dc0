package chat

import (
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
	api.GET("/chats", h.ListConversations)
	api.GET("/chats/:id/messages", h.ListMessages)
	api.POST("/chats/:id/messages", h.SendMessage)
}

func (h *Handler) ListConversations(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no authenticated user")
	}

	conversations, err := h.svc.ListConversations(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	params := pagination.FromContext(c)
	start, end := params.Slice(len(conversations))
	return c.JSON(http.StatusOK, pagination.NewResponse(conversations[start:end], len(conversations), params.Limit, params.Offset))
}

func (h *Handler) ListMessages(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	messages, err := h.svc.ListMessages(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return chatError(err)
	}

	params := pagination.FromContext(c)
	start, end := params.Slice(len(messages))
	return c.JSON(http.StatusOK, pagination.NewResponse(messages[start:end], len(messages), params.Limit, params.Offset))
}

func (h *Handler) SendMessage(c echo.Context) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	msg, err := h.svc.SendMessage(c.Request().Context(), c.Param("id"), userID, req.Text)
	if errors.Is(err, ErrEmptyMessage) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return chatError(err)
	}
	return c.JSON(http.StatusCreated, msg)
}

func chatError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	case errors.Is(err, ErrNotParticipant):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
}
