package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"memocal/internal/application/dto"
	"memocal/internal/application/service"
	"memocal/internal/infrastructure/maps"
	"memocal/internal/pkg/dateutil"
	appErrors "memocal/internal/pkg/errors"
	"memocal/internal/pkg/logger"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// MapLauncher resolves map links for a location.
type MapLauncher interface {
	Open(ctx context.Context, location string) (*maps.Target, error)
}

// MemoHandler exposes the memo controller over HTTP.
type MemoHandler struct {
	controller service.MemoController
	reminders  service.ReminderScheduler
	maps       MapLauncher
	log        logger.Logger
}

// NewMemoHandler creates a new MemoHandler.
func NewMemoHandler(
	controller service.MemoController,
	reminders service.ReminderScheduler,
	launcher MapLauncher,
	log logger.Logger,
) *MemoHandler {
	return &MemoHandler{
		controller: controller,
		reminders:  reminders,
		maps:       launcher,
		log:        log,
	}
}

// ListMemos returns the memos of the viewed date.
func (h *MemoHandler) ListMemos(c echo.Context) error {
	memos, err := h.controller.ListMemos(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ToMemoResponseList(memos, h.controller.Location()))
}

// StreamMemos pushes the viewed date's list as server-sent events until the client leaves.
func (h *MemoHandler) StreamMemos(c echo.Context) error {
	ctx := c.Request().Context()
	updates, err := h.controller.ObserveMemos(ctx)
	if err != nil {
		return h.respondError(c, err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	for {
		select {
		case <-ctx.Done():
			return nil
		case memos, ok := <-updates:
			if !ok {
				return nil
			}
			data, err := json.Marshal(dto.ToMemoResponseList(memos, h.controller.Location()))
			if err != nil {
				h.log.Error("Failed to encode memo stream event", err)
				return nil
			}
			if _, err := fmt.Fprintf(res, "event: memos\ndata: %s\n\n", data); err != nil {
				h.log.Debug(fmt.Sprintf("Memo stream client gone: %v", err))
				return nil
			}
			res.Flush()
		}
	}
}

// AddMemo creates a memo for the viewed date.
func (h *MemoHandler) AddMemo(c echo.Context) error {
	var req dto.AddMemoRequest
	if err := c.Bind(&req); err != nil {
		h.log.Warn(fmt.Sprintf("Failed to bind add memo request: %v", err))
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: appErrors.ErrInvalidRequest.Error()})
	}

	result, err := h.controller.AddMemo(c.Request().Context(), req)
	if err != nil {
		return h.respondError(c, err)
	}
	if result.Warning != nil {
		h.log.Warn(fmt.Sprintf("Memo %d stored without reminder: %v", result.Memo.ID, result.Warning))
	}
	return c.JSON(http.StatusCreated, dto.ToAddMemoResponse(result, h.controller.Location()))
}

// GetMemo returns one memo.
func (h *MemoHandler) GetMemo(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	memo, err := h.controller.GetMemo(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ToMemoResponse(memo, h.controller.Location()))
}

// DeleteMemo removes a memo. Deleting a missing memo succeeds.
func (h *MemoHandler) DeleteMemo(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	memo, err := h.controller.GetMemo(ctx, id)
	if errors.Is(err, appErrors.ErrMemoNotFound) {
		return c.NoContent(http.StatusNoContent)
	}
	if err != nil {
		return h.respondError(c, err)
	}
	if err := h.controller.DeleteMemo(ctx, memo); err != nil {
		return h.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// OpenMap redirects to a map search for the memo's location.
func (h *MemoHandler) OpenMap(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	memo, err := h.controller.GetMemo(ctx, id)
	if err != nil {
		return h.respondError(c, err)
	}
	if !memo.HasLocation() {
		return h.respondError(c, appErrors.ErrNoMapHandler)
	}
	target, err := h.maps.Open(ctx, *memo.Location)
	if err != nil {
		return h.respondError(c, err)
	}
	if c.QueryParam("format") == "json" {
		return c.JSON(http.StatusOK, target)
	}
	return c.Redirect(http.StatusFound, target.URL)
}

// GetViewedDate returns the viewed date and its heading.
func (h *MemoHandler) GetViewedDate(c echo.Context) error {
	return c.JSON(http.StatusOK, h.viewedDateResponse())
}

// SetViewedDate changes the viewed date.
func (h *MemoHandler) SetViewedDate(c echo.Context) error {
	var req dto.SetViewedDateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: appErrors.ErrInvalidRequest.Error()})
	}
	if err := req.Validate(); err != nil {
		return h.respondError(c, err)
	}
	date, err := dateutil.ParseDate(req.Date, h.controller.Location())
	if err != nil {
		return h.respondError(c, appErrors.ValidationError{{Field: "date", Err: appErrors.ErrInvalidDate}})
	}
	h.controller.SetViewedDate(date)
	return c.JSON(http.StatusOK, h.viewedDateResponse())
}

func (h *MemoHandler) viewedDateResponse() dto.ViewedDateResponse {
	date := h.controller.ViewedDate()
	return dto.ViewedDateResponse{
		Date:    date.Format("2006-01-02"),
		Heading: dateutil.Format(date),
	}
}

// GetPermission reports whether reminders can be shown.
func (h *MemoHandler) GetPermission(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.PermissionResponse{Granted: h.reminders.HasPermission(c.Request().Context())})
}

// RequestPermission asks the notifier for permission.
func (h *MemoHandler) RequestPermission(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.reminders.RequestPermission(ctx); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.PermissionResponse{Granted: h.reminders.HasPermission(ctx)})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, appErrors.ValidationError{{Field: "id", Err: appErrors.ErrInvalidID}}
	}
	return uint(id), nil
}

// respondError maps application errors to HTTP status codes.
func (h *MemoHandler) respondError(c echo.Context, err error) error {
	var verr appErrors.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: verr.Error(), Fields: verr.Fields()})
	case errors.Is(err, appErrors.ErrMemoNotFound), errors.Is(err, appErrors.ErrNoMapHandler):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: rootMessage(err)})
	case errors.Is(err, appErrors.ErrPermissionDenied):
		return c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: appErrors.ErrPermissionDenied.Error()})
	case errors.Is(err, appErrors.ErrControllerClosed):
		return c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: appErrors.ErrControllerClosed.Error()})
	case errors.Is(err, context.Canceled):
		h.log.Debug("Request cancelled by client")
		return nil
	default:
		h.log.Error(fmt.Sprintf("Request %s %s failed", c.Request().Method, c.Path()), err)
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: appErrors.ErrInternalServer.Error()})
	}
}

func rootMessage(err error) string {
	if errors.Is(err, appErrors.ErrNoMapHandler) {
		return appErrors.ErrNoMapHandler.Error()
	}
	return appErrors.ErrMemoNotFound.Error()
}
