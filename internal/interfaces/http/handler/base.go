package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/internal/infrastructure/logger"
	"github.com/cultivo/backend/internal/interfaces/http/dto"
	"github.com/cultivo/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Query parameters consumed by ParseFilter itself
const (
	queryPage     = "page"
	queryLimit    = "limit"
	querySearch   = "q"
	queryOrderBy  = "order_by"
	queryOrderDir = "order_dir"
	queryDateFrom = "date_from"
	queryDateTo   = "date_to"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessMessage sends a success response with a message
func (h *BaseHandler) SuccessMessage(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, dto.NewMessageResponse(data, message))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the status mapped from code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// HandleDomainError renders domain errors with their code and message.
// Anything else is logged and rendered as a generic 500.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, domainErr.Code, domainErr.Message)
		return
	}

	logger.FromGin(c).Error("Unhandled error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	_ = c.Error(err)
	h.Error(c, dto.ErrCodeInternal, "Internal server error")
}

// BindJSON binds the body and renders validation failures. Returns false
// when the response has been written.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, middleware.FormatValidationErrors(err, middleware.GetRequestID(c)))
		return false
	}
	return true
}

// BindOptionalJSON binds req when the request carries a body. An empty body,
// including an empty chunked one, leaves req at its zero value.
func (h *BaseHandler) BindOptionalJSON(c *gin.Context, req any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(req); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		c.JSON(http.StatusBadRequest, middleware.FormatValidationErrors(err, middleware.GetRequestID(c)))
		return false
	}
	return true
}

// ParseID parses a UUID path parameter
func (h *BaseHandler) ParseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Invalid ID format", middleware.GetRequestID(c),
			[]dto.ValidationDetail{{Field: name, Message: "Invalid UUID format"}}))
		return uuid.Nil, false
	}
	return id, true
}

// ParseFilter reads paging, search, ordering and the date range from the
// query string, plus the given equality filter keys. "true" and "false"
// filter values become booleans. Ordering is left empty unless requested so
// each repository applies its own default.
func (h *BaseHandler) ParseFilter(c *gin.Context, keys ...string) (shared.Filter, bool) {
	filter := shared.Filter{Page: 1, PageSize: shared.DefaultPageSize, Filters: map[string]interface{}{}}
	var details []dto.ValidationDetail

	if raw := c.Query(queryPage); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			details = append(details, dto.ValidationDetail{Field: queryPage, Message: "Must be a positive integer"})
		}
		filter.Page = page
	}
	if raw := c.Query(queryLimit); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			details = append(details, dto.ValidationDetail{Field: queryLimit, Message: "Must be a positive integer"})
		}
		filter.PageSize = limit
	}

	filter.Search = strings.TrimSpace(c.Query(querySearch))
	filter.OrderBy = c.Query(queryOrderBy)
	filter.OrderDir = c.Query(queryOrderDir)

	from, err := parseDate(c.Query(queryDateFrom), false)
	if err != nil {
		details = append(details, dto.ValidationDetail{Field: queryDateFrom, Message: "Must be YYYY-MM-DD or RFC 3339"})
	}
	filter.DateFrom = from
	to, err := parseDate(c.Query(queryDateTo), true)
	if err != nil {
		details = append(details, dto.ValidationDetail{Field: queryDateTo, Message: "Must be YYYY-MM-DD or RFC 3339"})
	}
	filter.DateTo = to

	for _, key := range keys {
		raw, ok := c.GetQuery(key)
		if !ok || raw == "" {
			continue
		}
		switch raw {
		case "true":
			filter.Filters[key] = true
		case "false":
			filter.Filters[key] = false
		default:
			filter.Filters[key] = raw
		}
	}

	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Invalid query parameters", middleware.GetRequestID(c), details))
		return filter, false
	}
	filter.Normalize()
	return filter, true
}

// parseDate accepts a calendar date or an RFC 3339 timestamp. A bare date
// used as an upper bound covers the whole day.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// actorID returns the authenticated profile id
func actorID(c *gin.Context) uuid.UUID {
	return middleware.GetActorID(c)
}

// byID runs fn with the :id path parameter and renders its result
func byID[T any](h *BaseHandler, c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (T, error)) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	out, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, out)
}

// withBody binds R, then runs fn with the :id path parameter
func withBody[R, T any](h *BaseHandler, c *gin.Context, fn func(ctx context.Context, id uuid.UUID, req R) (T, error)) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req R
	if !h.BindJSON(c, &req) {
		return
	}
	out, err := fn(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, out)
}

// create binds R and renders the created resource with 201
func create[R, T any](h *BaseHandler, c *gin.Context, fn func(ctx context.Context, actor uuid.UUID, req R) (T, error)) {
	var req R
	if !h.BindJSON(c, &req) {
		return
	}
	out, err := fn(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, out)
}

// list parses the filter with keys and renders the page
func list[T any](h *BaseHandler, c *gin.Context, fn func(ctx context.Context, filter shared.Filter) (T, error), keys ...string) {
	filter, ok := h.ParseFilter(c, keys...)
	if !ok {
		return
	}
	out, err := fn(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, out)
}

// asActor binds the caller to a (actor, id) transition
func asActor[T any](c *gin.Context, fn func(ctx context.Context, actor, id uuid.UUID) (T, error)) func(context.Context, uuid.UUID) (T, error) {
	actor := actorID(c)
	return func(ctx context.Context, id uuid.UUID) (T, error) {
		return fn(ctx, actor, id)
	}
}
