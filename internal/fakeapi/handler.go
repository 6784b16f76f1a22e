// Package fakeapi serves the three upstream endpoints over fasthttp for local
// development.
package fakeapi

import (
	"context"
	"errors"
	"net/url"
	"strings"

	domainErrors "github.com/cassiomorais/txviewer/internal/domain/errors"
	"github.com/cassiomorais/txviewer/internal/gateway"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

type errorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Handler routes upstream requests to a gateway.API, usually a gateway.Fixture.
type Handler struct {
	api    gateway.API
	base   context.Context
	logger zerolog.Logger
}

// NewHandler creates a Handler. base bounds every upstream call, so cancelling
// it aborts simulated latency on shutdown.
func NewHandler(base context.Context, api gateway.API, logger zerolog.Logger) *Handler {
	return &Handler{api: api, base: base, logger: logger}
}

func (h *Handler) Serve(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := string(ctx.Path())
	// The employee id is matched on the raw path: Path() decodes %2F and
	// resolves dot segments.
	raw := string(ctx.URI().PathOriginal())
	switch {
	case strings.HasPrefix(raw, "/employees/") && strings.HasSuffix(raw, "/transactions"):
		segment := strings.TrimSuffix(strings.TrimPrefix(raw, "/employees/"), "/transactions")
		id, err := url.PathUnescape(segment)
		if err != nil || id == "" || strings.Contains(segment, "/") {
			writeError(ctx, fasthttp.StatusNotFound, "not found")
			return
		}
		h.employeeTransactions(ctx, id)
	case path == "/employees":
		h.employees(ctx)
	case path == "/transactions":
		h.transactions(ctx)
	default:
		writeError(ctx, fasthttp.StatusNotFound, "not found")
	}

	h.logger.Debug().
		Str("path", path).
		Int("status", ctx.Response.StatusCode()).
		Msg("Served upstream request")
}

func (h *Handler) employees(ctx *fasthttp.RequestCtx) {
	roster, err := h.api.Employees(h.base)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, gateway.EmployeesToJSON(roster))
}

func (h *Handler) transactions(ctx *fasthttp.RequestCtx) {
	var token *string
	if args := ctx.QueryArgs(); args.Has("page_token") {
		t := string(args.Peek("page_token"))
		token = &t
	}

	page, err := h.api.Transactions(h.base, token)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, gateway.PageToJSON(page))
}

func (h *Handler) employeeTransactions(ctx *fasthttp.RequestCtx, id string) {
	txns, err := h.api.TransactionsByEmployee(h.base, id)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, gateway.TransactionsToJSON(txns))
}

func (h *Handler) fail(ctx *fasthttp.RequestCtx, err error) {
	status := fasthttp.StatusInternalServerError

	var upstreamErr *domainErrors.UpstreamError
	var validationErr *domainErrors.ValidationError
	switch {
	case errors.As(err, &validationErr), errors.Is(err, domainErrors.ErrInvalidSelection):
		status = fasthttp.StatusBadRequest
	case errors.Is(err, domainErrors.ErrEmployeeNotFound):
		status = fasthttp.StatusNotFound
	case errors.As(err, &upstreamErr) && upstreamErr.StatusCode != 0:
		status = upstreamErr.StatusCode
	}

	if status >= fasthttp.StatusInternalServerError {
		h.logger.Warn().Err(err).Int("status", status).Msg("Upstream request failed")
	}
	writeError(ctx, status, err.Error())
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, "encode response: "+err.Error())
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	body, _ := json.Marshal(errorBody{Status: status, Message: message})
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
