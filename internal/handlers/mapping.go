package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/events"
	"github.com/serroba/url-shortener/internal/identity"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// MappingHandler exposes the caller's mappings over HTTP.
type MappingHandler struct {
	service *shortener.Service
	events  events.Emitter
	logger  *zap.Logger
}

// NewMappingHandler creates a new mapping handler.
func NewMappingHandler(service *shortener.Service, emitter events.Emitter, logger *zap.Logger) *MappingHandler {
	return &MappingHandler{
		service: service,
		events:  emitter,
		logger:  logger,
	}
}

func (h *MappingHandler) Create(ctx context.Context, req *CreateMappingRequest) (*CreateMappingResponse, error) {
	owner := identity.OwnerFromContext(ctx)
	custom := req.Body.Code != ""

	m, err := h.service.Create(ctx, owner, req.Body.URL, shortener.Code(req.Body.Code))
	if err != nil {
		return nil, h.httpError("create mapping", err)
	}

	shortURL := h.service.ShortURL(m.Code)
	h.events.MappingCreated(ctx, m, shortURL, custom)

	resp := &CreateMappingResponse{Body: h.body(m)}
	resp.Headers.Location = shortURL

	return resp, nil
}

func (h *MappingHandler) List(ctx context.Context, _ *struct{}) (*ListMappingsResponse, error) {
	mappings, err := h.service.List(ctx, identity.OwnerFromContext(ctx))
	if err != nil {
		return nil, h.httpError("list mappings", err)
	}

	resp := &ListMappingsResponse{}
	resp.Body.Items = make([]MappingBody, 0, len(mappings))

	for _, m := range mappings {
		resp.Body.Items = append(resp.Body.Items, h.body(m))
	}

	return resp, nil
}

func (h *MappingHandler) Lookup(ctx context.Context, req *CodeRequest) (*MappingResponse, error) {
	m, err := h.service.Lookup(ctx, identity.OwnerFromContext(ctx), req.Code)
	if err != nil {
		return nil, h.httpError("lookup mapping", err)
	}

	return &MappingResponse{Body: h.body(m)}, nil
}

func (h *MappingHandler) Delete(ctx context.Context, req *CodeRequest) (*struct{}, error) {
	owner := identity.OwnerFromContext(ctx)

	if err := h.service.Delete(ctx, owner, req.Code); err != nil {
		return nil, h.httpError("delete mapping", err)
	}

	h.events.MappingDeleted(ctx, owner, h.service.ParseCode(req.Code))

	return &struct{}{}, nil
}

func (h *MappingHandler) Redirect(ctx context.Context, req *CodeRequest) (*RedirectResponse, error) {
	longURL, err := h.service.Resolve(ctx, identity.OwnerFromContext(ctx), req.Code)
	if err != nil {
		return nil, h.httpError("resolve mapping", err)
	}

	resp := &RedirectResponse{Status: http.StatusFound}
	resp.Headers.Location = longURL

	return resp, nil
}

func (h *MappingHandler) body(m *shortener.Mapping) MappingBody {
	return MappingBody{
		ID:        m.ID.String(),
		Code:      string(m.Code),
		ShortURL:  h.service.ShortURL(m.Code),
		LongURL:   m.LongURL,
		CreatedAt: m.CreatedAt,
	}
}

// httpError maps service errors to HTTP statuses. Storage details stay in the log.
func (h *MappingHandler) httpError(op string, err error) error {
	switch {
	case errors.Is(err, shortener.ErrInvalidInput):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, shortener.ErrUnauthorized):
		return huma.Error401Unauthorized("owner identity required")
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound("short url not found")
	case errors.Is(err, shortener.ErrCodeAlreadyTaken):
		return huma.Error409Conflict("short code already taken")
	case errors.Is(err, shortener.ErrCodeSpaceExhausted):
		h.logger.Warn("code space exhausted", zap.String("op", op))

		return huma.Error503ServiceUnavailable("no free short code available, retry later")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.Error503ServiceUnavailable("request cancelled")
	default:
		h.logger.Error("request failed", zap.String("op", op), zap.Error(err))

		return huma.Error500InternalServerError("failed to " + op)
	}
}
