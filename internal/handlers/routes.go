package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/identity"
)

// ownerOnly marks an operation as requiring an owner bearer token.
var ownerOnly = []map[string][]string{{identity.SecurityScheme: {}}}

// RegisterRoutes registers the owner-scoped URL shortener routes.
func RegisterRoutes(api huma.API, h *MappingHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-mapping",
		Method:        http.MethodPost,
		Path:          "/urls",
		Summary:       "Create short URL",
		Description:   "Creates a short URL for the caller, using the desired code when given.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
		Security:      ownerOnly,
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "list-mappings",
		Method:      http.MethodGet,
		Path:        "/urls",
		Summary:     "List short URLs",
		Description: "Lists the caller's short URLs in creation order.",
		Tags:        []string{"URLs"},
		Security:    ownerOnly,
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "get-mapping",
		Method:      http.MethodGet,
		Path:        "/urls/{code}",
		Summary:     "Look up short URL",
		Tags:        []string{"URLs"},
		Security:    ownerOnly,
	}, h.Lookup)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-mapping",
		Method:        http.MethodDelete,
		Path:          "/urls/{code}",
		Summary:       "Delete short URL",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusNoContent,
		Security:      ownerOnly,
	}, h.Delete)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/r/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the caller's original URL for the short code.",
		Tags:        []string{"URLs"},
		Security:    ownerOnly,
	}, h.Redirect)
}
