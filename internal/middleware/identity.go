package middleware

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/identity"
	"go.uber.org/zap"
)

// Identity returns a Huma middleware that authenticates the owner of requests
// to operations secured with identity.SecurityScheme. The verified owner is
// stored in the request context; other operations pass through untouched.
func Identity(api huma.API, verifier identity.Verifier, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !requiresOwner(ctx.Operation()) {
			next(ctx)

			return
		}

		token, ok := bearerToken(ctx.Header("Authorization"))
		if !ok {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing bearer token")

			return
		}

		owner, err := verifier.Verify(token)
		if err != nil {
			logger.Debug("rejected bearer token",
				zap.String("path", operationPath(ctx)),
				zap.Error(err),
			)
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid bearer token")

			return
		}

		next(huma.WithContext(ctx, identity.WithOwner(ctx.Context(), owner)))
	}
}

func requiresOwner(op *huma.Operation) bool {
	if op == nil {
		return false
	}

	for _, requirement := range op.Security {
		if _, ok := requirement[identity.SecurityScheme]; ok {
			return true
		}
	}

	return false
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

// operationPath returns the route template of the matched operation, if any.
func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}
