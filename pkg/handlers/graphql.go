package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	gqlgen "github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"

	"github.com/holocron-dev/holocron/pkg/apperrors"
	"github.com/holocron-dev/holocron/pkg/graphql"
)

// maxGraphQLBody bounds the size of a POST /graphql request body.
const maxGraphQLBody = 1 << 20

// GraphQLHandler serves the GraphQL endpoint and its schema.
type GraphQLHandler struct {
	server *handler.Server
	logger *zap.Logger
}

// NewGraphQLHandler serves schema over GET and POST with introspection on.
// GET only accepts queries.
func NewGraphQLHandler(schema gqlgen.ExecutableSchema, logger *zap.Logger) *GraphQLHandler {
	srv := handler.New(schema)
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})
	srv.Use(extension.Introspection{})

	h := &GraphQLHandler{server: srv, logger: logger}
	srv.SetErrorPresenter(h.presentError)
	srv.SetRecoverFunc(h.recoverPanic)
	return h
}

// RegisterRoutes registers /graphql at the root and under prefix.
func (h *GraphQLHandler) RegisterRoutes(mux *http.ServeMux, prefix string, scope ScopeMiddleware) {
	prefixes := []string{""}
	if p := strings.TrimRight(prefix, "/"); p != "" {
		prefixes = append(prefixes, p)
	}
	for _, p := range prefixes {
		for _, path := range []string{p + "/graphql", p + "/graphql/{$}"} {
			mux.HandleFunc("POST "+path, scope(h.Serve))
			mux.HandleFunc("GET "+path, scope(h.Serve))
		}
		mux.HandleFunc("GET "+p+"/graphql/schema", h.Schema)
	}
}

// Serve hands the request to the GraphQL server. A POST without a
// Content-Type is read as JSON.
func (h *GraphQLHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		if r.Header.Get("Content-Type") == "" {
			r.Header.Set("Content-Type", "application/json")
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxGraphQLBody)
	}
	h.server.ServeHTTP(w, r)
}

// Schema handles GET /graphql/schema and returns the SDL.
func (h *GraphQLHandler) Schema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.WriteString(w, graphql.SDL()); err != nil {
		h.logger.Error("Failed to write schema", zap.Error(err))
	}
}

// presentError tags caller mistakes with BAD_USER_INPUT and everything else
// with INTERNAL_ERROR.
func (h *GraphQLHandler) presentError(ctx context.Context, err error) *gqlerror.Error {
	gqlErr := gqlgen.DefaultErrorPresenter(ctx, err)
	if gqlErr.Extensions == nil {
		gqlErr.Extensions = map[string]any{}
	}

	var parseErr *gqlerror.Error
	switch {
	case errors.Is(err, graphql.ErrInvalidID), errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, graphql.ErrInvalidPage):
		gqlErr.Extensions["code"] = "BAD_USER_INPUT"
	case errors.As(err, &parseErr) && parseErr.Unwrap() == nil:
		// Parse and validation errors already carry their own code.
	default:
		gqlErr.Extensions["code"] = "INTERNAL_ERROR"
		h.logger.Error("GraphQL resolver failed",
			zap.String("path", gqlErr.Path.String()),
			zap.Error(err))
	}
	return gqlErr
}

func (h *GraphQLHandler) recoverPanic(ctx context.Context, v any) error {
	h.logger.Error("GraphQL resolver panicked",
		zap.Any("panic", v),
		zap.String("path", gqlgen.GetPath(ctx).String()))
	return gqlerror.Errorf("internal system error")
}
