package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/holocron-dev/holocron/pkg/config"
	"github.com/holocron-dev/holocron/pkg/models"
)

// ParseEntityID extracts the {id} path value. An id that is not a UUID cannot
// name a stored entity, so it is answered with the entity's 404 and false.
func ParseEntityID(w http.ResponseWriter, r *http.Request, entity string, logger *zap.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := NotFoundResponse(w, entity); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}

// ParsePageRequest reads page and page_size from the query string. Missing
// values take the configured defaults; page_size is capped at the maximum.
// Non-numeric values write a 400 and return false.
func ParsePageRequest(w http.ResponseWriter, r *http.Request, cfg config.PaginationConfig, logger *zap.Logger) (models.PageRequest, bool) {
	page, err := queryInt(r, "page", 1)
	if err == nil {
		var size int
		size, err = queryInt(r, "page_size", cfg.DefaultPageSize)
		if err == nil {
			return models.NewPageRequest(page, size, cfg.DefaultPageSize, cfg.MaxPageSize), true
		}
	}

	if err := ErrorResponse(w, http.StatusBadRequest, "invalid_pagination", err.Error()); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
	return models.PageRequest{}, false
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return n, nil
}
