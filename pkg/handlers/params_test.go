package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/holocron-dev/holocron/pkg/config"
	"github.com/holocron-dev/holocron/pkg/models"
)

func TestParseEntityID(t *testing.T) {
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/characters/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	w := httptest.NewRecorder()

	got, ok := ParseEntityID(w, req, "Character", zap.NewNop())
	assert.True(t, ok)
	assert.Equal(t, id, got)

	req = httptest.NewRequest(http.MethodGet, "/characters/luke", nil)
	req.SetPathValue("id", "luke")
	w = httptest.NewRecorder()

	_, ok = ParseEntityID(w, req, "Character", zap.NewNop())
	assert.False(t, ok)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Character not found"}`, w.Body.String())
}

func TestParsePageRequest(t *testing.T) {
	cfg := config.PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100}

	tests := []struct {
		name   string
		query  string
		want   models.PageRequest
		wantOK bool
	}{
		{"defaults", "", models.PageRequest{Page: 1, PageSize: 20}, true},
		{"explicit", "?page=3&page_size=10", models.PageRequest{Page: 3, PageSize: 10}, true},
		{"size capped", "?page_size=500", models.PageRequest{Page: 1, PageSize: 100}, true},
		{"page clamped", "?page=0&page_size=-4", models.PageRequest{Page: 1, PageSize: 20}, true},
		{"bad page", "?page=two", models.PageRequest{}, false},
		{"bad size", "?page_size=lots", models.PageRequest{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/characters"+tt.query, nil)
			w := httptest.NewRecorder()

			got, ok := ParsePageRequest(w, req, cfg, zap.NewNop())
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}
