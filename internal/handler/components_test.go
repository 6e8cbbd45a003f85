package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"qualis/internal/domain"
	"qualis/internal/domain/models"
	"qualis/internal/domain/services"
	"qualis/internal/httputil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubComponentService returns a canned result or error and records the call.
type stubComponentService struct {
	result   *models.BulkUpdateKeyResult
	err      error
	gotUser  string
	gotReq   *services.BulkUpdateKeyRequest
	numCalls int
}

func (s *stubComponentService) BulkUpdateKey(_ context.Context, userUUID string, req *services.BulkUpdateKeyRequest) (*models.BulkUpdateKeyResult, error) {
	s.numCalls++
	s.gotUser = userUUID
	s.gotReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func postBulkUpdateKey(h *ComponentHandler, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/components/bulk_update_key", strings.NewReader(body))
	req = httputil.WithUserID(req, userID)
	rec := httptest.NewRecorder()
	h.BulkUpdateKey(rec, req)
	return rec
}

func TestBulkUpdateKeyHandlerSuccess(t *testing.T) {
	stub := &stubComponentService{
		result: &models.BulkUpdateKeyResult{Keys: []models.KeyChange{
			{Key: "my_project", NewKey: "my_new_project"},
			{Key: "my_project:module_a", NewKey: "my_new_project:module_a"},
		}},
	}
	h := NewComponentHandler(stub, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := postBulkUpdateKey(h, "user-1", `{"key":"my_project","from":"my_","to":"my_new_","dryRun":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	assert.Equal(t, "user-1", stub.gotUser)
	assert.Equal(t, "my_project", stub.gotReq.Key)
	assert.Equal(t, "my_", stub.gotReq.From)
	assert.Equal(t, "my_new_", stub.gotReq.To)
	assert.True(t, stub.gotReq.DryRun)

	var body models.BulkUpdateKeyResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Keys, 2)
	assert.Equal(t, "my_new_project", body.Keys[0].NewKey)
}

func TestBulkUpdateKeyHandlerInvalidBody(t *testing.T) {
	stub := &stubComponentService{}
	h := NewComponentHandler(stub, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := postBulkUpdateKey(h, "user-1", `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, stub.numCalls)
}

func TestBulkUpdateKeyHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "validation", err: fmt.Errorf("%w: 'from' is required", domain.ErrValidation), wantStatus: http.StatusBadRequest},
		{name: "not found", err: fmt.Errorf("component key 'nope': %w", domain.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "forbidden", err: fmt.Errorf("insufficient privileges: %w", domain.ErrForbidden), wantStatus: http.StatusForbidden},
		{name: "unexpected", err: fmt.Errorf("connection reset"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewComponentHandler(&stubComponentService{err: tt.err}, slog.New(slog.NewTextHandler(io.Discard, nil)))

			rec := postBulkUpdateKey(h, "user-1", `{"key":"k","from":"a","to":"b"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestBulkUpdateKeyHandlerDuplicateKeys(t *testing.T) {
	stub := &stubComponentService{
		err: &domain.DuplicateKeysError{Keys: []string{"my_new_project", "my_new_project:module_a"}},
	}
	h := NewComponentHandler(stub, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := postBulkUpdateKey(h, "user-1", `{"key":"my_project","from":"my_","to":"my_new_"}`)

	require.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(http.StatusConflict), body["status"])
	assert.Equal(t, []interface{}{"my_new_project", "my_new_project:module_a"}, body["duplicatedKeys"])
}
