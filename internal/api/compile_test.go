package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openfga-dslc/openfga-dslc/internal/store"
)

func newTestHandler(t *testing.T) http.Handler {
	return NewHandler(Config{
		Store:  store.NewMemoryStore(),
		Logger: zap.NewNop(),
	})
}

func TestHandleCompile_Success(t *testing.T) {
	handler := newTestHandler(t)

	body, _ := json.Marshal(compileRequest{Source: "type user"})
	req := httptest.NewRequest(http.MethodPost, "/v1/compile", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp compileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Model["type_definitions"])
}

func TestHandleCompile_SyntaxError(t *testing.T) {
	handler := newTestHandler(t)

	body, _ := json.Marshal(compileRequest{Source: "type"})
	req := httptest.NewRequest(http.MethodPost, "/v1/compile", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleCompile_EmptyBody(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/compile", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateAndGetModel(t *testing.T) {
	handler := newTestHandler(t)

	createBody, _ := json.Marshal(createModelRequest{Name: "doc", Source: "type user"})
	createReq := httptest.NewRequest(http.MethodPost, "/v1/models", bytes.NewReader(createBody))
	createRec := httptest.NewRecorder()
	handler.ServeHTTP(createRec, createReq)

	require.Equal(t, http.StatusCreated, createRec.Code)

	var created modelResponse
	require.NoError(t, json.Unmarshal(createRec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	getReq := httptest.NewRequest(http.MethodGet, "/v1/models/"+created.ID, nil)
	getRec := httptest.NewRecorder()
	handler.ServeHTTP(getRec, getReq)

	require.Equal(t, http.StatusOK, getRec.Code)

	var got modelResponse
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &got))
	assert.Equal(t, "doc", got.Name)
}

func TestHandleListModels(t *testing.T) {
	handler := newTestHandler(t)

	for i := 0; i < 3; i++ {
		body, _ := json.Marshal(createModelRequest{Name: "doc", Source: "type user"})
		req := httptest.NewRequest(http.MethodPost, "/v1/models", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/models?page[limit]=2", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.api+json", rec.Header().Get("Content-Type"))

	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)
	assert.Equal(t, float64(3), body.Meta["total"])
}

func TestHandleGetModel_NotFound(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/models/missing", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
