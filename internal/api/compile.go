package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/openfga-dslc/openfga-dslc/internal/compiler/lexer"
	"github.com/openfga-dslc/openfga-dslc/internal/compiler/parser"
	"github.com/openfga-dslc/openfga-dslc/internal/compiler/serializer"
	"github.com/openfga-dslc/openfga-dslc/internal/store"
	"github.com/openfga-dslc/openfga-dslc/internal/web/router"
	"github.com/openfga-dslc/openfga-dslc/pkg/web/response"
)

type compileRequest struct {
	Source string `json:"source"`
}

type compileResponse struct {
	Model map[string]interface{} `json:"model"`
}

// compileSource runs the lex/parse/serialize pipeline over src.
func compileSource(src string) (map[string]interface{}, error) {
	tokens := lexer.New(src).ScanTokens()
	doc, err := parser.New(tokens).Parse()
	if err != nil {
		return nil, err
	}
	return serializer.ToMap(doc)
}

// handleCompile compiles DSL source and returns the resulting JSON without
// persisting anything.
func (h *Handler) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		router.BadRequest(w, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Source) == "" {
		router.BadRequest(w, "source must not be empty")
		return
	}

	model, err := compileSource(req.Source)
	if err != nil {
		writeCompileError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, compileResponse{Model: model})
}

type createModelRequest struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

type modelResponse struct {
	ID    string                 `json:"id"`
	Name  string                 `json:"name"`
	Model map[string]interface{} `json:"model"`
}

// handleCreateModel compiles DSL source and persists it through the store.
func (h *Handler) handleCreateModel(w http.ResponseWriter, r *http.Request) {
	var req createModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		router.BadRequest(w, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		router.BadRequest(w, "name must not be empty")
		return
	}

	model, err := compileSource(req.Source)
	if err != nil {
		writeCompileError(w, err)
		return
	}

	modelJSON, err := json.Marshal(model)
	if err != nil {
		router.InternalServerError(w, err)
		return
	}

	id, err := h.store.Put(r.Context(), &store.Model{
		Name:   req.Name,
		Source: req.Source,
		JSON:   modelJSON,
	})
	if err != nil {
		router.InternalServerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, modelResponse{ID: id, Name: req.Name, Model: model})
}

// handleGetModel returns a previously compiled model by ID.
func (h *Handler) handleGetModel(w http.ResponseWriter, r *http.Request) {
	id := router.GetPathParam(r, "id")

	m, err := h.store.Get(r.Context(), id)
	if err != nil {
		if err == store.ErrNotFound {
			router.NotFound(w, "model not found")
			return
		}
		router.InternalServerError(w, err)
		return
	}

	var model map[string]interface{}
	if err := json.Unmarshal(m.JSON, &model); err != nil {
		router.InternalServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, modelResponse{ID: m.ID, Name: m.Name, Model: model})
}

func writeCompileError(w http.ResponseWriter, err error) {
	if perr, ok := err.(*parser.ParserError); ok {
		router.UnprocessableEntity(w, perr.Error(), map[string]interface{}{
			"line":   perr.Token.Line,
			"column": perr.Token.Column,
		})
		return
	}
	router.UnprocessableEntity(w, err.Error(), nil)
}

// modelResource is the JSON:API representation of a stored model, used only
// by the listing endpoint; single-model responses use modelResponse instead
// since they need to embed the decoded model JSON rather than its summary.
type modelResource struct {
	ID        string `jsonapi:"primary,models"`
	Name      string `jsonapi:"attr,name" json:"name"`
	CreatedAt string `jsonapi:"attr,created_at" json:"created_at"`
}

const defaultListLimit = 20

// handleListModels returns a JSON:API paginated listing of stored models.
func (h *Handler) handleListModels(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("page[limit]"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page[offset]"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	models, total, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		response.RenderJSONAPIError(w, http.StatusInternalServerError, err)
		return
	}

	resources := make([]*modelResource, 0, len(models))
	for _, m := range models {
		resources = append(resources, &modelResource{
			ID:        m.ID,
			Name:      m.Name,
			CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	links := response.BuildPaginationLinks(r.URL.Path, offset/limit+1, limit, total)
	meta := map[string]interface{}{"total": total}

	if err := response.RenderJSONAPIWithMeta(w, http.StatusOK, resources, meta, links); err != nil {
		response.RenderJSONAPIError(w, http.StatusInternalServerError, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
