package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/etpassistant/internal/analysis"
	"github.com/nikhilbhutani/etpassistant/internal/app"
	"github.com/nikhilbhutani/etpassistant/internal/config"
	"github.com/nikhilbhutani/etpassistant/internal/export"
)

// fakeBackend stands in for the ETP backend with switchable capabilities.
type fakeBackend struct {
	mu       sync.Mutex
	fieldsOn bool
	ragOn    bool
	ragFails bool
	analyzed []map[string]any
	requests []string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	switch r.URL.Path {
	case "/":
		w.Write([]byte(`{"message":"ok","version":"1.0","status":"running"}`))
	case "/api/status":
		json.NewEncoder(w).Encode(map[string]bool{
			"openai_api":     true,
			"assistente_etp": f.fieldsOn,
			"rag_assistant":  f.ragOn,
		})
	case "/api/analisar-campo":
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.analyzed = append(f.analyzed, body)
		w.Write([]byte(`{"status":"success","analise":{"score":8,"justificativa_score":"bom",
			"sugestao_melhoria":"Texto sugerido pelo assistente."}}`))
	case "/api/perguntar-rag":
		if f.ragFails {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"status":"success","resposta":"Resposta.","fontes":["Lei 14.133"]}`))
	case "/api/gerar-etp":
		w.Write([]byte(`{"status":"success","etp":"ETP completo"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Not Found"}`))
	}
}

type testEnv struct {
	backend *fakeBackend
	app     *app.App
	handler http.Handler
}

func (f *fakeBackend) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fb := &fakeBackend{fieldsOn: true, ragOn: true}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Server:  config.ServerConfig{AllowedOrigins: []string{"*"}, RateLimit: 1000, RateBurst: 1000},
		Backend: config.BackendConfig{URL: srv.URL, TimeoutSeconds: 5},
		Store:   config.StoreConfig{Driver: "memory"},
		Export:  config.ExportConfig{Sink: "none"},
		Profile: "test",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := app.New(context.Background(), cfg, logger)
	require.NoError(t, err)
	a.Now = func() time.Time { return time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { a.Close() })

	return &testEnv{backend: fb, app: a, handler: NewRouter(a).Setup()}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, map[string]any{"store": "ok", "backend": "ok"}, body["checks"])
}

func TestStatusReportsHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(75), decode(t, rec)["health"])
}

func TestFieldAnalysisFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/fields", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["fields"], 11)

	rec = env.do(t, http.MethodPut, "/api/fields/analise_riscos", map[string]string{"value": "Riscos de atraso na entrega dos equipamentos"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/fields/analise_riscos/analyze", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, string(analysis.StateReviewing), body["state"])

	rec = env.do(t, http.MethodGet, "/api/fields/analise_riscos/analysis", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/fields/analise_riscos/apply", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, true, body["changed"])
	assert.Equal(t, "Texto sugerido pelo assistente.", body["value"])

	rec = env.do(t, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, float64(1), decode(t, rec)["assistantUsage"])
}

func TestFieldAnalysisRefusals(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/fields/analise_riscos", map[string]string{"value": "curto"})
	require.Equal(t, http.StatusOK, rec.Code)

	before := env.backend.requestCount()
	rec = env.do(t, http.MethodPost, "/api/fields/analise_riscos/analyze", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "warning", body["level"])
	assert.Equal(t, analysis.ErrValueTooShort.Error(), body["error"])
	assert.Equal(t, before, env.backend.requestCount())

	env.backend.mu.Lock()
	env.backend.fieldsOn = false
	env.backend.mu.Unlock()
	rec = env.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/fields/analise_riscos", map[string]string{"value": "Risco de atraso na entrega"})
	require.Equal(t, http.StatusOK, rec.Code)
	before = env.backend.requestCount()
	rec = env.do(t, http.MethodPost, "/api/fields/analise_riscos/analyze", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "error", decode(t, rec)["level"])
	assert.Equal(t, before, env.backend.requestCount())
	assert.Empty(t, env.backend.analyzed)

	rec = env.do(t, http.MethodPut, "/api/fields/nao_existe", map[string]string{"value": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/fields/analise_riscos/dismiss", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFieldImport(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "riscos.txt")
	require.NoError(t, err)
	part.Write([]byte("\n  Riscos identificados no contrato\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/fields/analise_riscos/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Riscos identificados no contrato", env.app.Fields.Value("analise_riscos"))
}

func TestDraftRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/drafts/current", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "info", decode(t, rec)["level"])

	env.do(t, http.MethodPut, "/api/fields/definicao_objeto", map[string]string{"value": "Aquisição de notebooks"})
	rec = env.do(t, http.MethodPut, "/api/drafts/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env.do(t, http.MethodPut, "/api/fields/definicao_objeto", map[string]string{"value": "outro"})
	rec = env.do(t, http.MethodGet, "/api/drafts/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Aquisição de notebooks", env.app.Fields.Value("definicao_objeto"))

	rec = env.do(t, http.MethodDelete, "/api/drafts/current", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateCountsETP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/etp/generate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ETP completo", decode(t, rec)["etp"])

	rec = env.do(t, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, float64(1), decode(t, rec)["etpsCreated"])
}

func TestDocumentsCRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/documents", map[string]string{"title": " ", "content": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/documents", map[string]string{"title": "ETP Notebooks", "content": "<p>x</p>"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["id"].(string)

	rec = env.do(t, http.MethodGet, "/api/documents", nil)
	assert.Equal(t, float64(1), decode(t, rec)["count"])

	rec = env.do(t, http.MethodGet, "/api/documents/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ETP Notebooks", decode(t, rec)["title"])

	rec = env.do(t, http.MethodDelete, "/api/documents/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/documents/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/drafts/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/documents/etp_draft", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/documents/template", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["content"], "ESTUDO TÉCNICO PRELIMINAR")
}

func TestGeneratorExport(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/generator/export", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, export.ErrMinimumData.Error(), decode(t, rec)["error"])

	form := map[string]any{
		"objeto":        "Aquisição de notebooks",
		"justificativa": "Substituição de equipamentos obsoletos",
		"modalidade":    "pregao",
	}
	rec = env.do(t, http.MethodPut, "/api/generator", form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["ready"])

	rec = env.do(t, http.MethodGet, "/api/generator/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["text"], "Aquisição de notebooks")

	rec = env.do(t, http.MethodPost, "/api/generator/export", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ETP_Aquisi__o_de_noteboo_2025-03-07.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = env.do(t, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, float64(1), decode(t, rec)["etpsCreated"])
}

func TestRAGMessages(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/rag/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["suggestions"], 8)

	rec = env.do(t, http.MethodPost, "/api/rag/messages", map[string]string{"message": "  "})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/rag/messages", map[string]string{"message": "O que é ETP?"})
	require.Equal(t, http.StatusOK, rec.Code)

	env.backend.mu.Lock()
	env.backend.ragFails = true
	env.backend.mu.Unlock()

	rec = env.do(t, http.MethodPost, "/api/rag/messages", map[string]string{"message": "E agora?"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode(t, rec)
	msg := body["message"].(map[string]any)
	assert.Equal(t, true, msg["isError"])

	rec = env.do(t, http.MethodGet, "/api/rag/messages", nil)
	assert.Len(t, decode(t, rec)["messages"], 4)

	rec = env.do(t, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, float64(1), decode(t, rec)["ragQueries"])

	rec = env.do(t, http.MethodDelete, "/api/rag/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/rag/messages", nil)
	assert.Empty(t, decode(t, rec)["messages"])
}

func TestGenericChatWithoutAssistant(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/chat/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msgs := decode(t, rec)["messages"].([]any)
	require.Len(t, msgs, 1)

	rec = env.do(t, http.MethodPost, "/api/chat/messages", map[string]string{"message": "Olá"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBackendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := &config.Config{
		Server:  config.ServerConfig{AllowedOrigins: []string{"*"}, RateLimit: 10, RateBurst: 10},
		Backend: config.BackendConfig{URL: url},
		Store:   config.StoreConfig{Driver: "memory"},
		Export:  config.ExportConfig{Sink: "none"},
	}
	a, err := app.New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer a.Close()

	h := NewRouter(a).Setup()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Erro ao verificar status: Erro de conexão com o servidor", body["error"])
}
