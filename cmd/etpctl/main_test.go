package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/status":
			json.NewEncoder(w).Encode(map[string]bool{"rag_assistant": true})
		case "/api/perguntar-rag":
			w.Write([]byte(`{"status":"success","resposta":"É um estudo prévio.","fontes":["Lei 14.133, art. 6º"]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	t.Setenv("ETP_API_URL", srv.URL)
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "etp.db"))
	t.Setenv("EXPORT_SINK", "none")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := &cli{}
	root := c.root()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	if c.app != nil {
		c.app.Close()
	}
	return out.String(), err
}

func TestStatusCommand(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Assistente RAG   ativo")
	assert.Contains(t, out, "Saúde do sistema: 25%")
}

func TestDraftPersistsAcrossRuns(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "draft", "set", "definicao_objeto", "Aquisição de notebooks")
	require.NoError(t, err)

	out, err := run(t, "draft", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "## Definição do Objeto\nAquisição de notebooks")

	out, err = run(t, "draft", "check")
	require.Error(t, err)
	assert.Contains(t, out, "Descrição da Necessidade é obrigatório")
}

func TestAskAndHistory(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "ask", "O que é", "ETP?")
	require.NoError(t, err)
	assert.Contains(t, out, "É um estudo prévio.")
	assert.Contains(t, out, "Fontes: Lei 14.133, art. 6º")

	out, err = run(t, "history", "--kind", "rag")
	require.NoError(t, err)
	assert.Contains(t, out, "Você: O que é ETP?")

	_, err = run(t, "history", "--clear")
	require.NoError(t, err)
	out, err = run(t, "history")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Consultas RAG:      1")
}

func TestExportFromYAML(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	form := filepath.Join(dir, "form.yaml")
	require.NoError(t, os.WriteFile(form, []byte(
		"objeto: Aquisição de notebooks\njustificativa: Substituição do parque\nmodalidade: pregao\n"+
			"documentacaoNecessaria:\n  - Projeto Básico\n"), 0o644))

	out, err := run(t, "export", "--form", form, "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "páginas")

	matches, err := filepath.Glob(filepath.Join(dir, "ETP_*.pdf"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExportRefusesIncompleteForm(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	form := filepath.Join(dir, "form.yaml")
	require.NoError(t, os.WriteFile(form, []byte("objeto: Notebooks\n"), 0o644))

	_, err := run(t, "export", "--form", form, "--out", dir)
	require.Error(t, err)
}
