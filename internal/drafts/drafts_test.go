package drafts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/etpassistant/internal/document"
	"github.com/nikhilbhutani/etpassistant/internal/kv"
)

func newStore(t *testing.T) (*Store, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	s := NewStore(mem)
	clock := time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s, mem
}

func TestCurrentDraft(t *testing.T) {
	ctx := context.Background()
	s, mem := newStore(t)

	_, err := s.LoadCurrent(ctx)
	assert.ErrorIs(t, err, ErrNoDraft)
	assert.Equal(t, "Nenhum rascunho encontrado", err.Error())

	values := document.Values{"analise_riscos": "Risco de atraso"}
	require.NoError(t, s.SaveCurrent(ctx, values))

	raw, err := mem.Get(ctx, "etp_draft")
	require.NoError(t, err)
	assert.JSONEq(t, `{"analise_riscos":"Risco de atraso"}`, string(raw))

	got, err := s.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, values, got)

	require.NoError(t, s.ClearCurrent(ctx))
	_, err = s.LoadCurrent(ctx)
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestGeneratorForm(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	f, err := s.LoadForm(ctx)
	require.NoError(t, err)
	assert.Equal(t, document.Form{}, f)

	want := document.Form{Objeto: "Notebooks", Modalidade: "pregao", DocumentacaoNecessaria: []string{"Projeto Básico"}}
	require.NoError(t, s.SaveForm(ctx, want))
	f, err = s.LoadForm(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, f)
}

func TestSavedDocuments(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	_, err := s.Save(ctx, "   ", "<p>x</p>")
	assert.ErrorIs(t, err, ErrTitleRequired)

	first, err := s.Save(ctx, "ETP Notebooks", "<p>um</p>")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.ID, "etp_"))
	second, err := s.Save(ctx, "ETP Limpeza", "<p>dois</p>")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ETP Limpeza", list[0].Title)
	assert.Equal(t, "ETP Notebooks", list[1].Title)

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "<p>um</p>", got.Content)

	require.NoError(t, s.Delete(ctx, first.ID))
	_, err = s.Get(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, first.ID), ErrNotFound)

	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetRejectsForeignKeys(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.SaveCurrent(ctx, document.Values{"analise_riscos": "Risco de atraso"}))
	require.NoError(t, s.SaveForm(ctx, document.Form{Objeto: "Notebooks"}))
	_, err := s.Save(ctx, "ETP Notebooks", "<p>x</p>")
	require.NoError(t, err)

	for _, id := range []string{"dashboard_stats", CurrentKey, FormKey, IndexKey} {
		_, err := s.Get(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound, id)
	}
}

func TestTemplate(t *testing.T) {
	tpl := Template()
	assert.Contains(t, tpl, "<h2>1. DESCRIÇÃO DA NECESSIDADE</h2>")
	assert.Contains(t, tpl, "<h2>17. APROVAÇÃO DA AUTORIDADE COMPETENTE</h2>")
	assert.Equal(t, 17, strings.Count(tpl, "<h2>"))
	assert.Contains(t, tpl, "Assinatura:")
}
