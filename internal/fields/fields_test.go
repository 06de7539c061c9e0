package fields

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOrderAndShape(t *testing.T) {
	want := []string{
		"descricao_necessidade",
		"historico_contratacoes",
		"solucoes_mercado",
		"analise_riscos",
		"criterios_sustentabilidade",
		"estimativa_valor",
		"definicao_objeto",
		"justificativa_escolha",
		"previsao_contratacoes",
		"estimativa_quantidades",
		"justificativas_parcelamento",
	}
	assert.Equal(t, want, Names())

	for _, f := range All() {
		assert.True(t, f.Required, f.Name)
		assert.Equal(t, f.Name, f.AnalysisKind)
		assert.NotEmpty(t, f.Label)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].Label = "changed"

	f, ok := Lookup("descricao_necessidade")
	require.True(t, ok)
	assert.NotEqual(t, "changed", f.Label)
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("objeto")
	assert.False(t, ok)
}

func TestLongEnough(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"curto", false},
		{"123456789", false},
		{"1234567890", true},
		{"   123456789   ", false},
		{"ação ações", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LongEnough(tt.value), "%q", tt.value)
	}
}

func TestValidate(t *testing.T) {
	values := map[string]string{}
	for _, n := range Names() {
		values[n] = strings.Repeat("a", MinLength)
	}
	assert.Empty(t, Validate(values))

	values["analise_riscos"] = "  "
	values["estimativa_valor"] = "R$ 10"

	got := Validate(values)
	require.Len(t, got, 2)
	assert.Equal(t, "analise_riscos", got[0].Field)
	assert.Contains(t, got[0].Message, "obrigatório")
	assert.Equal(t, "estimativa_valor", got[1].Field)
	assert.Contains(t, got[1].Message, "10 caracteres")
}
