package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.March, 7, 15, 4, 5, 0, time.UTC)

func fullForm() Form {
	return Form{
		Objeto:                 "Aquisição de notebooks",
		Justificativa:          "Substituição de equipamentos obsoletos",
		Modalidade:             "pregao",
		ValorEstimado:          "150.000,00",
		PrazoExecucao:          "90 dias",
		LocalExecucao:          "Sede do Tribunal",
		EspecificacoesTecnicas: "16 GB RAM, SSD 512 GB",
		CriterioJulgamento:     "menor-preco",
		DocumentacaoNecessaria: []string{"Projeto Básico", "Orçamento Detalhado"},
		Observacoes:            "Garantia mínima de 36 meses",
	}
}

func TestLabels(t *testing.T) {
	tests := []struct {
		fn   func(string) string
		code string
		want string
	}{
		{ModalityLabel, "pregao", "Pregão (Presencial/Eletrônico)"},
		{ModalityLabel, "tomada-precos", "Tomada de Preços"},
		{ModalityLabel, "rdc", "RDC - Regime Diferenciado de Contratações"},
		{ModalityLabel, "dialogo-competitivo", "Diálogo Competitivo"},
		{ModalityLabel, "credenciamento", "credenciamento"},
		{CriterionLabel, "tecnica-preco", "Técnica e Preço"},
		{CriterionLabel, "melhor-conteudo", "Melhor Conteúdo Artístico"},
		{CriterionLabel, "sorteio", "sorteio"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.fn(tt.code), tt.code)
	}
	assert.Len(t, Modalities(), 8)
	assert.Len(t, Criteria(), 5)
	assert.Len(t, DocumentationOptions(), 10)
}

func TestToggleDocumentation(t *testing.T) {
	var f Form
	f.ToggleDocumentation("Projeto Básico", true)
	f.ToggleDocumentation("Projeto Básico", true)
	f.ToggleDocumentation("Licenças Ambientais", true)
	assert.Equal(t, []string{"Projeto Básico", "Licenças Ambientais"}, f.DocumentacaoNecessaria)

	f.ToggleDocumentation("Projeto Básico", false)
	f.ToggleDocumentation("Projeto Executivo", false)
	assert.Equal(t, []string{"Licenças Ambientais"}, f.DocumentacaoNecessaria)
}

func TestHasMinimumData(t *testing.T) {
	f := Form{Objeto: "Notebooks", Justificativa: "Renovação"}
	assert.False(t, f.HasMinimumData())

	f.Modalidade = "  "
	assert.False(t, f.HasMinimumData())

	f.Modalidade = "pregao"
	assert.True(t, f.HasMinimumData())
}

func TestAssembleFullForm(t *testing.T) {
	doc := Assemble(fullForm(), fixedNow)

	assert.Equal(t, "ESTUDO TÉCNICO PRELIMINAR (ETP)", doc.Title)
	assert.Equal(t, "Documento gerado pela Licita Amiga IA em 07/03/2025", doc.Subtitle)

	require.Len(t, doc.Sections, 10)
	labels := make([]string, len(doc.Sections))
	for i, s := range doc.Sections {
		labels[i] = s.Label()
	}
	assert.Equal(t, []string{
		"1. OBJETO",
		"2. JUSTIFICATIVA",
		"3. MODALIDADE DE LICITAÇÃO",
		"4. VALOR ESTIMADO",
		"5. PRAZO DE EXECUÇÃO",
		"6. LOCAL DE EXECUÇÃO",
		"7. ESPECIFICAÇÕES TÉCNICAS",
		"8. CRITÉRIO DE JULGAMENTO",
		"9. DOCUMENTAÇÃO NECESSÁRIA",
		"10. OBSERVAÇÕES GERAIS",
	}, labels)

	assert.Equal(t, "Pregão (Presencial/Eletrônico)", doc.Sections[2].Body)
	assert.Equal(t, "R$ 150.000,00", doc.Sections[3].Body)
	assert.Equal(t, "Menor Preço", doc.Sections[7].Body)
	assert.Equal(t, []string{"Projeto Básico", "Orçamento Detalhado"}, doc.Sections[8].Bullets)

	assert.Equal(t, "11. RESPONSÁVEL TÉCNICO", doc.Responsible.Label())
	assert.Equal(t, []string{"Nome: [A ser preenchido]", "Cargo: [A ser preenchido]", "Matrícula: [A ser preenchido]"}, doc.Responsible.Bullets)
	assert.Equal(t, []string{"Data: 07/03/2025", "Assinatura do Responsável"}, doc.Signature)
	assert.Equal(t, []string{
		"Este documento foi gerado automaticamente pela Licita Amiga IA",
		"Verifique todas as informações antes da utilização oficial",
	}, doc.Footer)
}

func TestAssembleSkipsEmptySectionsKeepingNumbers(t *testing.T) {
	f := Form{
		Objeto:             "Serviço de limpeza",
		Justificativa:      "Contrato vigente expira",
		Modalidade:         "concorrencia",
		CriterioJulgamento: "menor-preco",
		ValorEstimado:      "   ",
		PrazoExecucao:      "\t",
		Observacoes:        " \n ",
	}
	doc := Assemble(f, fixedNow)

	require.Len(t, doc.Sections, 4)
	assert.Equal(t, []int{1, 2, 3, 8}, []int{
		doc.Sections[0].Number, doc.Sections[1].Number, doc.Sections[2].Number, doc.Sections[3].Number,
	})
	assert.Equal(t, 11, doc.Responsible.Number)

	blank := Assemble(Form{
		Objeto:             "   ",
		Modalidade:         "  ",
		ValorEstimado:      "   ",
		CriterioJulgamento: " ",
	}, fixedNow)
	assert.Empty(t, blank.Sections)
}

func TestAssembleIsIdempotent(t *testing.T) {
	f := fullForm()
	assert.Equal(t, Assemble(f, fixedNow), Assemble(f, fixedNow))
	assert.Equal(t, fullForm(), f)
}

func TestAssembleUnknownModalityFallsBack(t *testing.T) {
	f := fullForm()
	f.Modalidade = "credenciamento"
	doc := Assemble(f, fixedNow)
	assert.Equal(t, "credenciamento", doc.Sections[2].Body)
}

func TestDocumentText(t *testing.T) {
	text := Assemble(fullForm(), fixedNow).Text()
	assert.Contains(t, text, "9. DOCUMENTAÇÃO NECESSÁRIA\n• Projeto Básico\n• Orçamento Detalhado\n")
	assert.Contains(t, text, "11. RESPONSÁVEL TÉCNICO\nNome: [A ser preenchido]\n")
	assert.Contains(t, text, "Data: 07/03/2025\n")
}

func TestFileName(t *testing.T) {
	tests := []struct {
		objeto string
		want   string
	}{
		{"Aquisição de notebooks", "ETP_Aquisi__o_de_noteboo_2025-03-07.pdf"},
		{"Papel", "ETP_Papel_2025-03-07.pdf"},
		{"", "ETP__2025-03-07.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileName(Form{Objeto: tt.objeto}, fixedNow), tt.objeto)
	}
}

func TestValues(t *testing.T) {
	v := Values{"a": "x", "b": "  ", "c": ""}
	c := v.Clone()
	c["a"] = "y"
	assert.Equal(t, "x", v["a"])
	assert.Equal(t, Values{"a": "x"}, v.NonEmpty())
}
