package drafts

import (
	"fmt"
	"strings"
)

type templateSection struct {
	heading string
	hint    string
}

var templateSections = []templateSection{
	{"DESCRIÇÃO DA NECESSIDADE", "Descreva aqui a contextualização do problema ou oportunidade identificada..."},
	{"HISTÓRICO DE CONTRATAÇÕES SIMILARES", "Levantamento de contratações anteriores relacionadas..."},
	{"SOLUÇÕES EXISTENTES NO MERCADO", "Pesquisa abrangente de alternativas disponíveis..."},
	{"LEVANTAMENTO E ANÁLISE DE RISCOS", "Elaboração de Mapa de Riscos obrigatório..."},
	{"CRITÉRIOS DE SUSTENTABILIDADE", "Conformidade com Guia de Contratações Sustentáveis..."},
	{"ESTIMATIVA DO VALOR DA CONTRATAÇÃO", "Metodologia de pesquisa conforme art. 23 da Lei 14.133/2021..."},
	{"DEFINIÇÃO DO OBJETO", "Descrição técnica precisa e completa..."},
	{"JUSTIFICATIVA DE ESCOLHA DA SOLUÇÃO", "Fundamentação técnica, operacional e financeira..."},
	{"PREVISÃO DE CONTRATAÇÕES FUTURAS (PCA)", "Inserção no Plano de Contratações Anuais..."},
	{"ESTIMATIVA DE QUANTIDADES", "Memórias de cálculo fundamentadas..."},
	{"JUSTIFICATIVAS PARA PARCELAMENTO, AGRUPAMENTO E SUBCONTRATAÇÃO", "Análise de viabilidade técnica e econômica..."},
	{"DEPENDÊNCIA DO CONTRATADO", "Análise de dependência tecnológica..."},
	{"TRANSIÇÃO CONTRATUAL", "Planejamento da transição entre contratos..."},
	{"ESTRATÉGIA DE IMPLANTAÇÃO", "Metodologia de implementação detalhada..."},
	{"BENEFÍCIOS ESPERADOS", "Benefícios quantitativos e qualitativos..."},
	{"DECLARAÇÃO DE ADEQUAÇÃO ORÇAMENTÁRIA", "Confirmação de disponibilidade orçamentária..."},
	{"APROVAÇÃO DA AUTORIDADE COMPETENTE", "Identificação da autoridade competente..."},
}

// Template is the HTML the editor starts from: 17 numbered sections with a
// hint each, then blanks for date, responsible and signature.
func Template() string {
	var b strings.Builder
	b.WriteString(`<h1 style="text-align: center;">ESTUDO TÉCNICO PRELIMINAR (ETP)</h1>` + "\n")
	for i, s := range templateSections {
		fmt.Fprintf(&b, "<h2>%d. %s</h2>\n<p>%s</p>\n", i+1, s.heading, s.hint)
	}
	b.WriteString("<br/>\n")
	b.WriteString("<p><strong>Data:</strong> ___/___/______</p>\n")
	b.WriteString("<p><strong>Responsável:</strong> _________________________</p>\n")
	b.WriteString("<p><strong>Assinatura:</strong> _________________________</p>\n")
	return b.String()
}
