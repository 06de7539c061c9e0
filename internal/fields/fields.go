// Package fields is the registry of the critical ETP fields the assistant
// can analyze.
package fields

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinLength is the shortest trimmed value, in characters, the assistant
// accepts for analysis.
const MinLength = 10

type Field struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	Required     bool   `json:"required"`
	AnalysisKind string `json:"analysis_kind"`
}

var registry = []Field{
	{Name: "descricao_necessidade", Label: "Descrição da Necessidade"},
	{Name: "historico_contratacoes", Label: "Histórico de Contratações"},
	{Name: "solucoes_mercado", Label: "Soluções de Mercado"},
	{Name: "analise_riscos", Label: "Análise de Riscos"},
	{Name: "criterios_sustentabilidade", Label: "Critérios de Sustentabilidade"},
	{Name: "estimativa_valor", Label: "Estimativa de Valor"},
	{Name: "definicao_objeto", Label: "Definição do Objeto"},
	{Name: "justificativa_escolha", Label: "Justificativa da Escolha"},
	{Name: "previsao_contratacoes", Label: "Previsão no Plano de Contratações"},
	{Name: "estimativa_quantidades", Label: "Estimativa de Quantidades"},
	{Name: "justificativas_parcelamento", Label: "Justificativas de Parcelamento"},
}

var byName map[string]Field

func init() {
	byName = make(map[string]Field, len(registry))
	for i := range registry {
		registry[i].Required = true
		registry[i].AnalysisKind = registry[i].Name
		byName[registry[i].Name] = registry[i]
	}
}

// All returns the fields in declaration order. The slice is a copy.
func All() []Field {
	out := make([]Field, len(registry))
	copy(out, registry)
	return out
}

func Names() []string {
	out := make([]string, len(registry))
	for i, f := range registry {
		out[i] = f.Name
	}
	return out
}

func Lookup(name string) (Field, bool) {
	f, ok := byName[name]
	return f, ok
}

// Violation is one rule a set of field values breaks.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// Validate checks values against the form rules: every required field
// present, and any present field at least MinLength characters once trimmed.
// Violations come back in registry order.
func Validate(values map[string]string) []Violation {
	var out []Violation
	for _, f := range registry {
		v := strings.TrimSpace(values[f.Name])
		switch {
		case v == "" && f.Required:
			out = append(out, Violation{Field: f.Name, Message: f.Label + " é obrigatório"})
		case v != "" && !LongEnough(v):
			out = append(out, Violation{Field: f.Name, Message: fmt.Sprintf("%s deve ter pelo menos %d caracteres", f.Label, MinLength)})
		}
	}
	return out
}

// LongEnough reports whether the trimmed value reaches MinLength characters.
func LongEnough(value string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(value)) >= MinLength
}
