package document

import (
	"regexp"
	"strings"
	"time"
)

// Form holds what the user typed into the ETP generator.
type Form struct {
	Objeto                 string   `json:"objeto" yaml:"objeto"`
	Justificativa          string   `json:"justificativa" yaml:"justificativa"`
	Modalidade             string   `json:"modalidade" yaml:"modalidade"`
	ValorEstimado          string   `json:"valorEstimado" yaml:"valorEstimado"`
	PrazoExecucao          string   `json:"prazoExecucao" yaml:"prazoExecucao"`
	LocalExecucao          string   `json:"localExecucao" yaml:"localExecucao"`
	EspecificacoesTecnicas string   `json:"especificacoesTecnicas" yaml:"especificacoesTecnicas"`
	CriterioJulgamento     string   `json:"criterioJulgamento" yaml:"criterioJulgamento"`
	DocumentacaoNecessaria []string `json:"documentacaoNecessaria" yaml:"documentacaoNecessaria"`
	Observacoes            string   `json:"observacoes" yaml:"observacoes"`
}

// ToggleDocumentation adds doc to the checklist when checked and removes it
// otherwise. Adding an entry that is already present changes nothing.
func (f *Form) ToggleDocumentation(doc string, checked bool) {
	idx := -1
	for i, d := range f.DocumentacaoNecessaria {
		if d == doc {
			idx = i
			break
		}
	}
	switch {
	case checked && idx < 0:
		f.DocumentacaoNecessaria = append(f.DocumentacaoNecessaria, doc)
	case !checked && idx >= 0:
		f.DocumentacaoNecessaria = append(f.DocumentacaoNecessaria[:idx], f.DocumentacaoNecessaria[idx+1:]...)
	}
}

// HasMinimumData reports whether the form can be exported: objeto,
// justificativa and modalidade must all be filled in.
func (f Form) HasMinimumData() bool {
	return strings.TrimSpace(f.Objeto) != "" &&
		strings.TrimSpace(f.Justificativa) != "" &&
		strings.TrimSpace(f.Modalidade) != ""
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileName is the download name of the exported PDF.
func FileName(f Form, now time.Time) string {
	objeto := []rune(f.Objeto)
	if len(objeto) > 20 {
		objeto = objeto[:20]
	}
	return "ETP_" + nonAlnum.ReplaceAllString(string(objeto), "_") + "_" + now.Format("2006-01-02") + ".pdf"
}
