package document

import (
	"fmt"
	"strings"
	"time"
)

const (
	Title          = "ESTUDO TÉCNICO PRELIMINAR (ETP)"
	Placeholder    = "[A ser preenchido]"
	SignatureLabel = "Assinatura do Responsável"
)

var footerLines = []string{
	"Este documento foi gerado automaticamente pela Licita Amiga IA",
	"Verifique todas as informações antes da utilização oficial",
}

// Section is one numbered block of the document. Body holds paragraphs,
// Bullets a list; a section uses one or the other.
type Section struct {
	Number  int      `json:"number"`
	Heading string   `json:"heading"`
	Body    string   `json:"body,omitempty"`
	Bullets []string `json:"bullets,omitempty"`
}

type Document struct {
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle"`
	Sections    []Section `json:"sections"`
	Responsible Section   `json:"responsible"`
	Signature   []string  `json:"signature"`
	Footer      []string  `json:"footer"`
}

// sectionSlot reads one form field; render decorates it for display and
// only runs on a non-blank value.
type sectionSlot struct {
	heading string
	source  func(Form) string
	render  func(string) string
}

var sectionSlots = []sectionSlot{
	{heading: "OBJETO", source: func(f Form) string { return f.Objeto }},
	{heading: "JUSTIFICATIVA", source: func(f Form) string { return f.Justificativa }},
	{heading: "MODALIDADE DE LICITAÇÃO", source: func(f Form) string { return f.Modalidade }, render: ModalityLabel},
	{heading: "VALOR ESTIMADO", source: func(f Form) string { return f.ValorEstimado }, render: func(v string) string { return "R$ " + v }},
	{heading: "PRAZO DE EXECUÇÃO", source: func(f Form) string { return f.PrazoExecucao }},
	{heading: "LOCAL DE EXECUÇÃO", source: func(f Form) string { return f.LocalExecucao }},
	{heading: "ESPECIFICAÇÕES TÉCNICAS", source: func(f Form) string { return f.EspecificacoesTecnicas }},
	{heading: "CRITÉRIO DE JULGAMENTO", source: func(f Form) string { return f.CriterioJulgamento }, render: CriterionLabel},
	{heading: "DOCUMENTAÇÃO NECESSÁRIA"},
	{heading: "OBSERVAÇÕES GERAIS", source: func(f Form) string { return f.Observacoes }},
}

const documentationSection = 9

// Assemble lays the form out as the exported document. now only feeds the
// generation date and the signature date.
func Assemble(f Form, now time.Time) Document {
	date := FormatDate(now)
	doc := Document{
		Title:    Title,
		Subtitle: "Documento gerado pela Licita Amiga IA em " + date,
	}

	for i, slot := range sectionSlots {
		n := i + 1
		if n == documentationSection {
			if len(f.DocumentacaoNecessaria) > 0 {
				doc.Sections = append(doc.Sections, Section{
					Number:  n,
					Heading: slot.heading,
					Bullets: append([]string(nil), f.DocumentacaoNecessaria...),
				})
			}
			continue
		}
		body := slot.source(f)
		if strings.TrimSpace(body) == "" {
			continue
		}
		if slot.render != nil {
			body = slot.render(body)
		}
		doc.Sections = append(doc.Sections, Section{Number: n, Heading: slot.heading, Body: body})
	}

	doc.Responsible = Section{
		Number:  len(sectionSlots) + 1,
		Heading: "RESPONSÁVEL TÉCNICO",
		Bullets: []string{
			"Nome: " + Placeholder,
			"Cargo: " + Placeholder,
			"Matrícula: " + Placeholder,
		},
	}
	doc.Signature = []string{"Data: " + date, SignatureLabel}
	doc.Footer = append([]string(nil), footerLines...)
	return doc
}

// FormatDate renders t as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// Label is the "N. HEADING" line printed above a section.
func (s Section) Label() string {
	return fmt.Sprintf("%d. %s", s.Number, s.Heading)
}

// Text renders the document as plain text, one block per section.
func (d Document) Text() string {
	var b strings.Builder
	b.WriteString(d.Title + "\n" + d.Subtitle + "\n\n")
	for _, s := range append(append([]Section(nil), d.Sections...), d.Responsible) {
		b.WriteString(s.Label() + "\n")
		if s.Body != "" {
			b.WriteString(s.Body + "\n")
		}
		for _, item := range s.Bullets {
			if s.Number == documentationSection {
				b.WriteString("• ")
			}
			b.WriteString(item + "\n")
		}
		b.WriteString("\n")
	}
	for _, l := range d.Signature {
		b.WriteString(l + "\n")
	}
	b.WriteString("\n")
	for _, l := range d.Footer {
		b.WriteString(l + "\n")
	}
	return b.String()
}
