package document

// Option is one selectable code with its display label.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

var modalities = []Option{
	{"pregao", "Pregão (Presencial/Eletrônico)"},
	{"concorrencia", "Concorrência"},
	{"tomada-precos", "Tomada de Preços"},
	{"convite", "Convite"},
	{"concurso", "Concurso"},
	{"leilao", "Leilão"},
	{"rdc", "RDC - Regime Diferenciado de Contratações"},
	{"dialogo-competitivo", "Diálogo Competitivo"},
}

var criteria = []Option{
	{"menor-preco", "Menor Preço"},
	{"melhor-tecnica", "Melhor Técnica"},
	{"tecnica-preco", "Técnica e Preço"},
	{"maior-lance", "Maior Lance"},
	{"melhor-conteudo", "Melhor Conteúdo Artístico"},
}

var documentationOptions = []string{
	"Projeto Básico",
	"Projeto Executivo",
	"Orçamento Detalhado",
	"Cronograma Físico-Financeiro",
	"Memorial Descritivo",
	"Especificações Técnicas",
	"Planilha de Quantitativos",
	"Estudo de Viabilidade",
	"Licenças Ambientais",
	"Certidões e Alvarás",
}

func Modalities() []Option {
	return append([]Option(nil), modalities...)
}

func Criteria() []Option {
	return append([]Option(nil), criteria...)
}

// DocumentationOptions lists the checklist entries the generator form offers.
func DocumentationOptions() []string {
	return append([]string(nil), documentationOptions...)
}

// ModalityLabel returns the display label for a modality code, or the code
// itself when it is not known.
func ModalityLabel(code string) string {
	return label(modalities, code)
}

// CriterionLabel is ModalityLabel for judgment criteria.
func CriterionLabel(code string) string {
	return label(criteria, code)
}

func label(opts []Option, code string) string {
	for _, o := range opts {
		if o.Code == code {
			return o.Label
		}
	}
	return code
}
