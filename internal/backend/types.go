package backend

// Capability names one backend feature that can be switched on or off.
type Capability string

const (
	CapabilityPrimaryLLM     Capability = "openai_api"
	CapabilitySecondaryLLM   Capability = "anthropic_api"
	CapabilityGenerator      Capability = "etp_generator"
	CapabilityFieldAssistant Capability = "assistente_etp"
	CapabilityRAGAssistant   Capability = "rag_assistant"
)

// Status reports which backend features are configured.
type Status struct {
	OpenAI         bool `json:"openai_api"`
	Anthropic      bool `json:"anthropic_api"`
	Generator      bool `json:"etp_generator"`
	FieldAssistant bool `json:"assistente_etp"`
	RAGAssistant   bool `json:"rag_assistant"`
}

func (s Status) Has(c Capability) bool {
	switch c {
	case CapabilityPrimaryLLM:
		return s.OpenAI
	case CapabilitySecondaryLLM:
		return s.Anthropic
	case CapabilityGenerator:
		return s.Generator
	case CapabilityFieldAssistant:
		return s.FieldAssistant
	case CapabilityRAGAssistant:
		return s.RAGAssistant
	default:
		return false
	}
}

// AnyProvider is true when at least one language model provider is set up.
func (s Status) AnyProvider() bool {
	return s.OpenAI || s.Anthropic
}

// Health is the share of the four user-facing services that are active,
// as a percentage.
func (s Status) Health() int {
	active := 0
	for _, on := range []bool{s.OpenAI, s.Anthropic, s.RAGAssistant, s.FieldAssistant} {
		if on {
			active++
		}
	}
	return active * 25
}

type HealthInfo struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// Settings is the configuration the backend keeps for its providers.
type Settings struct {
	OpenAIAPIKey          string  `json:"openai_api_key,omitempty" yaml:"openai_api_key"`
	AnthropicAPIKey       string  `json:"anthropic_api_key,omitempty" yaml:"anthropic_api_key"`
	ProviderPreference    string  `json:"provider_preference" yaml:"provider_preference"`
	RAGEnabled            bool    `json:"rag_enabled" yaml:"rag_enabled"`
	FieldAssistantEnabled bool    `json:"assistente_etp_enabled" yaml:"assistente_etp_enabled"`
	MaxTokens             int     `json:"max_tokens" yaml:"max_tokens"`
	Temperature           float64 `json:"temperature" yaml:"temperature"`
}

// DefaultSettings mirrors the values the configuration page starts with.
func DefaultSettings() Settings {
	return Settings{
		ProviderPreference:    "openai",
		RAGEnabled:            true,
		FieldAssistantEnabled: true,
		MaxTokens:             4000,
		Temperature:           0.7,
	}
}

type ConnectionTest struct {
	OpenAI         bool   `json:"openai_api"`
	Anthropic      bool   `json:"anthropic_api"`
	ActiveProvider string `json:"provider_ativo"`
}

// Analysis is the backend's evaluation of one field value.
type Analysis struct {
	Score         int         `json:"score"`
	Justification string      `json:"justificativa_score"`
	Problems      []string    `json:"problemas_identificados,omitempty"`
	Suggestions   []string    `json:"sugestoes_melhoria,omitempty"`
	ImprovedText  string      `json:"sugestao_melhoria,omitempty"`
	Compliance    *Compliance `json:"conformidade_trt2,omitempty"`
}

type Compliance struct {
	Status  string `json:"status"`
	Remarks string `json:"observacoes"`
}

// ImprovementKind selects how the backend rewrites a text.
type ImprovementKind string

const (
	ImproveGeneral   ImprovementKind = "geral"
	ImproveGrammar   ImprovementKind = "gramatica"
	ImproveTechnical ImprovementKind = "tecnico"
)

func (k ImprovementKind) Valid() bool {
	switch k {
	case ImproveGeneral, ImproveGrammar, ImproveTechnical:
		return true
	}
	return false
}

// Turn is one prior exchange sent along with a retrieval question.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Answer struct {
	Text      string   `json:"resposta"`
	Sources   []string `json:"fontes"`
	Timestamp string   `json:"timestamp,omitempty"`
}

type Consistency struct {
	Consistency map[string]any `json:"consistencia"`
	Alignment   map[string]any `json:"alinhamento_trt2"`
}

type Generated struct {
	Content string         `json:"etp"`
	Used    map[string]any `json:"dados_utilizados,omitempty"`
}
