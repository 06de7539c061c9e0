package backend

import (
	"context"
	"fmt"
)

const statusSuccess = "success"

// envelope is the {"status": "success", ...} wrapper most endpoints use.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (e envelope) check(endpoint string) error {
	if e.Status != "" && e.Status != statusSuccess {
		msg := e.Message
		if msg == "" {
			msg = fmt.Sprintf("status %q", e.Status)
		}
		return serverError(endpoint, 200, msg)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) (*HealthInfo, error) {
	var out HealthInfo
	if err := c.get(ctx, "/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Status(ctx context.Context) (Status, error) {
	var out Status
	if err := c.get(ctx, "/api/status", &out); err != nil {
		return Status{}, err
	}
	return out, nil
}

func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	var out struct {
		envelope
		Config Settings `json:"config"`
	}
	if err := c.get(ctx, "/config", &out); err != nil {
		return nil, err
	}
	if err := out.check("/config"); err != nil {
		return nil, err
	}
	return &out.Config, nil
}

func (c *Client) SaveSettings(ctx context.Context, s Settings) (string, error) {
	var out envelope
	if err := c.post(ctx, "/config", s, &out); err != nil {
		return "", err
	}
	if err := out.check("/config"); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) TestConnection(ctx context.Context, s Settings) (*ConnectionTest, error) {
	var out struct {
		envelope
		Tests ConnectionTest `json:"testes"`
	}
	if err := c.post(ctx, "/testar-conexao", s, &out); err != nil {
		return nil, err
	}
	if err := out.check("/testar-conexao"); err != nil {
		return nil, err
	}
	return &out.Tests, nil
}

func (c *Client) ConfigureAI(ctx context.Context, provider, apiKey string) (string, error) {
	req := map[string]string{"provider": provider, "api_key": apiKey}
	var out envelope
	if err := c.post(ctx, "/api/configurar-ia", req, &out); err != nil {
		return "", err
	}
	if err := out.check("/api/configurar-ia"); err != nil {
		return "", err
	}
	return out.Message, nil
}

// ConfigureRAG indexes the given documents; nil paths let the backend use
// its bundled law texts.
func (c *Client) ConfigureRAG(ctx context.Context, paths []string, provider string) (int, error) {
	req := map[string]any{"caminhos_pdf": paths, "provider": provider}
	var out struct {
		envelope
		Documents int `json:"documentos"`
	}
	if err := c.post(ctx, "/api/configurar-rag", req, &out); err != nil {
		return 0, err
	}
	if err := out.check("/api/configurar-rag"); err != nil {
		return 0, err
	}
	return out.Documents, nil
}

// AnalyzeField scores text against the rubric selected by kind. prior
// carries the other field values so the backend can check coherence.
func (c *Client) AnalyzeField(ctx context.Context, kind, text string, prior map[string]string) (*Analysis, error) {
	req := map[string]any{
		"nome_campo":        kind,
		"conteudo_atual":    text,
		"contexto_anterior": prior,
	}
	var out struct {
		envelope
		Analysis Analysis `json:"analise"`
	}
	if err := c.post(ctx, "/api/analisar-campo", req, &out); err != nil {
		return nil, err
	}
	if err := out.check("/api/analisar-campo"); err != nil {
		return nil, err
	}
	return &out.Analysis, nil
}

func (c *Client) ImproveText(ctx context.Context, text string, kind ImprovementKind) (string, error) {
	if kind == "" {
		kind = ImproveGeneral
	}
	req := map[string]string{"texto": text, "tipo_melhoria": string(kind)}
	var out struct {
		envelope
		Improvement struct {
			Text string `json:"texto_melhorado"`
		} `json:"melhoria"`
	}
	if err := c.post(ctx, "/api/melhorar-texto", req, &out); err != nil {
		return "", err
	}
	if err := out.check("/api/melhorar-texto"); err != nil {
		return "", err
	}
	return out.Improvement.Text, nil
}

func (c *Client) GenerateExample(ctx context.Context, kind string, prior map[string]string) (string, error) {
	req := map[string]any{"nome_campo": kind, "contexto_anterior": prior}
	var out struct {
		envelope
		Example string `json:"exemplo"`
	}
	if err := c.post(ctx, "/api/gerar-exemplo", req, &out); err != nil {
		return "", err
	}
	if err := out.check("/api/gerar-exemplo"); err != nil {
		return "", err
	}
	return out.Example, nil
}

func (c *Client) GenerateETP(ctx context.Context, values map[string]string) (*Generated, error) {
	var out struct {
		envelope
		Generated
	}
	if err := c.post(ctx, "/api/gerar-etp", values, &out); err != nil {
		return nil, err
	}
	if err := out.check("/api/gerar-etp"); err != nil {
		return nil, err
	}
	return &out.Generated, nil
}

func (c *Client) ValidateConsistency(ctx context.Context, values map[string]string) (*Consistency, error) {
	var out struct {
		envelope
		Consistency
	}
	if err := c.post(ctx, "/api/validar-consistencia", values, &out); err != nil {
		return nil, err
	}
	if err := out.check("/api/validar-consistencia"); err != nil {
		return nil, err
	}
	return &out.Consistency, nil
}

func (c *Client) AskRAG(ctx context.Context, question string, history []Turn) (*Answer, error) {
	if history == nil {
		history = []Turn{}
	}
	req := map[string]any{"pergunta": question, "historico": history}
	var out struct {
		envelope
		Answer
	}
	if err := c.post(ctx, "/api/perguntar-rag", req, &out); err != nil {
		return nil, err
	}
	if err := out.check("/api/perguntar-rag"); err != nil {
		return nil, err
	}
	return &out.Answer, nil
}

func (c *Client) CriticalFields(ctx context.Context) ([]string, error) {
	var out struct {
		Fields []string `json:"campos"`
	}
	if err := c.get(ctx, "/api/campos-criticos", &out); err != nil {
		return nil, err
	}
	return out.Fields, nil
}

func (c *Client) SectionMap(ctx context.Context) (map[string]string, int, error) {
	var out struct {
		Mapping  map[string]string `json:"mapeamento"`
		Sections int               `json:"total_secoes"`
	}
	if err := c.get(ctx, "/api/secoes-trt2", &out); err != nil {
		return nil, 0, err
	}
	return out.Mapping, out.Sections, nil
}
