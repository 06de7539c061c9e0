package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/etpassistant/internal/analysis"
	"github.com/nikhilbhutani/etpassistant/internal/backend"
	"github.com/nikhilbhutani/etpassistant/internal/fields"
	"github.com/nikhilbhutani/etpassistant/pkg/textextract"
)

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which backend services are configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.action = "Erro ao verificar status"
			st, err := c.app.Status.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, row := range []struct {
				label string
				on    bool
			}{
				{"OpenAI", st.OpenAI},
				{"Anthropic", st.Anthropic},
				{"Gerador de ETP", st.Generator},
				{"Assistente ETP", st.FieldAssistant},
				{"Assistente RAG", st.RAGAssistant},
			} {
				fmt.Fprintf(out, "%-16s %s\n", row.label, onOff(row.on))
			}
			fmt.Fprintf(out, "Saúde do sistema: %d%%\n", st.Health())
			return nil
		},
	}
}

func onOff(on bool) string {
	if on {
		return "ativo"
	}
	return "inativo"
}

func (c *cli) fieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the critical fields and their draft values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, v := range c.app.Fields.Snapshot() {
				value := v.Value
				if value == "" {
					value = "-"
				}
				fmt.Fprintf(out, "%-28s %-36s %s\n", v.Name, v.Label, truncate(value, 60))
			}
			return nil
		},
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// readInput returns value, the text of file, or "" when neither is set.
func readInput(value, file string) (string, error) {
	if file == "" {
		return value, nil
	}
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	text, err := textextract.ExtractBytes(file, data)
	if err != nil {
		return "", err
	}
	return text.Content, nil
}

func (c *cli) analyzeCmd() *cobra.Command {
	var value, file string
	var apply bool

	cmd := &cobra.Command{
		Use:       "analyze <field>",
		Short:     "Score a field with the ETP assistant",
		Args:      cobra.ExactArgs(1),
		ValidArgs: fields.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.action = "Erro na análise"
			ctx := cmd.Context()
			name := args[0]

			text, err := readInput(value, file)
			if err != nil {
				return err
			}
			if text != "" {
				if err := c.app.Fields.SetValue(name, text); err != nil {
					return err
				}
			}

			a, err := c.app.Fields.RequestAnalysis(ctx, name)
			if err != nil {
				return err
			}
			printAnalysis(cmd.OutOrStdout(), a)

			if apply {
				changed, err := c.app.Fields.ApplySuggestion(name)
				if err != nil {
					return err
				}
				if changed {
					fmt.Fprintln(cmd.OutOrStdout(), "\nSugestão aplicada ao rascunho.")
				}
			}
			return c.app.Drafts.SaveCurrent(ctx, c.app.Fields.Values())
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "text to analyze (defaults to the draft value)")
	cmd.Flags().StringVar(&file, "file", "", "read the text from a PDF, DOCX or TXT file (- for stdin)")
	cmd.Flags().BoolVar(&apply, "apply", false, "replace the field with the suggested text")
	return cmd
}

func printAnalysis(w io.Writer, a *backend.Analysis) {
	fmt.Fprintf(w, "Pontuação: %d/10 (%s)\n", a.Score, analysis.StatusForScore(a.Score))
	if a.Justification != "" {
		fmt.Fprintf(w, "%s\n", a.Justification)
	}
	if len(a.Problems) > 0 {
		fmt.Fprintln(w, "\nProblemas identificados:")
		for _, p := range a.Problems {
			fmt.Fprintf(w, "  - %s\n", p)
		}
	}
	if len(a.Suggestions) > 0 {
		fmt.Fprintln(w, "\nSugestões de melhoria:")
		for _, s := range a.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	if a.Compliance != nil {
		fmt.Fprintf(w, "\nConformidade: %s", a.Compliance.Status)
		if a.Compliance.Remarks != "" {
			fmt.Fprintf(w, " (%s)", a.Compliance.Remarks)
		}
		fmt.Fprintln(w)
	}
	if a.ImprovedText != "" {
		fmt.Fprintf(w, "\nTexto sugerido:\n%s\n", a.ImprovedText)
	}
}

func (c *cli) improveCmd() *cobra.Command {
	var kind, file string

	cmd := &cobra.Command{
		Use:   "improve [text]",
		Short: "Rewrite a text with the backend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.action = "Erro ao melhorar texto"
			var value string
			if len(args) == 1 {
				value = args[0]
			}
			text, err := readInput(value, file)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("nothing to improve: pass a text or --file")
			}
			k := backend.ImprovementKind(kind)
			if !k.Valid() {
				return fmt.Errorf("unknown --type %q (geral, gramatica, tecnico)", kind)
			}
			out, err := c.app.Backend.ImproveText(cmd.Context(), text, k)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "type", string(backend.ImproveGeneral), "geral, gramatica or tecnico")
	cmd.Flags().StringVar(&file, "file", "", "read the text from a file (- for stdin)")
	return cmd
}

func (c *cli) exampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "example <field>",
		Short:     "Ask the backend for an example text for a field",
		Args:      cobra.ExactArgs(1),
		ValidArgs: fields.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.action = "Erro ao gerar exemplo"
			f, ok := fields.Lookup(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", analysis.ErrUnknownField, args[0])
			}
			out, err := c.app.Backend.GenerateExample(cmd.Context(), f.AnalysisKind, c.app.Fields.Values().NonEmpty())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func (c *cli) generateCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a full ETP from the draft fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.action = "Erro ao gerar ETP"
			gen, err := c.app.GenerateETP(cmd.Context())
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), gen.Content)
				return nil
			}
			if err := os.WriteFile(out, []byte(gen.Content), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ETP salvo em %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the ETP to this file")
	return cmd
}

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the draft fields for consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.action = "Erro na validação"
			for _, violation := range fields.Validate(c.app.Fields.Values()) {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", violation.Message)
			}
			res, err := c.app.Backend.ValidateConsistency(cmd.Context(), c.app.Fields.Values().NonEmpty())
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), res)
		},
	}
}

func (c *cli) draftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Manage the saved field snapshot",
	}

	var file string
	set := &cobra.Command{
		Use:       "set <field> [value]",
		Short:     "Set one field in the draft",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: fields.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value string
			if len(args) == 2 {
				value = args[1]
			}
			text, err := readInput(value, file)
			if err != nil {
				return err
			}
			if err := c.app.Fields.SetValue(args[0], text); err != nil {
				return err
			}
			return c.app.Drafts.SaveCurrent(cmd.Context(), c.app.Fields.Values())
		},
	}
	set.Flags().StringVar(&file, "file", "", "read the value from a PDF, DOCX or TXT file (- for stdin)")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the saved draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := c.app.Drafts.LoadCurrent(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range fields.All() {
				if v := values[f.Name]; v != "" {
					fmt.Fprintf(out, "## %s\n%s\n\n", f.Label, v)
				}
			}
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Drafts.ClearCurrent(cmd.Context())
		},
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "List required fields that are missing or too short",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := fields.Validate(c.app.Fields.Values())
			for _, violation := range v {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", violation.Message)
			}
			if len(v) > 0 {
				return fmt.Errorf("%d campo(s) pendente(s)", len(v))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Todos os campos estão preenchidos.")
			return nil
		},
	}

	cmd.AddCommand(set, show, clearCmd, check)
	return cmd
}
