package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nikhilbhutani/etpassistant/internal/backend"
	"github.com/nikhilbhutani/etpassistant/internal/document"
	"github.com/nikhilbhutani/etpassistant/internal/drafts"
	"github.com/nikhilbhutani/etpassistant/internal/export"
	"github.com/nikhilbhutani/etpassistant/internal/notice"
)

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func readForm(path string) (document.Form, error) {
	var f document.Form
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

func (c *cli) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the backend provider settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the backend settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.action = "Erro ao carregar configurações"
			s, err := c.app.Backend.Settings(cmd.Context())
			if err != nil {
				return err
			}
			s.OpenAIAPIKey = mask(s.OpenAIAPIKey)
			s.AnthropicAPIKey = mask(s.AnthropicAPIKey)
			return printYAML(cmd.OutOrStdout(), s)
		},
	}

	var file string
	var testOnly bool
	apply := &cobra.Command{
		Use:   "apply",
		Short: "Send settings from a YAML file to the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := backend.DefaultSettings()
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			if err := yaml.Unmarshal(data, &s); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			c.action = "Erro ao testar conexão"
			res, err := c.app.Backend.TestConnection(cmd.Context(), s)
			if err != nil {
				return err
			}
			if err := printYAML(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if testOnly {
				return nil
			}

			c.action = "Erro ao salvar configurações"
			msg, err := c.app.Backend.SaveSettings(cmd.Context(), s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), notice.Success(msg).Message)
			return nil
		},
	}
	apply.Flags().StringVarP(&file, "file", "f", "settings.yaml", "settings file")
	apply.Flags().BoolVar(&testOnly, "test", false, "only test the connection")

	var provider, key string
	ai := &cobra.Command{
		Use:   "ai",
		Short: "Configure the backend's language model provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.action = "Erro ao configurar IA"
			msg, err := c.app.Backend.ConfigureAI(cmd.Context(), provider, key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	ai.Flags().StringVar(&provider, "provider", "openai", "openai or anthropic")
	ai.Flags().StringVar(&key, "api-key", "", "provider API key")

	var paths []string
	rag := &cobra.Command{
		Use:   "rag",
		Short: "Index documents for the legal assistant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.action = "Erro ao configurar RAG"
			n, err := c.app.Backend.ConfigureRAG(cmd.Context(), paths, provider)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d documentos indexados\n", n)
			return nil
		},
	}
	rag.Flags().StringSliceVar(&paths, "pdf", nil, "PDF paths on the backend host (default: bundled law texts)")
	rag.Flags().StringVar(&provider, "provider", "openai", "embedding provider")

	sections := &cobra.Command{
		Use:   "sections",
		Short: "Show the critical fields and the section mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			critical, err := c.app.Backend.CriticalFields(cmd.Context())
			if err != nil {
				return err
			}
			mapping, total, err := c.app.Backend.SectionMap(cmd.Context())
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), map[string]any{
				"campos":       critical,
				"mapeamento":   mapping,
				"total_secoes": total,
			})
		},
	}

	cmd.AddCommand(show, apply, ai, rag, sections)
	return cmd
}

func mask(key string) string {
	if len(key) <= 8 {
		if key == "" {
			return ""
		}
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

func (c *cli) docsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage documents saved from the editor",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved documents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := c.app.Drafts.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range docs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", d.ID, d.CreatedAt.Format("02/01/2006 15:04"), d.Title)
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.app.Drafts.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.Content)
			return nil
		},
	}

	var title, file string
	save := &cobra.Command{
		Use:   "save",
		Short: "Save a document (the blank template when no file is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content := drafts.Template()
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read %s: %w", file, err)
				}
				content = string(data)
			}
			d, err := c.app.Drafts.Save(cmd.Context(), title, content)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.ID)
			return nil
		},
	}
	save.Flags().StringVar(&title, "title", "", "document title")
	save.Flags().StringVar(&file, "file", "", "HTML file with the document body")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Drafts.Delete(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(list, show, save, del)
	return cmd
}

func (c *cli) formCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "form",
		Short: "Manage the generator form",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored form as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.app.Drafts.LoadForm(cmd.Context())
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), f)
		},
	}

	set := &cobra.Command{
		Use:   "set <form.yaml>",
		Short: "Store a form read from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readForm(args[0])
			if err != nil {
				return err
			}
			return c.app.Drafts.SaveForm(cmd.Context(), f)
		},
	}

	preview := &cobra.Command{
		Use:   "preview",
		Short: "Print the stored form as the assembled document text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.app.Drafts.LoadForm(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), document.Assemble(f, c.app.Now()).Text())
			return nil
		},
	}

	options := &cobra.Command{
		Use:   "options",
		Short: "List modality, criterion and documentation codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printYAML(cmd.OutOrStdout(), map[string]any{
				"modalidades":            document.Modalities(),
				"criterios":              document.Criteria(),
				"documentacaoNecessaria": document.DocumentationOptions(),
			})
		},
	}

	cmd.AddCommand(show, set, preview, options)
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var formPath, outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the generator form as a PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.action = "Erro ao gerar PDF"
			ctx := cmd.Context()

			var art *export.Artifact
			var err error
			if formPath != "" {
				f, ferr := readForm(formPath)
				if ferr != nil {
					return ferr
				}
				art, err = c.app.Export(ctx, f)
			} else {
				art, err = c.app.ExportForm(ctx)
			}
			if err != nil {
				return err
			}

			path, err := export.DirSink{Dir: outDir}.Put(ctx, art.FileName, art.Data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d páginas)\n", path, art.Pages)
			if art.Location != "" && art.Location != path {
				fmt.Fprintf(out, "enviado para %s\n", art.Location)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&formPath, "form", "", "YAML form file (default: the stored form)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for the PDF")
	_ = cmd.MarkFlagFilename("form", "yaml", "yml")
	_ = cmd.MarkFlagDirname("out")
	return cmd
}
