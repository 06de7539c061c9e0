package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/etpassistant/internal/chat"
)

func printMessage(w io.Writer, m chat.Message) {
	who := "Você"
	if m.Sender == chat.SenderAssistant {
		who = "Assistente"
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", m.Timestamp.Format("15:04"), who, m.Text)
	if len(m.Sources) > 0 {
		fmt.Fprintf(w, "  Fontes: %s\n", strings.Join(m.Sources, "; "))
	}
}

func (c *cli) askCmd() *cobra.Command {
	var suggest bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the legal assistant about Lei 14.133/2021",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if suggest || len(args) == 0 {
				for _, q := range chat.SuggestedQuestions() {
					fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", q)
				}
				return nil
			}
			msg, err := c.app.RAG.Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printMessage(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().BoolVar(&suggest, "suggest", false, "list suggested questions")
	return cmd
}

func (c *cli) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Talk to the general procurement assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := c.app.Chat.Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printMessage(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func (c *cli) historyCmd() *cobra.Command {
	var kind string
	var wipe bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print or clear an assistant transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var conv *chat.Conversation
			switch kind {
			case "rag":
				conv = c.app.RAG
			case "chat":
				conv = c.app.Chat
			default:
				return fmt.Errorf("unknown --kind %q (rag, chat)", kind)
			}
			if wipe {
				return conv.Clear(cmd.Context())
			}
			for _, m := range conv.Messages() {
				printMessage(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "rag", "rag or chat")
	cmd.Flags().BoolVar(&wipe, "clear", false, "delete the transcript")
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the usage counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.app.Stats.Load(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ETPs criados:       %d\n", s.ETPsCreated)
			fmt.Fprintf(out, "Consultas RAG:      %d\n", s.RAGQueries)
			fmt.Fprintf(out, "Uso do assistente:  %d\n", s.AssistantUsage)
			return nil
		},
	}
}
