package llm

import "github.com/nikhilbhutani/etpassistant/pkg/tokenizer"

// SystemPrompt frames every direct chat as the procurement assistant.
const SystemPrompt = "Você é um especialista em elaboração de documentos técnicos para contratações governamentais, " +
	"especialmente Estudos Técnicos Preliminares (ETP). Seu objetivo é criar documentos claros, " +
	"objetivos e em conformidade com a legislação brasileira, em especial a Lei 14.133/2021."

// WithSystem prepends the system prompt unless msgs already carry one.
func WithSystem(msgs []Message) []Message {
	if len(msgs) > 0 && msgs[0].Role == "system" {
		return msgs
	}
	return append([]Message{{Role: "system", Content: SystemPrompt}}, msgs...)
}

// DefaultHistoryBudget is the token allowance for prior turns in a direct
// chat.
const DefaultHistoryBudget = 2000

// FitHistory keeps the newest messages of history whose estimated size fits
// in budget, oldest first. It reports whether anything was dropped.
func FitHistory(history []Message, budget int) ([]Message, bool) {
	used := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		n := tokenizer.CountTokens(history[i].Content)
		if used+n > budget {
			break
		}
		used += n
		start = i
	}
	return history[start:], start > 0
}
