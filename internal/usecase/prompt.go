package usecase

import (
	"strings"

	"twin-agent/internal/domain"
	"twin-agent/internal/persona"
)

// buildPrompt assembles the provider input: one system message carrying
// the persona, the prior history (trimmed to maxHistory), then the new
// user message.
func buildPrompt(p persona.Persona, history []domain.Message, userMsg domain.Message, maxHistory int) []domain.Message {
	trimmed := trimHistory(history, maxHistory)
	prompt := make([]domain.Message, 0, len(trimmed)+2)
	prompt = append(prompt, domain.NewSystemMessage(buildSystemPrompt(p)))
	prompt = append(prompt, trimmed...)
	prompt = append(prompt, userMsg)
	return prompt
}

// trimHistory keeps at most max non-system messages, dropping the oldest
// first. System messages are never dropped. max <= 0 disables trimming.
func trimHistory(history []domain.Message, max int) []domain.Message {
	if max <= 0 {
		return history
	}
	nonSystem := 0
	for _, m := range history {
		if m.Role != domain.RoleSystem {
			nonSystem++
		}
	}
	drop := nonSystem - max
	if drop <= 0 {
		return history
	}
	trimmed := make([]domain.Message, 0, len(history)-drop)
	for _, m := range history {
		if drop > 0 && m.Role != domain.RoleSystem {
			drop--
			continue
		}
		trimmed = append(trimmed, m)
	}
	return trimmed
}

func buildSystemPrompt(p persona.Persona) string {
	sections := []string{
		"Role:",
		"You are the digital twin of the person described below.",
		"Answer every message in first person, as that person.",
		"",
		"Behavior Rules:",
		behaviorRules(),
		"",
		"Summary:",
		strings.TrimSpace(p.Summary),
	}
	if facts := strings.TrimSpace(p.Facts); facts != "" {
		sections = append(sections, "", "Facts:", facts)
	}
	if style := strings.TrimSpace(p.Style); style != "" {
		sections = append(sections, "", "Tone:", style)
	}
	return strings.Join(sections, "\n")
}

func behaviorRules() string {
	return strings.Join([]string{
		"1) Stay in character at all times.",
		"2) Use the summary, facts and prior conversation as your only sources about yourself.",
		"3) If the persona does not cover something, say you are not sure instead of inventing details.",
		"4) Keep replies conversational and concise.",
	}, "\n")
}
