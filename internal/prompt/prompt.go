// Package prompt assembles the conversation sent to the model and cleans up
// the text that comes back.
package prompt

import (
	"regexp"
	"strings"
)

// Role tags a message for the model.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one role-tagged entry of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered message list; order is significant to the model.
type Conversation []Message

// Directive is the closing instruction of every conversation.
const Directive = "Generate a conventional commit message based on the changes above:"

// Build assembles, in order: the system prompt, the optional context, the
// status block, the diff block when the diff is not blank, and Directive.
func Build(systemPrompt, status, diff, context string) Conversation {
	conv := Conversation{{Role: RoleSystem, Content: systemPrompt}}

	if strings.TrimSpace(context) != "" {
		conv = append(conv, Message{Role: RoleUser, Content: "Context: " + context + "\n\n"})
	}

	conv = append(conv, Message{
		Role:    RoleUser,
		Content: "`git status`:\n```\n" + strings.TrimSpace(status) + "\n```\n\n",
	})

	if d := strings.TrimSpace(diff); d != "" {
		conv = append(conv, Message{
			Role:    RoleUser,
			Content: "`git diff --staged`:\n```diff\n" + d + "\n```\n\n",
		})
	}

	return append(conv, Message{Role: RoleUser, Content: Directive})
}

// System returns the concatenated system messages, for providers that take
// the system prompt out of band.
func (c Conversation) System() string {
	var parts []string
	for _, m := range c {
		if m.Role == RoleSystem {
			parts = append(parts, m.Content)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// Turns returns the non-system messages in order.
func (c Conversation) Turns() []Message {
	out := make([]Message, 0, len(c))
	for _, m := range c {
		if m.Role != RoleSystem {
			out = append(out, m)
		}
	}
	return out
}

var reFenced = regexp.MustCompile("(?s)^```[\\w-]*[ \\t]*\\n(.*?)\\n?```$")

// Normalize trims the model output and unwraps it when the whole answer is a
// single fenced code block.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if m := reFenced.FindStringSubmatch(s); len(m) == 2 {
		return strings.TrimSpace(m[1])
	}
	return s
}
