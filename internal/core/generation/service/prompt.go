package generationapp

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindQuote Kind = "quote"
	KindReply Kind = "reply"
)

const maxPostLength = 280

// buildPrompt asks for a single post reacting to target.
func buildPrompt(kind Kind, target string) string {
	var b strings.Builder
	switch kind {
	case KindReply:
		b.WriteString("Write a reply to the following post on X.\n")
	default:
		b.WriteString("Write a quote post commenting on the following post on X.\n")
	}
	b.WriteString("Sound like a real person: plain language, at most two emoji, no hashtags, no exclamation chains.\n")
	fmt.Fprintf(&b, "Keep it under %d characters. Answer with the post text only.\n\n", maxPostLength-40)
	b.WriteString("Post:\n\"\"\"\n")
	b.WriteString(strings.TrimSpace(target))
	b.WriteString("\n\"\"\"\n")
	return b.String()
}

// cleanCompletion strips wrapping quotes and whitespace models tend to add.
func cleanCompletion(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range [][2]string{{`"`, `"`}, {"“", "”"}} {
		if len(s) > len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			s = strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
		}
	}
	return s
}
