package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/symlog/symlog-go/pkg/llm"
)

// Narrator turns a generated response into a short natural-language summary
// using an injected text-generation provider.
//
// The provider is strictly optional. Every call carries its own deadline,
// and any failure or timeout yields empty text rather than an error, so
// insight generation never blocks on or breaks because of the collaborator.
// The prompt is built from a redacted view of the entry: symptom names,
// severity, cause names, and the resolution name only. Free-text notes are
// never forwarded.
type Narrator struct {
	provider llm.Provider
	timeout  time.Duration
}

// NewNarrator creates a narrator over the given provider. A nil provider is
// allowed and produces a narrator that always returns empty text.
func NewNarrator(provider llm.Provider, timeout time.Duration) *Narrator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Narrator{provider: provider, timeout: timeout}
}

// CloseProvider closes the underlying provider, if any.
func (n *Narrator) CloseProvider() error {
	if !n.Enabled() {
		return nil
	}
	return n.provider.Close()
}

// Enabled reports whether a provider is present.
func (n *Narrator) Enabled() bool {
	return n != nil && n.provider != nil
}

// Summarize asks the provider for a one-or-two sentence supportive summary
// of the entry and the generated response. Returns empty text when the
// provider is absent, times out, or fails.
func (n *Narrator) Summarize(ctx context.Context, entry *LogEntry, resp *Response) string {
	if !n.Enabled() || entry == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	text, err := n.provider.GenerateWithMessages(ctx, []llm.Message{
		{Role: "system", Content: "You summarize symptom-tracker insights in one or two supportive, plain sentences. Do not give medical advice."},
		{Role: "user", Content: RedactedSummary(entry, resp)},
	}, llm.WithMaxTokens(120))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// RedactedSummary renders the entry and response as a compact prompt
// containing only names and counts. Safe to send off-device.
func RedactedSummary(entry *LogEntry, resp *Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Logged symptoms: %s (severity %d/5).",
		joinOrNone(entry.Symptoms), entry.Severity)
	if len(entry.Causes) > 0 {
		fmt.Fprintf(&b, " Suspected causes: %s.", strings.Join(entry.Causes, ", "))
	}
	if entry.Resolution != "" {
		fmt.Fprintf(&b, " Treatment taken: %s.", entry.Resolution)
	}
	if resp != nil {
		fmt.Fprintf(&b, " Engine found %d warnings, %d observations, %d suggestions.",
			len(resp.Warnings), len(resp.Observations), len(resp.Suggestions))
	}
	return b.String()
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
