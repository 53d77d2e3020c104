// Package llm drafts first-pass labels for sampled utterances through
// an OpenAI-style chat endpoint. The draft never replaces manual
// review; it only pre-fills the verdict column reviewers correct.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lexfield/kinvoc/pkg/kinvoc/internalerr"
	"github.com/lexfield/kinvoc/pkg/kinvoc/qc"
	"github.com/lexfield/kinvoc/pkg/kinvoc/sample"
)

// Config holds annotator settings. APIKey is required; everything else
// has a default.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

const systemPrompt = "You label child-language transcript utterances. " +
	"Decide whether the kinship term marked with [[...]] is used as a " +
	"vocative (a call or address to that person) or as an argument (a " +
	"referential noun phrase). Answer with exactly one word: vocative, " +
	"argument, or ambiguous."

// Annotator labels sampled utterances one at a time.
type Annotator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// New creates an annotator. An empty API key is ErrInvalidConfig: the
// annotate step stays off unless a key is configured.
func New(cfg Config) (*Annotator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: missing API key: %w", internalerr.ErrInvalidConfig)
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Annotator{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		timeout: timeout,
	}, nil
}

// Model returns the chat model in use.
func (a *Annotator) Model() string { return a.model }

// Annotate labels one record. The reply must normalize to vocative,
// argument, or ambiguous; anything else is an error rather than a
// silently invented verdict.
func (a *Annotator) Annotate(ctx context.Context, rec sample.Record) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt(rec)},
		},
		MaxTokens:   8,
		Temperature: 0,
	}
	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("annotate %s: %w", rec.ID, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("annotate %s: empty response", rec.ID)
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	label := qc.NormalizeLabel(raw)
	if label == "" {
		return "", fmt.Errorf("annotate %s: unrecognized label %q: %w",
			rec.ID, raw, internalerr.ErrInvalidInput)
	}
	return label, nil
}

// Annotation pairs a record ID with its drafted label.
type Annotation struct {
	ID    string
	Label string
}

// AnnotateAll labels records in order, stopping at the first failure
// so a broken endpoint does not burn through the whole sample.
func (a *Annotator) AnnotateAll(ctx context.Context, recs []sample.Record) ([]Annotation, error) {
	out := make([]Annotation, 0, len(recs))
	for _, rec := range recs {
		label, err := a.Annotate(ctx, rec)
		if err != nil {
			return out, err
		}
		out = append(out, Annotation{ID: rec.ID, Label: label})
	}
	return out, nil
}

func prompt(rec sample.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Term: %s\n", rec.Term)
	fmt.Fprintf(&b, "Speaker: %s\n", rec.Speaker)
	fmt.Fprintf(&b, "Utterance: %s\n", rec.Marked)
	return b.String()
}
