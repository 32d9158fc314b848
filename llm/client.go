package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/randalmurphal/llmkit/model"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"

	"github.com/randalmurphal/issueflow/patch"
	"github.com/randalmurphal/issueflow/plan"
	"github.com/randalmurphal/issueflow/prompt"
	"github.com/randalmurphal/issueflow/task"
)

// Default generation parameters.
const (
	DefaultModel       = "claude-3-5-sonnet-20240620"
	DefaultMaxTokens   = 4096
	DefaultTemperature = 0.2
)

// Client generates plans and diffs with a langchaingo model.
// It implements plan.Generator and patch.Generator.
type Client struct {
	model       llms.Model
	prompts     *prompt.Loader
	tiers       map[model.Tier]string
	maxTokens   int
	temperature float64
	logger      *slog.Logger
	limits      Limits
}

// Option configures a Client.
type Option func(*Client)

// WithTierModel sets the model id used for calls in the given tier.
func WithTierModel(tier model.Tier, modelID string) Option {
	return func(c *Client) {
		if modelID != "" {
			c.tiers[tier] = modelID
		}
	}
}

// WithPrompts sets the prompt loader. Defaults to the embedded prompts.
func WithPrompts(l *prompt.Loader) Option {
	return func(c *Client) {
		if l != nil {
			c.prompts = l
		}
	}
}

// WithMaxTokens sets the maximum response length.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLimits sets the file context limits for diff prompts.
func WithLimits(l Limits) Option {
	return func(c *Client) { c.limits = l }
}

// New creates a client over an existing langchaingo model.
func New(m llms.Model, opts ...Option) *Client {
	c := &Client{
		model:   m,
		prompts: prompt.NewLoader(""),
		tiers: map[model.Tier]string{
			model.TierThinking: DefaultModel,
			model.TierDefault:  DefaultModel,
			model.TierFast:     DefaultModel,
		},
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
		logger:      slog.Default(),
		limits:      DefaultLimits(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewAnthropic creates a client backed by the Anthropic API.
func NewAnthropic(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	m, err := anthropic.New(
		anthropic.WithToken(apiKey),
		anthropic.WithModel(DefaultModel),
	)
	if err != nil {
		return nil, fmt.Errorf("create anthropic model: %w", err)
	}
	return New(m, opts...), nil
}

// ModelFor returns the model id used for a task type.
func (c *Client) ModelFor(t task.Type) string {
	if id, ok := c.tiers[task.TierForTask(t)]; ok {
		return id
	}
	return DefaultModel
}

// GeneratePlan asks the model for an implementation plan.
func (c *Client) GeneratePlan(ctx context.Context, req plan.Request) (*plan.Plan, error) {
	system, err := c.prompts.Load(prompt.PlanSystem)
	if err != nil {
		return nil, err
	}
	user, err := c.prompts.LoadWithVars(prompt.PlanUser, map[string]any{
		"Number":      req.Number,
		"Title":       req.Title,
		"Body":        req.Body,
		"RepoContext": req.RepoContext,
	})
	if err != nil {
		return nil, err
	}

	text, err := c.complete(ctx, task.Plan, system, user)
	if err != nil {
		return nil, err
	}
	return plan.Parse(text)
}

// GenerateDiff asks the model for a unified diff implementing the plan.
// The raw answer is returned; callers strip fences.
func (c *Client) GenerateDiff(ctx context.Context, req patch.Request) (string, error) {
	if req.Plan == nil {
		return "", ErrNoPlan
	}

	fb := NewFileContext().WithLimits(c.limits)
	for path, content := range req.Files {
		fb.Add(path, []byte(content))
	}
	files, err := fb.Build()
	if err != nil {
		return "", err
	}

	system, err := c.prompts.Load(prompt.ExecuteSystem)
	if err != nil {
		return "", err
	}
	user, err := c.prompts.LoadWithVars(prompt.ExecuteUser, map[string]any{
		"Plan":  req.Plan.Markdown(),
		"Files": files,
	})
	if err != nil {
		return "", err
	}

	return c.complete(ctx, task.Patch, system, user)
}

func (c *Client) complete(ctx context.Context, t task.Type, system, user string) (string, error) {
	modelID := c.ModelFor(t)
	c.logger.Debug("llm request",
		slog.String("task", string(t)),
		slog.String("model", modelID),
		slog.Int("prompt_chars", len(system)+len(user)))

	resp, err := c.model.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, system),
			llms.TextParts(llms.ChatMessageTypeHuman, user),
		},
		llms.WithModel(modelID),
		llms.WithMaxTokens(c.maxTokens),
		llms.WithTemperature(c.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("%s request: %w", t, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
