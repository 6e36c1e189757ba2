package advisor

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"growdash/internal/analytics"
	"growdash/internal/config"
)

// Providers tagged on the advice so the dashboard can show what produced it.
const (
	ProviderRuleBased = "rule_based"
	ProviderOpenAI    = "openai"
)

// Disclaimer ships with every answer, rule-based or generative.
const Disclaimer = "AI guidance is educational, based on your uploaded historical trades, and not investment advice. " +
	"Always validate with your own risk rules."

var ErrEmptyQuestion = errors.New("question is required")

// Advice is the single answer shape both modes produce; consumers never need
// to know which mode ran.
type Advice struct {
	Provider    string   `json:"provider"`
	Model       *string  `json:"model"`
	Answer      string   `json:"answer"`
	ActionItems []string `json:"action_items"`
	RiskFlags   []string `json:"risk_flags"`
	Disclaimer  string   `json:"disclaimer"`
}

type Advisor struct {
	Config config.AdvisorConfig
	Logger *zap.Logger

	openai *openAIClient
}

func New(cfg config.AdvisorConfig, logger *zap.Logger) *Advisor {
	a := &Advisor{Config: cfg, Logger: logger}
	if cfg.OpenAIAPIKey != "" {
		a.openai = &openAIClient{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			HTTP:    &http.Client{Timeout: cfg.Timeout},
		}
	}
	return a
}

// Answer maps a question plus the current snapshot to structured advice.
// The rule battery always runs; when an OpenAI backend is configured its
// text replaces the templated answer, and any backend failure degrades back
// to the rule-based result instead of surfacing.
func (a *Advisor) Answer(ctx context.Context, question string, snapshot analytics.Snapshot) (Advice, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Advice{}, ErrEmptyQuestion
	}

	guidance := buildRuleGuidance(question, snapshot, a.Config.DrawdownFraction)
	advice := Advice{
		Provider:    ProviderRuleBased,
		Answer:      guidance.Answer,
		ActionItems: guidance.ActionItems,
		RiskFlags:   guidance.RiskFlags,
		Disclaimer:  Disclaimer,
	}

	if a.openai == nil {
		return advice, nil
	}

	text, err := a.openai.Answer(ctx, question, snapshot, guidance)
	if err != nil {
		if a.Logger != nil {
			a.Logger.Warn("generative advisor unavailable, using rule-based answer", zap.Error(err))
		}
		return advice, nil
	}

	advice.Provider = ProviderOpenAI
	model := a.Config.OpenAIModel
	advice.Model = &model
	advice.Answer = text
	return advice, nil
}
