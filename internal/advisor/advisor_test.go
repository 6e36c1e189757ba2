package advisor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"growdash/internal/analytics"
	"growdash/internal/config"
)

func healthySnapshot() analytics.Snapshot {
	ratio := 1.5
	return analytics.Snapshot{
		Summary: analytics.Summary{
			TotalProfitLoss: 1200,
			WinRate:         58,
			AverageProfit:   90,
			AverageLoss:     60,
			RiskRewardRatio: &ratio,
			MaxDrawdown:     150,
		},
		CEvsPE: []analytics.OptionTypePnL{
			{OptionType: "CE", PnL: 900},
			{OptionType: "PE", PnL: 300},
		},
		HoldingTime: analytics.HoldingTime{AverageMinutes: 25, MedianMinutes: 20, HasData: true},
		TradeStats:  analytics.TradeStats{TotalTrades: 60, ClosedLots: 30},
	}
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	a := New(config.AdvisorConfig{}, nil)
	if _, err := a.Answer(context.Background(), "   ", healthySnapshot()); err != ErrEmptyQuestion {
		t.Fatalf("err=%v want ErrEmptyQuestion", err)
	}
}

func TestAnswer_RuleBasedWithoutBackend(t *testing.T) {
	a := New(config.AdvisorConfig{}, nil)
	advice, err := a.Answer(context.Background(), "How am I doing?", healthySnapshot())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if advice.Provider != ProviderRuleBased {
		t.Fatalf("provider=%q want %q", advice.Provider, ProviderRuleBased)
	}
	if advice.Model != nil {
		t.Fatalf("model=%v want nil for rule-based answers", *advice.Model)
	}
	if advice.Answer == "" {
		t.Fatalf("answer must not be empty")
	}
	if advice.Disclaimer != Disclaimer {
		t.Fatalf("disclaimer missing")
	}
	if len(advice.ActionItems) == 0 {
		t.Fatalf("at least the default action item is expected")
	}
	if len(advice.RiskFlags) != 0 {
		t.Fatalf("healthy snapshot flagged: %v", advice.RiskFlags)
	}
}

func TestBuildRuleGuidance_ThresholdFlags(t *testing.T) {
	ratio := 0.8
	snapshot := analytics.Snapshot{
		Summary: analytics.Summary{
			TotalProfitLoss: 100,
			WinRate:         30,
			AverageProfit:   40,
			AverageLoss:     50,
			RiskRewardRatio: &ratio,
			MaxDrawdown:     400,
		},
		TradeStats: analytics.TradeStats{TotalTrades: 10, ClosedLots: 10},
	}

	guidance := buildRuleGuidance("what should I fix?", snapshot, 0.6)
	wantFlags := []string{
		"Win rate below",
		"Average loss is larger",
		"Risk-reward ratio is below 1",
		"Drawdown is too high",
	}
	for _, want := range wantFlags {
		found := false
		for _, flag := range guidance.RiskFlags {
			if strings.Contains(flag, want) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("flag %q missing from %v", want, guidance.RiskFlags)
		}
	}
	if len(guidance.ActionItems) > maxListedItems {
		t.Fatalf("actions=%d exceed cap %d", len(guidance.ActionItems), maxListedItems)
	}
}

func TestBuildRuleGuidance_NoWinRateFlagWithoutClosedLots(t *testing.T) {
	snapshot := analytics.Snapshot{
		TradeStats: analytics.TradeStats{TotalTrades: 3, ClosedLots: 0},
	}
	guidance := buildRuleGuidance("thoughts?", snapshot, 0.6)
	for _, flag := range guidance.RiskFlags {
		if strings.Contains(flag, "Win rate") {
			t.Fatalf("win rate flagged with zero closed lots: %v", guidance.RiskFlags)
		}
	}
}

func TestFocusText_KeywordSelection(t *testing.T) {
	snapshot := healthySnapshot()
	if got := focusText("how bad is my drawdown?", snapshot); !strings.Contains(got, "drawdown") {
		t.Fatalf("drawdown question got %q", got)
	}
	if got := focusText("should I trade CE or PE?", snapshot); !strings.Contains(got, "CE/PE") {
		t.Fatalf("option question got %q", got)
	}
	// "ce" must match as a word, not inside another one.
	if got := focusText("how do I improve my process", snapshot); strings.Contains(got, "CE/PE") {
		t.Fatalf("'process' misread as a CE question: %q", got)
	}
}

func TestAnswer_GenerativeOverlay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("path=%q want /v1/responses", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("auth=%q", auth)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"output_text":"Trim position size on losing streaks."}`))
	}))
	defer server.Close()

	a := New(config.AdvisorConfig{
		OpenAIAPIKey: "test-key",
		OpenAIModel:  "gpt-4o-mini",
		BaseURL:      server.URL,
		Timeout:      5 * time.Second,
	}, nil)

	advice, err := a.Answer(context.Background(), "what next?", healthySnapshot())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if advice.Provider != ProviderOpenAI {
		t.Fatalf("provider=%q want %q", advice.Provider, ProviderOpenAI)
	}
	if advice.Model == nil || *advice.Model != "gpt-4o-mini" {
		t.Fatalf("model=%v want gpt-4o-mini", advice.Model)
	}
	if advice.Answer != "Trim position size on losing streaks." {
		t.Fatalf("answer=%q", advice.Answer)
	}
	if len(advice.ActionItems) == 0 || advice.Disclaimer != Disclaimer {
		t.Fatalf("rule-derived fields must survive the overlay")
	}
}

func TestAnswer_BackendFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	a := New(config.AdvisorConfig{
		OpenAIAPIKey: "test-key",
		OpenAIModel:  "gpt-4o-mini",
		BaseURL:      server.URL,
		Timeout:      5 * time.Second,
	}, nil)

	advice, err := a.Answer(context.Background(), "what next?", healthySnapshot())
	if err != nil {
		t.Fatalf("fallback must not surface the backend error, got %v", err)
	}
	if advice.Provider != ProviderRuleBased {
		t.Fatalf("provider=%q want rule_based fallback", advice.Provider)
	}
	if advice.Answer == "" {
		t.Fatalf("fallback answer must not be empty")
	}
}
