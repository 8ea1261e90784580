package generation_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/JaimeStill/pitchcraft/internal/generation"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRender(t *testing.T) {
	got := generation.Render("Escreva.", map[string]string{
		generation.KeyStage:       "benefits",
		generation.KeyGoals:       "crescer",
		generation.KeyCompanyName: "Acme",
		generation.KeyIndustry:    "  ",
	})
	want := "Escreva.\n\nContexto:\n- company_name: Acme\n- goals: crescer"
	if got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}

	if got := generation.Render("Só prompt", nil); got != "Só prompt" {
		t.Errorf("Render(nil) = %q", got)
	}
}

func TestDemo(t *testing.T) {
	g := generation.NewDemo()
	ctx := context.Background()

	out, err := g.Generate(ctx, "", map[string]string{
		generation.KeyStage:       "introduction",
		generation.KeyCompanyName: "Acme",
		generation.KeyIndustry:    "varejo",
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if !strings.Contains(out, "Acme") || !strings.Contains(out, "varejo") {
		t.Errorf("introduction = %q", out)
	}

	again, _ := g.Generate(ctx, "", map[string]string{
		generation.KeyStage:       "introduction",
		generation.KeyCompanyName: "Acme",
		generation.KeyIndustry:    "varejo",
	})
	if again != out {
		t.Error("demo output should be deterministic")
	}

	raw, err := g.Generate(ctx, "", map[string]string{
		generation.KeyStage:     "rebuttal",
		generation.KeyPainPoint: "Custos altos de frete.",
	})
	if err != nil {
		t.Fatalf("rebuttal error: %v", err)
	}
	var parsed struct {
		Objection  string  `json:"objection"`
		Rebuttal   string  `json:"rebuttal"`
		Confidence float64 `json:"confidence_score"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		t.Fatalf("rebuttal is not JSON: %v", err)
	}
	if !strings.Contains(parsed.Objection, "custos altos de frete") || parsed.Rebuttal == "" {
		t.Errorf("rebuttal = %+v", parsed)
	}
	if parsed.Confidence <= 0 || parsed.Confidence > 1 {
		t.Errorf("confidence_score = %v, want (0, 1]", parsed.Confidence)
	}

	if _, err := g.Generate(ctx, "", map[string]string{generation.KeyStage: "unknown"}); !errors.Is(err, generation.ErrGeneration) {
		t.Errorf("unknown stage err = %v, want ErrGeneration", err)
	}
}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		failures  int32
		max       int
		wantCalls int32
		wantErr   bool
	}{
		{name: "succeeds first try", failures: 0, max: 2, wantCalls: 1},
		{name: "recovers after retries", failures: 2, max: 2, wantCalls: 3},
		{name: "gives up", failures: 5, max: 2, wantCalls: 3, wantErr: true},
		{name: "retries disabled", failures: 1, max: 0, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			base := generation.Func(func(context.Context, string, map[string]string) (string, error) {
				if calls.Add(1) <= tt.failures {
					return "", generation.ErrGeneration
				}
				return "ok", nil
			})

			g := generation.WithRetry(base, tt.max, time.Millisecond, discard())
			out, err := g.Generate(context.Background(), "p", nil)

			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && out != "ok" {
				t.Errorf("out = %q", out)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
		})
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	base := generation.Func(func(context.Context, string, map[string]string) (string, error) {
		calls.Add(1)
		cancel()
		return "", generation.ErrGeneration
	})

	g := generation.WithRetry(base, 5, time.Millisecond, discard())
	if _, err := g.Generate(ctx, "p", nil); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 after cancellation", calls.Load())
	}
}

func TestWithTimeout(t *testing.T) {
	base := generation.Func(func(ctx context.Context, _ string, _ map[string]string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	g := generation.WithTimeout(base, 10*time.Millisecond)
	_, err := g.Generate(context.Background(), "p", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
}

func TestWithRateLimit(t *testing.T) {
	base := generation.Func(func(context.Context, string, map[string]string) (string, error) {
		return "ok", nil
	})

	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	g := generation.WithRateLimit(base, limiter)

	if _, err := g.Generate(context.Background(), "p", nil); err != nil {
		t.Fatalf("first call should use the burst token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := g.Generate(ctx, "p", nil); !errors.Is(err, generation.ErrGeneration) {
		t.Errorf("second call err = %v, want ErrGeneration", err)
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg generation.Config
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("Finalize error: %v", err)
		}
		if cfg.Provider != generation.ProviderDemo || cfg.Retries() != 2 || cfg.MaxConcurrency != 6 {
			t.Errorf("unexpected defaults: %+v", cfg)
		}
		if cfg.RetryBackoffDuration() != 250*time.Millisecond {
			t.Errorf("backoff = %v", cfg.RetryBackoffDuration())
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_GEN_PROVIDER", "agent")
		t.Setenv("TEST_GEN_RATE", "2.5")

		cfg := generation.Config{}
		err := cfg.Finalize(&generation.Env{Provider: "TEST_GEN_PROVIDER", RateLimit: "TEST_GEN_RATE"})
		if err != nil {
			t.Fatalf("Finalize error: %v", err)
		}
		if cfg.Provider != generation.ProviderAgent || cfg.RateLimit != 2.5 {
			t.Errorf("env not applied: %+v", cfg)
		}
	})

	t.Run("zero retries kept", func(t *testing.T) {
		zero := 0
		cfg := generation.Config{MaxRetries: &zero}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("Finalize error: %v", err)
		}
		if cfg.Retries() != 0 {
			t.Errorf("Retries() = %d, want 0", cfg.Retries())
		}

		base := generation.Config{}
		base.Merge(&cfg)
		if base.Retries() != 0 {
			t.Errorf("merged Retries() = %d, want 0", base.Retries())
		}
	})

	t.Run("zero retries from env", func(t *testing.T) {
		t.Setenv("TEST_GEN_RETRIES", "0")
		cfg := generation.Config{}
		if err := cfg.Finalize(&generation.Env{MaxRetries: "TEST_GEN_RETRIES"}); err != nil {
			t.Fatalf("Finalize error: %v", err)
		}
		if cfg.Retries() != 0 {
			t.Errorf("Retries() = %d, want 0", cfg.Retries())
		}
	})

	t.Run("invalid provider", func(t *testing.T) {
		cfg := generation.Config{Provider: "openai-direct"}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("merge", func(t *testing.T) {
		base := generation.Config{Provider: "demo", CallTimeout: "10s"}
		base.Merge(&generation.Config{CallTimeout: "30s", Burst: 3})
		if base.Provider != "demo" || base.CallTimeout != "30s" || base.Burst != 3 {
			t.Errorf("merge result: %+v", base)
		}
	})
}
