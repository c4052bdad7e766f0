package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tmc/langchaingo/llms"

	apperrors "github.com/julianstephens/neurozen/internal/errors"
)

type fakeModel struct {
	reply string
	err   error
	delay time.Duration
	calls int
}

func (m *fakeModel) GenerateContent(ctx context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name    string
		model   *fakeModel
		timeout time.Duration
		want    string
		wantErr bool
	}{
		{name: "trims output", model: &fakeModel{reply: "  A calm, focused day.\n"}, want: "A calm, focused day."},
		{name: "provider error", model: &fakeModel{err: errors.New("502 bad gateway")}, wantErr: true},
		{name: "blank output is malformed", model: &fakeModel{reply: " \n\t"}, wantErr: true},
		{name: "timeout", model: &fakeModel{reply: "late", delay: time.Second}, timeout: 20 * time.Millisecond, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewWithModel(tt.model, tt.timeout)
			got, err := c.Generate(context.Background(), "summarize")
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrGenerationFailed) {
					t.Fatalf("Generate() error = %v, want ErrGenerationFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
			if tt.model.calls != 1 {
				t.Errorf("model called %d times, want 1", tt.model.calls)
			}
		})
	}
}

func TestTimeoutKeepsCause(t *testing.T) {
	c := NewWithModel(&fakeModel{delay: time.Second}, 10*time.Millisecond)
	_, err := c.Generate(context.Background(), "p")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want it to wrap context.DeadlineExceeded", err)
	}
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(Config{})
	if err == nil || !strings.Contains(err.Error(), "API key") {
		t.Errorf("New() error = %v, want missing key error", err)
	}
}

func TestDefaultTimeout(t *testing.T) {
	c := NewWithModel(&fakeModel{}, 0)
	if c.timeout <= 0 {
		t.Errorf("timeout = %v, want default", c.timeout)
	}
}
