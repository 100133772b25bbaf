package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsLabeler/internal/cost"
	"NewsLabeler/internal/domain"
	"NewsLabeler/internal/infrastructure/llm"
	"NewsLabeler/internal/ports"
)

// fakeCompleter scripts responses keyed by the requested model. A nil entry
// means the call errors.
type fakeCompleter struct {
	responses map[string][]response
	calls     []ports.CompletionRequest
}

type response struct {
	text string
	err  error
}

func (f *fakeCompleter) Complete(_ context.Context, req ports.CompletionRequest) (ports.CompletionResult, error) {
	f.calls = append(f.calls, req)

	queue := f.responses[req.Model]
	if len(queue) == 0 {
		return ports.CompletionResult{}, errors.New("no scripted response")
	}
	next := queue[0]
	f.responses[req.Model] = queue[1:]

	if next.err != nil {
		return ports.CompletionResult{}, next.err
	}
	return ports.CompletionResult{
		Text:         next.text,
		ModelUsed:    req.Model,
		InputTokens:  1000,
		OutputTokens: 100,
	}, nil
}

func (f *fakeCompleter) Probe(context.Context) error { return nil }

func testPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       attempts,
		InitialDelay:      time.Millisecond,
		Multiplier:        2,
		RateLimitCooldown: time.Millisecond,
	}
}

func newTestClient(fake *fakeCompleter, attempts int) *Client {
	return NewClient(
		Deps{
			Completer: fake,
			Pricing:   cost.NewTable(nil, "primary", "fallback"),
			Policy:    testPolicy(attempts),
		},
		Options{
			Model:           "primary",
			FallbackModel:   "fallback",
			Temperature:     0.1,
			ConfidenceFloor: 0.7,
			Pacing:          time.Millisecond,
		},
	)
}

func record(index int) domain.Record {
	return domain.Record{
		Index:       index,
		Title:       "Ô nhiễm môi trường",
		Description: "Mô tả",
		Content:     "Nội dung",
	}
}

func TestClassifySuccess(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{responses: map[string][]response{
		"primary": {{text: `[{"label":"Môi trường","confidence":0.9}]`}},
	}}
	c := newTestClient(fake, 3)

	out := c.Classify(context.Background(), record(7), false)
	require.True(t, out.Success)
	assert.Equal(t, 7, out.Index)
	assert.Equal(t, "primary", out.ModelUsed)
	require.Len(t, out.Labels, 1)
	assert.Equal(t, "Môi trường", out.Labels[0].Label)
	assert.InDelta(t, 0.9, out.Labels[0].Confidence, 1e-9)
	assert.InDelta(t, 0.000165, out.Cost, 1e-9)
	assert.Empty(t, out.QualityIssues)
	assert.False(t, out.UsedFallback)
}

func TestClassifyRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{responses: map[string][]response{
		"primary": {
			{err: llm.ErrTransient},
			{err: llm.ErrRateLimited},
			{text: `[{"label":"Đất đai","confidence":0.85}]`},
		},
	}}
	c := newTestClient(fake, 3)

	out := c.Classify(context.Background(), record(0), false)
	require.True(t, out.Success)
	assert.Len(t, fake.calls, 3)
}

func TestClassifyExhaustsAttempts(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{responses: map[string][]response{
		"primary": {
			{err: llm.ErrTransient},
			{err: llm.ErrTransient},
			{err: llm.ErrTransient},
		},
	}}
	c := newTestClient(fake, 3)

	out := c.Classify(context.Background(), record(0), false)
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Error)
	assert.Len(t, fake.calls, 3)
}

func TestClassifyParseFailureKeepsCostAndRawText(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{responses: map[string][]response{
		"primary": {{text: "Tôi không thể phân loại bài báo này."}},
	}}
	c := newTestClient(fake, 3)

	out := c.Classify(context.Background(), record(0), false)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "invalid response format")
	assert.Equal(t, "Tôi không thể phân loại bài báo này.", out.RawResponse)
	assert.Greater(t, out.Cost, 0.0)
	// Parse failures are terminal for the attempt, not retried.
	assert.Len(t, fake.calls, 1)
}

func TestClassifyBatchFallbackEscalation(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{responses: map[string][]response{
		"primary":  {{err: llm.ErrTransient}},
		"fallback": {{text: `[{"label":"Tài nguyên nước","confidence":0.8}]`}},
	}}
	c := newTestClient(fake, 1)

	outcomes := c.ClassifyBatch(context.Background(), []domain.Record{record(3)})
	require.Len(t, outcomes, 1)
	out := outcomes[0]
	require.True(t, out.Success)
	assert.True(t, out.UsedFallback)
	assert.Equal(t, "fallback", out.ModelUsed)
	require.Len(t, fake.calls, 2)
	assert.Equal(t, "primary", fake.calls[0].Model)
	assert.Equal(t, "fallback", fake.calls[1].Model)
}

func TestClassifyBatchKeepsPrimaryOutcomeOnDoubleFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{responses: map[string][]response{
		"primary":  {{err: errors.New("primary exploded")}},
		"fallback": {{err: errors.New("fallback exploded")}},
	}}
	c := newTestClient(fake, 1)

	outcomes := c.ClassifyBatch(context.Background(), []domain.Record{record(5)})
	require.Len(t, outcomes, 1)
	out := outcomes[0]
	assert.False(t, out.Success)
	assert.False(t, out.UsedFallback)
	assert.Equal(t, "primary", out.ModelUsed)
	assert.Contains(t, out.Error, "primary exploded")
}

func TestClassifyBatchSequentialOutcomes(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{responses: map[string][]response{
		"primary": {
			{text: `[{"label":"Môi trường","confidence":0.9}]`},
			{text: `[{"label":"Đất đai","confidence":0.8}]`},
		},
	}}
	c := newTestClient(fake, 3)

	outcomes := c.ClassifyBatch(context.Background(), []domain.Record{record(0), record(1)})
	require.Len(t, outcomes, 2)
	assert.Equal(t, 0, outcomes[0].Index)
	assert.Equal(t, 1, outcomes[1].Index)
	assert.True(t, outcomes[0].Success)
	assert.True(t, outcomes[1].Success)
}

func TestRetryPolicyStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := RetryPolicy{MaxAttempts: 3, InitialDelay: time.Hour, Multiplier: 2}
	err := p.Do(ctx, nil, func() error { return llm.ErrTransient })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultRetryPolicy(t *testing.T) {
	t.Parallel()

	p := DefaultRetryPolicy()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, time.Second, p.InitialDelay)
	assert.Equal(t, 60*time.Second, p.RateLimitCooldown)
}
