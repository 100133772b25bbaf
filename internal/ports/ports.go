package ports

import (
	"context"

	"NewsLabeler/internal/domain"
)

// Message is one ordered role/content turn of a structured prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Roles used in completion requests.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// CompletionRequest describes one call to the completion service.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

// CompletionResult carries the returned text plus service-reported usage,
// which is the authoritative source for billed cost.
type CompletionResult struct {
	Text         string
	ModelUsed    string
	InputTokens  int
	OutputTokens int
}

// Completer is the external completion service.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
	Probe(ctx context.Context) error
}

// BatchClassifier turns prepared records into outcomes, one per record.
type BatchClassifier interface {
	ClassifyBatch(ctx context.Context, records []domain.Record) []domain.Outcome
}

// ResultStore persists the checkpoint, the append-only result log and the
// run summary.
type ResultStore interface {
	LoadCheckpoint() (domain.Checkpoint, bool, error)
	SaveCheckpoint(cp domain.Checkpoint) error
	AppendResults(outcomes []domain.Outcome) error
	LoadResults() ([]domain.Outcome, error)
	SaveSummary(sum domain.Summary) error
	WriteFinalCSV(header []string, rows [][]string) (string, error)
}

// Notifier delivers the end-of-run summary to an external channel.
type Notifier interface {
	PublishSummary(ctx context.Context, summary string) error
}
