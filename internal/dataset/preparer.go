package dataset

import (
	"fmt"
	"log/slog"
	"strings"

	"NewsLabeler/internal/domain"
	"NewsLabeler/internal/prompts"
)

const minTitleLength = 5

// Preparer validates and flattens rows into the text payload the
// classification client needs. It applies no transformation beyond length
// truncation: the crawled text is passed through as-is to preserve fidelity.
type Preparer struct {
	maxContentLength int
	logger           *slog.Logger
}

// NewPreparer wires a preparer; maxContentLength defaults to the prompt cap
// when zero.
func NewPreparer(maxContentLength int, logger *slog.Logger) *Preparer {
	if maxContentLength <= 0 {
		maxContentLength = prompts.MaxContentLength
	}
	return &Preparer{maxContentLength: maxContentLength, logger: logger}
}

// Prepare converts one row into a classification record. Rows with blank
// required fields or a too-short title are dropped: logged, skipped, and
// never counted as API failures.
func (p *Preparer) Prepare(row Row) (domain.Record, bool) {
	if errs := checkRecord(row.Title, row.Description, row.Content); len(errs) > 0 {
		if p.logger != nil {
			p.logger.Warn("record validation failed", "index", row.Index, "errors", strings.Join(errs, "; "))
		}
		return domain.Record{}, false
	}

	content := prompts.Truncate(row.Content, p.maxContentLength)

	return domain.Record{
		Index:        row.Index,
		Title:        row.Title,
		Description:  row.Description,
		Content:      content,
		CombinedText: CombinedText(row.Title, row.Description, content),
	}, true
}

// Slice prepares up to width rows starting at start. It returns the valid
// records plus the number of rows actually attempted, which is what the
// orchestrator advances its cursor by.
func (p *Preparer) Slice(ds *Dataset, start, width int) ([]domain.Record, int) {
	end := start + width
	if end > ds.Len() {
		end = ds.Len()
	}
	if start >= end {
		return nil, 0
	}

	records := make([]domain.Record, 0, end-start)
	for i := start; i < end; i++ {
		rec, ok := p.Prepare(ds.Row(i))
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, end - start
}

func checkRecord(title, description, content string) []string {
	var errs []string

	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		errs = append(errs, "title is empty")
	}
	if strings.TrimSpace(description) == "" {
		errs = append(errs, "description is empty")
	}
	if strings.TrimSpace(content) == "" {
		errs = append(errs, "content is empty")
	}
	if trimmedTitle != "" && len([]rune(trimmedTitle)) < minTitleLength {
		errs = append(errs, fmt.Sprintf("title too short (< %d characters)", minTitleLength))
	}

	return errs
}

// CombinedText flattens the three fields into the single structured block
// sampled for cost estimation and embedded in prompts.
func CombinedText(title, description, content string) string {
	return fmt.Sprintf("TIÊU ĐỀ: %s\n\nMÔ TẢ: %s\n\nNỘI DUNG: %s", title, description, content)
}
