package llm

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// RequestTimeout bounds a single text-processing call.
const RequestTimeout = 5 * time.Second

// ErrProcessingResultMissing is returned when the response carries no result.
var ErrProcessingResultMissing = errors.New("Result not found in Gemini response.")

// Request is one transcript to process with the stored prompt and settings.
type Request struct {
	APIKey   string
	Text     string
	Prompt   string
	Settings map[string]any
}

// Processor turns a transcript into the text that gets delivered.
type Processor interface {
	Process(ctx context.Context, req Request) (string, error)
}
