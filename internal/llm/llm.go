// Package llm is the seam between the dev backend and the models that
// read receipt images and answer questions about them. The local
// implementations are deterministic stand-ins so the whole loop runs
// offline; a deployment swaps in implementations backed by a real
// vision and chat model.
package llm

import (
	"context"

	"github.com/raseedhq/raseed/internal/receipt"
)

// Extractor reads a receipt image into the loose extraction shape.
type Extractor interface {
	Extract(ctx context.Context, filename string, image []byte) (receipt.RawExtraction, error)
}

// Assistant answers one prompt in the context of the user's stored
// receipts.
type Assistant interface {
	Reply(ctx context.Context, prompt string, receipts []receipt.Receipt) (string, error)
}
