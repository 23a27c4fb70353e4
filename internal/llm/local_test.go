package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raseedhq/raseed/internal/receipt"
)

func TestLocalExtractorDeterministic(t *testing.T) {
	e := LocalExtractor{}
	ctx := context.Background()

	first, err := e.Extract(ctx, "bill.jpg", []byte("same image bytes"))
	require.NoError(t, err)

	second, err := e.Extract(ctx, "other-name.jpg", []byte("same image bytes"))
	require.NoError(t, err)

	assert.Equal(t, first, second, "the same bytes always extract identically")
	assert.NotEmpty(t, first.EstablishmentName)
	assert.NotEmpty(t, first.Items)
}

func TestLocalExtractorRejectsEmptyImage(t *testing.T) {
	_, err := LocalExtractor{}.Extract(context.Background(), "bill.jpg", nil)
	require.Error(t, err)
}

func TestLocalExtractorOutputNormalizes(t *testing.T) {
	// Every sample must survive the client's normalization pass.
	for _, raw := range extractionSamples() {
		draft := receipt.Normalize(raw)

		assert.NotEmpty(t, draft.EstablishmentName)
		for _, it := range draft.Items {
			assert.NotEmpty(t, it.Price)
			assert.NotEmpty(t, it.Quantity)
		}
	}
}

func TestLocalAssistantWithoutReceipts(t *testing.T) {
	reply, err := LocalAssistant{}.Reply(context.Background(), "what did I buy?", nil)
	require.NoError(t, err)
	assert.Contains(t, reply, "no receipts")
}

func TestLocalAssistantSummarizes(t *testing.T) {
	receipts := []receipt.Receipt{
		{
			EstablishmentName: "Cafe Madras",
			Date:              "2025-08-01",
			Total:             receipt.AmountFromString("318"),
		},
		{
			EstablishmentName: "DMart",
			Date:              "2025-07-20",
			Total:             receipt.AmountFromString("1240"),
		},
	}

	reply, err := LocalAssistant{}.Reply(context.Background(), "how much overall?", receipts)
	require.NoError(t, err)

	assert.Contains(t, reply, "2 receipts")
	assert.Contains(t, reply, "₹1,558.00")
	assert.Contains(t, reply, "Cafe Madras", "the newest receipt leads the summary")
	assert.Contains(t, reply, "how much overall?")
}
