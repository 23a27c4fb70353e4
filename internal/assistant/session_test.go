package assistant

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskAndReply(t *testing.T) {
	s := NewSession()

	gen, err := s.Begin("  how much did I spend on coffee?  ")
	require.NoError(t, err)

	messages := s.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, RoleUser, messages[0].Role)
	assert.Equal(t, "how much did I spend on coffee?", messages[0].Text, "prompts append trimmed")
	assert.True(t, s.Pending())

	require.True(t, s.Finish(gen, "About ₹320 this month.", nil))

	messages = s.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, RoleAssistant, messages[1].Role)
	assert.Equal(t, "About ₹320 this month.", messages[1].Text)
	assert.False(t, s.Pending())
}

func TestBlankPromptRejectedLocally(t *testing.T) {
	s := NewSession()

	_, err := s.Begin("   ")
	require.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Empty(t, s.Messages(), "rejected prompts never touch the transcript")
	assert.False(t, s.Pending())
}

func TestSecondAskWhilePending(t *testing.T) {
	s := NewSession()

	_, err := s.Begin("first question")
	require.NoError(t, err)

	_, err = s.Begin("second question")
	require.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, s.Len())
}

func TestFailureBecomesTranscriptEntry(t *testing.T) {
	s := NewSession()

	gen, err := s.Begin("question")
	require.NoError(t, err)

	require.True(t, s.Finish(gen, "", errors.New("model timed out (status 502)")))

	messages := s.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, RoleAssistant, messages[1].Role)
	assert.Equal(t, "Error: model timed out (status 502)", messages[1].Text)
	assert.False(t, s.Pending())
}

func TestStaleReplyIgnored(t *testing.T) {
	s := NewSession()

	gen, err := s.Begin("question")
	require.NoError(t, err)

	s.Clear()

	assert.False(t, s.Finish(gen, "late reply", nil))
	assert.Empty(t, s.Messages())
	assert.False(t, s.Pending())
}

func TestExactlyOneReplyPerAsk(t *testing.T) {
	s := NewSession()

	gen, err := s.Begin("question")
	require.NoError(t, err)

	require.True(t, s.Finish(gen, "answer", nil))
	assert.False(t, s.Finish(gen, "answer again", nil), "a generation resolves once")
	assert.Equal(t, 2, s.Len())
}

func TestClearWipesTranscript(t *testing.T) {
	s := NewSession()

	gen, err := s.Begin("question")
	require.NoError(t, err)
	require.True(t, s.Finish(gen, "answer", nil))

	s.Clear()

	assert.Empty(t, s.Messages())
	assert.Equal(t, 0, s.Len())
}
