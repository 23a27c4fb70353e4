package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkerLifecycle(t *testing.T) {
	l := NewLinker()

	assert.True(t, l.Begin("rcpt-1"))
	assert.True(t, l.InFlight("rcpt-1"))
	assert.Equal(t, 1, l.Active())

	l.Finish("rcpt-1")
	assert.False(t, l.InFlight("rcpt-1"))
	assert.Equal(t, 0, l.Active())

	assert.True(t, l.Begin("rcpt-1"), "a finished receipt can link again")
}

func TestLinkerRejectsDoubleBegin(t *testing.T) {
	l := NewLinker()

	assert.True(t, l.Begin("rcpt-1"))
	assert.False(t, l.Begin("rcpt-1"), "one link request per receipt at a time")
	assert.True(t, l.InFlight("rcpt-1"))
}

func TestLinkerIndependentReceipts(t *testing.T) {
	l := NewLinker()

	assert.True(t, l.Begin("rcpt-1"))
	assert.True(t, l.Begin("rcpt-2"), "different receipts link concurrently")
	assert.Equal(t, 2, l.Active())

	l.Finish("rcpt-1")
	assert.False(t, l.InFlight("rcpt-1"))
	assert.True(t, l.InFlight("rcpt-2"))
}

func TestLinkerRejectsEmptyID(t *testing.T) {
	l := NewLinker()

	assert.False(t, l.Begin(""))
	assert.Equal(t, 0, l.Active())
}

func TestLinkerFinishUnknownID(t *testing.T) {
	l := NewLinker()

	l.Finish("never-started")
	assert.Equal(t, 0, l.Active())
}

func TestLinkerReset(t *testing.T) {
	l := NewLinker()

	l.Begin("rcpt-1")
	l.Begin("rcpt-2")
	l.Reset()

	assert.Equal(t, 0, l.Active())
	assert.True(t, l.Begin("rcpt-1"), "reset flags do not block new links")
}
