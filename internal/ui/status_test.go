package ui

import (
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kvb/internal/events"
)

func TestStatusFlashClearsOnlyItsOwnNotice(t *testing.T) {
	s := NewStatusModel(NewStyles(true), time.Second)
	require.NotNil(t, s.Flash(events.Notice{Kind: events.Info, Message: "first"}))
	first := s.FlashID
	s.Flash(events.Notice{Kind: events.Error, Message: "second"})

	s, _ = s.Update(flashClearMsg{ID: first})
	assert.Equal(t, "second", s.Notice.Message)

	s, _ = s.Update(flashClearMsg{ID: s.FlashID})
	assert.Empty(t, s.Notice.Message)
	assert.Empty(t, s.View())
}

func TestStatusBusy(t *testing.T) {
	s := NewStatusModel(NewStyles(true), time.Second)
	assert.NotNil(t, s.Busy(), "first fetch starts the spinner")
	assert.Nil(t, s.Busy(), "spinner already running")
	assert.Equal(t, 2, s.Inflight)

	s.Done()
	s.Done()
	s.Done()
	assert.Equal(t, 0, s.Inflight)
}

func TestStatusViewTruncates(t *testing.T) {
	s := NewStatusModel(NewStyles(true), time.Second)
	s.Width = 10
	s.Flash(events.Notice{Kind: events.Warning, Message: "a rather long warning message"})
	out := ansi.Strip(s.View())
	assert.LessOrEqual(t, ansi.StringWidth(out), 10)
	assert.Contains(t, out, "…")
}
