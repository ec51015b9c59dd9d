package ui

import (
	"fmt"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultPromptAcceptsValidName(t *testing.T) {
	p := NewVaultPrompt("", NewStyles(true))
	p.Init()
	for _, r := range "my-vault" {
		p.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	_, cmd := p.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "my-vault", p.Value())
	assert.False(t, p.Cancelled())
}

func TestVaultPromptRejectsInvalidName(t *testing.T) {
	p := NewVaultPrompt("ab", NewStyles(true))
	p.Init()
	_, cmd := p.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
	require.Error(t, p.err)
	assert.Contains(t, fmt.Sprint(p.View().Content), "3-24")
}

func TestVaultPromptCancel(t *testing.T) {
	p := NewVaultPrompt("my-vault", NewStyles(true))
	_, cmd := p.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.True(t, p.Cancelled())
}
