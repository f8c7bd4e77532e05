package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardsift/cardsift/internal/config"
)

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("https://example.com/cards"))
	assert.True(t, isURL("http://bank.example/platinum"))
	assert.False(t, isURL("brochure.pdf"))
	assert.False(t, isURL("/data/cards/brochure.pdf"))
}

func TestBuildEngine_Defaults(t *testing.T) {
	cfg = &config.Config{}
	cfg.Extract.Workers = 2

	engine, err := buildEngine("", 0)
	require.NoError(t, err)
	require.NotNil(t, engine)
}

func TestBuildEngine_BadRulesPath(t *testing.T) {
	cfg = &config.Config{}

	_, err := buildEngine("does-not-exist.yaml", 1)
	require.Error(t, err)
}
