// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

package api

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidation(t *testing.T) {
	t.Run("rerank pin is optional", func(t *testing.T) {
		require.Nil(t, validateRequest(&RerankRequest{}))
		require.Nil(t, validateRequest(&RerankRequest{CurrentlyPlayingURI: "res:now"}))
	})

	t.Run("rerank pin length is capped", func(t *testing.T) {
		apiErr := validateRequest(&RerankRequest{CurrentlyPlayingURI: strings.Repeat("x", 513)})
		require.NotNil(t, apiErr)
		assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	})

	t.Run("recommend limit bounds", func(t *testing.T) {
		require.Nil(t, validateRequest(&RecommendRequest{}))
		require.Nil(t, validateRequest(&RecommendRequest{Limit: 50}))
		require.NotNil(t, validateRequest(&RecommendRequest{Limit: 51}))
		require.NotNil(t, validateRequest(&RecommendRequest{Limit: -1}))
	})

	t.Run("add song requires a title", func(t *testing.T) {
		require.NotNil(t, validateRequest(&AddSongRequest{URI: "res:x"}))
		require.Nil(t, validateRequest(&AddSongRequest{Title: "Song"}))
	})
}

func TestSanitizeLogValue(t *testing.T) {
	assert.Equal(t, "plain title", sanitizeLogValue("plain title"))
	assert.Equal(t, `evil\x0aforged line`, sanitizeLogValue("evil\nforged line"))
	assert.Equal(t, `tab\x09sep`, sanitizeLogValue("tab\tsep"))
}
