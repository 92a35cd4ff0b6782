// Resonance - Shared Listening Session Queue with Vibe Ranking
// Copyright 2026 Aux Party Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auxparty/resonance

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful SELECT query",
			operation: "SELECT",
			table:     "queue_entries",
			duration:  10 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "successful INSERT query",
			operation: "INSERT",
			table:     "tracks",
			duration:  5 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "failed query",
			operation: "UPDATE",
			table:     "queue_entries",
			duration:  100 * time.Millisecond,
			err:       errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.CollectAndCount(DBQueryDuration)
			RecordDBQuery(tt.operation, tt.table, tt.duration, tt.err)
			after := testutil.CollectAndCount(DBQueryDuration)
			if after < before {
				t.Errorf("expected histogram series count to not decrease, before=%d after=%d", before, after)
			}

			if tt.err != nil {
				count := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table))
				if count < 1 {
					t.Errorf("expected error counter to be incremented, got %v", count)
				}
			}
		})
	}
}

func TestRecordRankPass(t *testing.T) {
	before := testutil.ToFloat64(RankPasses.WithLabelValues("ranked"))
	notFoundBefore := testutil.ToFloat64(RankSongsNotFound)

	RecordRankPass("ranked", 25*time.Millisecond, 2)

	if got := testutil.ToFloat64(RankPasses.WithLabelValues("ranked")); got != before+1 {
		t.Errorf("expected rank pass counter %v, got %v", before+1, got)
	}
	if got := testutil.ToFloat64(RankSongsNotFound); got != notFoundBefore+2 {
		t.Errorf("expected songs not found counter %v, got %v", notFoundBefore+2, got)
	}
}

func TestRecordRankPass_NoMissingSongs(t *testing.T) {
	before := testutil.ToFloat64(RankSongsNotFound)
	RecordRankPass("not_enough_songs", time.Millisecond, 0)
	if got := testutil.ToFloat64(RankSongsNotFound); got != before {
		t.Errorf("expected songs not found counter unchanged, got %v (was %v)", got, before)
	}
}

func TestRecordFeatureLookup(t *testing.T) {
	for _, result := range []string{"hit", "miss", "error"} {
		before := testutil.ToFloat64(FeatureLookups.WithLabelValues(result))
		RecordFeatureLookup(result)
		if got := testutil.ToFloat64(FeatureLookups.WithLabelValues(result)); got != before+1 {
			t.Errorf("expected %s counter %v, got %v", result, before+1, got)
		}
	}
}

func TestRecordBreakerState(t *testing.T) {
	RecordBreakerState("feature_lookup", 2)
	if got := testutil.ToFloat64(BreakerState.WithLabelValues("feature_lookup")); got != 2 {
		t.Errorf("expected breaker state 2, got %v", got)
	}
	RecordBreakerState("feature_lookup", 0)
	if got := testutil.ToFloat64(BreakerState.WithLabelValues("feature_lookup")); got != 0 {
		t.Errorf("expected breaker state 0, got %v", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/sessions/{sessionID}/rerank", "200"))
	RecordAPIRequest("POST", "/api/v1/sessions/{sessionID}/rerank", "200", 12*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/sessions/{sessionID}/rerank", "200"))
	if after != before+1 {
		t.Errorf("expected request counter %v, got %v", before+1, after)
	}
}
