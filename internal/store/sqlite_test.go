package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardsift/cardsift/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSaveAndGetRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fee := "$95"
	run := model.Run{
		Source:      "https://example.com/cards",
		Kind:        model.SourceWeb,
		RecordCount: 1,
		Records: []model.CardRecord{
			{CardName: "Platinum Rewards Card", AnnualFee: &fee},
		},
		StartedAt:  time.Now().Add(-time.Second),
		FinishedAt: time.Now(),
	}

	id, err := s.SaveRun(ctx, run)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/cards", got.Source)
	assert.Equal(t, model.SourceWeb, got.Kind)
	assert.Equal(t, 1, got.RecordCount)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "Platinum Rewards Card", got.Records[0].CardName)
	require.NotNil(t, got.Records[0].AnnualFee)
	assert.Equal(t, "$95", *got.Records[0].AnnualFee)
	assert.Nil(t, got.Records[0].Cashback)
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, src := range []string{"first.pdf", "second.pdf", "third.pdf"} {
		_, err := s.SaveRun(ctx, model.Run{
			Source:     src,
			Kind:       model.SourcePDF,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + time.Second),
		})
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "third.pdf", runs[0].Source)
	assert.Equal(t, "first.pdf", runs[2].Source)
	// List omits record payloads.
	assert.Nil(t, runs[0].Records)
}

func TestListRuns_Limit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := range 5 {
		_, err := s.SaveRun(ctx, model.Run{
			Source:     "cards.pdf",
			Kind:       model.SourcePDF,
			StartedAt:  time.Now().Add(time.Duration(i) * time.Second),
			FinishedAt: time.Now(),
		})
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestGetRun_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRun(context.Background(), "no-such-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
