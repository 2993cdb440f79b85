package enrich

import (
	"context"
	"testing"

	"github.com/campushub/campusnews/ledger"
	"github.com/campushub/campusnews/utils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupReconcilesActualUsage(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	setupEnrichmentDirs(t)

	client := &fakeClient{response: "whatever the model says", tokens: 700}
	cleaner := NewCleaner(db, client, 10000)

	response, err := cleaner.Cleanup(context.Background(), "Titel", "Text")
	require.NoError(t, err)
	assert.Equal(t, "whatever the model says", response)

	// The 1500 estimate was replaced by the actual usage.
	used, err := ledger.UsedToday(db)
	require.NoError(t, err)
	assert.EqualValues(t, 700, used)
}

func TestCleanupReleasesReservationOnFailure(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	setupEnrichmentDirs(t)

	client := &fakeClient{err: errors.New("upstream 500")}
	cleaner := NewCleaner(db, client, 10000)

	_, err := cleaner.Cleanup(context.Background(), "Titel", "Text")
	assert.ErrorIs(t, err, ErrCleanupFailed)

	used, err := ledger.UsedToday(db)
	require.NoError(t, err)
	assert.EqualValues(t, 0, used)
}

func TestCleanupRefusedWhenBudgetAlmostSpent(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	setupEnrichmentDirs(t)

	// Pre-spend so that less than one estimate remains.
	_, err := ledger.Reserve(db, 9900, 10000)
	require.NoError(t, err)

	client := &fakeClient{response: "unused"}
	cleaner := NewCleaner(db, client, 10000)

	_, err = cleaner.Cleanup(context.Background(), "Titel", "Text")
	assert.ErrorIs(t, err, ErrTokenLimitExceeded)
	assert.Empty(t, client.lastRequest.SystemPrompt)
}
