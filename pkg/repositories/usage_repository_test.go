package repositories_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shefa-net/steward-engine/pkg/models"
	"github.com/shefa-net/steward-engine/pkg/repositories"
	"github.com/shefa-net/steward-engine/pkg/testhelpers"
)

func TestUsageRepository_CreateAndListRecent(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	resources := repositories.NewResourceRepository(testDB.DB)
	usage := repositories.NewUsageRepository(testDB.DB)
	ctx := context.Background()

	resource := newTestResource("steward-usage")
	require.NoError(t, resources.Create(ctx, resource))

	blockID := uuid.New()
	actions := []string{"purchase", "refund", "purchase"}
	for _, action := range actions {
		require.NoError(t, usage.Create(ctx, &models.UsageRecord{
			ResourceID:        resource.ID,
			AllocationBlockID: blockID,
			Action:            action,
			Quantity:          models.Measure{Value: 12.5, Unit: "USD"},
		}))
	}

	records, err := usage.ListRecent(ctx, resource.ID, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 12.5, records[0].Quantity.Value)
	assert.Equal(t, "USD", records[0].Quantity.Unit)

	all, err := usage.ListRecent(ctx, resource.ID, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUsageRepository_SetLedgerEventID_OnlyOnce(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	resources := repositories.NewResourceRepository(testDB.DB)
	usage := repositories.NewUsageRepository(testDB.DB)
	ctx := context.Background()

	resource := newTestResource("steward-usage-attach")
	require.NoError(t, resources.Create(ctx, resource))

	record := &models.UsageRecord{
		ResourceID:        resource.ID,
		AllocationBlockID: uuid.New(),
		Action:            "purchase",
		Quantity:          models.Measure{Value: 1, Unit: "USD"},
	}
	require.NoError(t, usage.Create(ctx, record))

	eventID := uuid.New()
	require.NoError(t, usage.SetLedgerEventID(ctx, record.ID, eventID))

	// The attachment is write-once.
	err := usage.SetLedgerEventID(ctx, record.ID, uuid.New())
	require.Error(t, err)

	records, err := usage.ListRecent(ctx, resource.ID, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].LedgerEventID)
	assert.Equal(t, eventID, *records[0].LedgerEventID)
}
