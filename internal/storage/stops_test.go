package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	db := &fakeQuerier{queryRows: &fakeAggRows{
		rows: []aggRow{
			{category: "Maintenance", count: 2, minutes: 30},
			{category: "Other", count: 1, minutes: 5},
		},
	}}

	summary, err := NewStopStore(db).Aggregate(context.Background(), types.StopFilter{})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, 35, summary.TotalMinutes)
	assert.Equal(t, types.CategoryStat{Count: 2, TotalMinutes: 30}, summary.ByCategory["Maintenance"])
	assert.Equal(t, types.CategoryStat{Count: 1, TotalMinutes: 5}, summary.ByCategory["Other"])
}

func TestAggregate_IterationError(t *testing.T) {
	db := &fakeQuerier{queryRows: &fakeAggRows{
		rows: []aggRow{{category: "Maintenance", count: 2, minutes: 30}},
		err:  errors.New("connection reset"),
	}}

	summary, err := NewStopStore(db).Aggregate(context.Background(), types.StopFilter{})
	require.Error(t, err)
	// No partial totals on a broken iteration
	assert.Nil(t, summary)
}
