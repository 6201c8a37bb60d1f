package main

import (
	"testing"

	"basketly/services/delivery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoCatalogIsWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range demoCatalog() {
		require.NotEmpty(t, s.ID)
		assert.False(t, seen[s.ID], "duplicate id %s", s.ID)
		seen[s.ID] = true
		assert.True(t, s.Active, s.ID)

		for _, v := range []string{s.DeliveryStartTime, s.DeliveryEndTime, s.OrderCutoffTime} {
			if v == "" {
				continue
			}
			_, err := delivery.ParseTimeOfDay(v)
			assert.NoError(t, err, "%s: %q", s.ID, v)
		}
		if !s.IsExpress {
			assert.NotEmpty(t, s.DaysOfWeek, s.ID)
		}
	}
}

func TestHHMM(t *testing.T) {
	assert.Equal(t, "08:00", hhmm(480))
	assert.Equal(t, "21:05", hhmm(1265))
}
