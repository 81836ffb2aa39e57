package main

import (
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/madar/internal/core/domain"
)

func loadManifest(t *testing.T) Manifest {
	t.Helper()
	data, err := os.ReadFile("../../seeds/initial.json")
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestPrepare_InitialManifest(t *testing.T) {
	now := time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC)
	items, tours, err := prepare(loadManifest(t), nil, now)
	require.NoError(t, err)

	assert.Len(t, items, 5)
	assert.Len(t, tours, 2)
	for _, it := range items {
		assert.Equal(t, now, it.CreatedAt)
		for _, pp := range it.PathPoints {
			assert.NotEmpty(t, pp.ID, "path point of %s needs an id", it.ID)
		}
	}
}

func TestPrepare_FilterDropsIncompleteTours(t *testing.T) {
	items, tours, err := prepare(loadManifest(t), map[string]bool{"1": true, "4": true}, time.Now())
	require.NoError(t, err)

	assert.Len(t, items, 2)
	require.Len(t, tours, 1)
	assert.Equal(t, "cairo-heritage", tours[0].ID)
}

func TestPrepare_RejectsInvalidEntries(t *testing.T) {
	m := Manifest{
		Interventions: []domain.Intervention{
			{ID: "ok", Type: domain.InterventionBench, Place: "Corniche", Location: domain.GeoPoint{Lat: 33.9, Lon: 35.48}},
			{ID: "bad", Type: domain.InterventionBench, Place: "Nowhere", Location: domain.GeoPoint{Lat: 95, Lon: 0}},
		},
		Tours: []domain.CuratedTour{
			{ID: "t", Name: "Ghost", Theme: domain.ThemeArt, Stops: []string{"missing"}},
		},
	}

	_, _, err := prepare(m, nil, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), `intervention "bad"`)
	assert.Contains(t, err.Error(), `tour "t"`)
}
