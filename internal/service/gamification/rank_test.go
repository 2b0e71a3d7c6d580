package gamification

import (
	"math"
	"testing"
)

const progressEpsilon = 1e-9

func TestComputeCollectorRankScenarios(t *testing.T) {
	table := DefaultTierTable()

	tests := []struct {
		name             string
		totalAlbums      float64
		collectionValue  float64
		expectedTier     string
		expectedLevel    int
		expectedProgress float64
		expectNextAlbums *float64
		expectNextValue  *float64
		expectNextTier   *string
		description      string
	}{
		{
			name:             "empty collection",
			totalAlbums:      0,
			collectionValue:  0,
			expectedTier:     "Novato",
			expectedLevel:    0,
			expectedProgress: 0,
			expectNextAlbums: floatPtr(20),
			expectNextValue:  floatPtr(800),
			expectNextTier:   strPtr("Aficionado"),
			description:      "New collector starts at the first tier with both targets",
		},
		{
			name:             "albums advanced, value stuck",
			totalAlbums:      20,
			collectionValue:  0,
			expectedTier:     "Novato",
			expectedLevel:    0,
			expectedProgress: 0,
			expectNextAlbums: nil,
			expectNextValue:  floatPtr(800),
			expectNextTier:   strPtr("Aficionado"),
			description:      "Composite rank is gated by the value dimension",
		},
		{
			name:             "value is the limiting dimension",
			totalAlbums:      30,
			collectionValue:  900,
			expectedTier:     "Aficionado",
			expectedLevel:    1,
			expectedProgress: 100.0 / 1700.0,
			expectNextAlbums: floatPtr(60),
			expectNextValue:  floatPtr(2500),
			expectNextTier:   strPtr("Coleccionista"),
			description:      "Tied levels keep both targets but report the weaker progress",
		},
		{
			name:             "exact threshold counts as reached",
			totalAlbums:      120,
			collectionValue:  7000,
			expectedTier:     "Experto",
			expectedLevel:    3,
			expectedProgress: 0,
			expectNextAlbums: floatPtr(240),
			expectNextValue:  floatPtr(15000),
			expectNextTier:   strPtr("Virtuoso"),
			description:      "Reaching a threshold exactly achieves the tier",
		},
		{
			name:             "maximum tier saturates",
			totalAlbums:      480,
			collectionValue:  30000,
			expectedTier:     "Legendario",
			expectedLevel:    5,
			expectedProgress: 1.0,
			expectNextAlbums: nil,
			expectNextValue:  nil,
			expectNextTier:   nil,
			description:      "Top tier has no next targets and full progress",
		},
		{
			name:             "beyond maximum tier",
			totalAlbums:      10000,
			collectionValue:  999999,
			expectedTier:     "Legendario",
			expectedLevel:    5,
			expectedProgress: 1.0,
			expectNextAlbums: nil,
			expectNextValue:  nil,
			expectNextTier:   nil,
			description:      "Values past the last milestone do not overflow",
		},
		{
			name:             "max albums but pennies of value",
			totalAlbums:      1000,
			collectionValue:  100,
			expectedTier:     "Novato",
			expectedLevel:    0,
			expectedProgress: 100.0 / 800.0,
			expectNextAlbums: nil,
			expectNextValue:  floatPtr(800),
			expectNextTier:   strPtr("Aficionado"),
			description:      "Only the limiting dimension advertises a target",
		},
		{
			name:             "negative inputs floor at zero",
			totalAlbums:      -5,
			collectionValue:  -100,
			expectedTier:     "Novato",
			expectedLevel:    0,
			expectedProgress: 0,
			expectNextAlbums: floatPtr(20),
			expectNextValue:  floatPtr(800),
			expectNextTier:   strPtr("Aficionado"),
			description:      "Negative inputs never produce negative progress",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rank := table.ComputeCollectorRank(tt.totalAlbums, tt.collectionValue)

			if rank.Tier != tt.expectedTier {
				t.Errorf("Expected tier %q, got %q", tt.expectedTier, rank.Tier)
			}
			if rank.LevelIndex != tt.expectedLevel {
				t.Errorf("Expected level %d, got %d", tt.expectedLevel, rank.LevelIndex)
			}
			if math.Abs(rank.ProgressToNext-tt.expectedProgress) > progressEpsilon {
				t.Errorf("Expected progress %.6f, got %.6f", tt.expectedProgress, rank.ProgressToNext)
			}

			var gotNextAlbums, gotNextValue *float64
			if rank.NextTargets != nil {
				gotNextAlbums = rank.NextTargets.NextAlbums
				gotNextValue = rank.NextTargets.NextValue
			}
			assertFloatPtr(t, "next_albums", tt.expectNextAlbums, gotNextAlbums)
			assertFloatPtr(t, "next_value", tt.expectNextValue, gotNextValue)

			if tt.expectNextTier == nil {
				if rank.NextTier != nil {
					t.Errorf("Expected no next tier, got %q", *rank.NextTier)
				}
			} else if rank.NextTier == nil {
				t.Errorf("Expected next tier %q, got nil", *tt.expectNextTier)
			} else if *rank.NextTier != *tt.expectNextTier {
				t.Errorf("Expected next tier %q, got %q", *tt.expectNextTier, *rank.NextTier)
			}
		})
	}
}

func TestComputeCollectorRankCompositeIsMinimum(t *testing.T) {
	table := DefaultTierTable()

	tests := []struct {
		name            string
		totalAlbums     float64
		collectionValue float64
	}{
		{"value behind albums", 480, 800},
		{"albums behind value", 20, 30000},
		{"both mid table", 60, 2500},
		{"both zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rank := table.ComputeCollectorRank(tt.totalAlbums, tt.collectionValue)

			minLevel := rank.AlbumLevelIndex
			if rank.ValueLevelIndex < minLevel {
				minLevel = rank.ValueLevelIndex
			}
			if rank.LevelIndex != minLevel {
				t.Errorf("Composite level %d does not match min of dimensions (%d, %d)",
					rank.LevelIndex, rank.AlbumLevelIndex, rank.ValueLevelIndex)
			}
			if rank.Tier != table.TierName(rank.LevelIndex) {
				t.Errorf("Tier %q does not match name for level %d", rank.Tier, rank.LevelIndex)
			}
		})
	}
}

func TestComputeCollectorRankMonotonic(t *testing.T) {
	table := DefaultTierTable()

	// Growing a collection on either dimension must never lower the rank.
	prevLevel := -1
	for albums := 0.0; albums <= 600; albums += 10 {
		rank := table.ComputeCollectorRank(albums, 50000)
		if rank.LevelIndex < prevLevel {
			t.Fatalf("Level dropped from %d to %d at %v albums", prevLevel, rank.LevelIndex, albums)
		}
		prevLevel = rank.LevelIndex
	}

	prevLevel = -1
	for value := 0.0; value <= 40000; value += 500 {
		rank := table.ComputeCollectorRank(1000, value)
		if rank.LevelIndex < prevLevel {
			t.Fatalf("Level dropped from %d to %d at value %v", prevLevel, rank.LevelIndex, value)
		}
		prevLevel = rank.LevelIndex
	}
}

func TestComputeLevelProgressBounds(t *testing.T) {
	table := DefaultTierTable()
	milestones := table.albumMilestones()

	for current := -50.0; current <= 700; current += 7 {
		result := computeLevel(current, milestones)
		if result.ProgressToNext < 0 || result.ProgressToNext > 1 {
			t.Errorf("Progress %.4f out of [0,1] for input %v", result.ProgressToNext, current)
		}
		if result.LevelIndex < 0 || result.LevelIndex > table.MaxLevel() {
			t.Errorf("Level %d out of range for input %v", result.LevelIndex, current)
		}
		if result.LevelIndex == table.MaxLevel() && result.NextTarget != nil {
			t.Errorf("Max level must not carry a next target, got %v", *result.NextTarget)
		}
	}
}

func TestComputeLevelJustBelowThreshold(t *testing.T) {
	table := DefaultTierTable()

	result := computeLevel(19.99, table.albumMilestones())
	if result.LevelIndex != 0 {
		t.Errorf("Expected level 0 just below threshold, got %d", result.LevelIndex)
	}
	if result.ProgressToNext >= 1 {
		t.Errorf("Expected progress below 1 just below threshold, got %.4f", result.ProgressToNext)
	}

	result = computeLevel(20, table.albumMilestones())
	if result.LevelIndex != 1 {
		t.Errorf("Expected level 1 at threshold, got %d", result.LevelIndex)
	}
}

func TestDefaultTierTable(t *testing.T) {
	table := DefaultTierTable()

	expectedNames := []string{"Novato", "Aficionado", "Coleccionista", "Experto", "Virtuoso", "Legendario"}
	tiers := table.Tiers()
	if len(tiers) != len(expectedNames) {
		t.Fatalf("Expected %d tiers, got %d", len(expectedNames), len(tiers))
	}
	for i, name := range expectedNames {
		if tiers[i].Name != name {
			t.Errorf("Expected tier %d to be %q, got %q", i, name, tiers[i].Name)
		}
		if table.TierName(i) != name {
			t.Errorf("TierName(%d) = %q, expected %q", i, table.TierName(i), name)
		}
	}
	if table.MaxLevel() != 5 {
		t.Errorf("Expected max level 5, got %d", table.MaxLevel())
	}
}

func TestNewTierTableValidation(t *testing.T) {
	tests := []struct {
		name      string
		tiers     []TierMilestone
		expectErr bool
	}{
		{
			name: "valid table",
			tiers: []TierMilestone{
				{Name: "Bronze", AlbumThreshold: 0, ValueThreshold: 0},
				{Name: "Silver", AlbumThreshold: 10, ValueThreshold: 100},
				{Name: "Gold", AlbumThreshold: 50, ValueThreshold: 1000},
			},
			expectErr: false,
		},
		{
			name: "too few tiers",
			tiers: []TierMilestone{
				{Name: "Only", AlbumThreshold: 0, ValueThreshold: 0},
			},
			expectErr: true,
		},
		{
			name: "first tier not zero",
			tiers: []TierMilestone{
				{Name: "Bronze", AlbumThreshold: 5, ValueThreshold: 0},
				{Name: "Silver", AlbumThreshold: 10, ValueThreshold: 100},
			},
			expectErr: true,
		},
		{
			name: "album thresholds not increasing",
			tiers: []TierMilestone{
				{Name: "Bronze", AlbumThreshold: 0, ValueThreshold: 0},
				{Name: "Silver", AlbumThreshold: 10, ValueThreshold: 100},
				{Name: "Gold", AlbumThreshold: 10, ValueThreshold: 200},
			},
			expectErr: true,
		},
		{
			name: "value thresholds decreasing",
			tiers: []TierMilestone{
				{Name: "Bronze", AlbumThreshold: 0, ValueThreshold: 0},
				{Name: "Silver", AlbumThreshold: 10, ValueThreshold: 100},
				{Name: "Gold", AlbumThreshold: 20, ValueThreshold: 50},
			},
			expectErr: true,
		},
		{
			name: "missing tier name",
			tiers: []TierMilestone{
				{Name: "Bronze", AlbumThreshold: 0, ValueThreshold: 0},
				{Name: "", AlbumThreshold: 10, ValueThreshold: 100},
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTierTable(tt.tiers)
			if tt.expectErr {
				if err == nil {
					t.Error("Expected an error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if table.MaxLevel() != len(tt.tiers)-1 {
				t.Errorf("Expected max level %d, got %d", len(tt.tiers)-1, table.MaxLevel())
			}
		})
	}
}

func TestNewTierTableFromThresholds(t *testing.T) {
	table, err := NewTierTableFromThresholds(
		[]float64{0, 10, 30, 60, 100, 200},
		[]float64{0, 500, 1500, 4000, 9000, 20000},
	)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	rank := table.ComputeCollectorRank(10, 500)
	if rank.Tier != "Aficionado" {
		t.Errorf("Expected overridden thresholds to keep built-in names, got %q", rank.Tier)
	}

	_, err = NewTierTableFromThresholds([]float64{0, 10}, []float64{0, 500})
	if err == nil {
		t.Error("Expected an error for wrong milestone count, got nil")
	}
}

// Helper functions

func floatPtr(f float64) *float64 {
	return &f
}

func strPtr(s string) *string {
	return &s
}

func assertFloatPtr(t *testing.T, field string, expected, got *float64) {
	t.Helper()
	if expected == nil {
		if got != nil {
			t.Errorf("Expected no %s target, got %v", field, *got)
		}
		return
	}
	if got == nil {
		t.Errorf("Expected %s target %v, got nil", field, *expected)
		return
	}
	if *got != *expected {
		t.Errorf("Expected %s target %v, got %v", field, *expected, *got)
	}
}
