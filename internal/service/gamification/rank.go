// Package gamification computes collector ranks from collection size and
// estimated collection value, and maintains persisted rank snapshots for
// population-level queries.
package gamification

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed tiers.yaml
var defaultTiersYAML []byte

// TierMilestone defines one collector tier and the thresholds at which it is
// reached on each dimension. Tiers are ordered lowest to highest.
type TierMilestone struct {
	Name           string  `yaml:"name" json:"name"`
	AlbumThreshold float64 `yaml:"albums" json:"album_threshold"`
	ValueThreshold float64 `yaml:"value" json:"value_threshold"`
}

// TierTable is a validated, ordered set of tier milestones.
type TierTable struct {
	tiers []TierMilestone
}

// NewTierTable validates the milestone sequence and returns a table. The first
// tier must start at zero on both dimensions and thresholds must be strictly
// increasing, so progress denominators are never zero.
func NewTierTable(tiers []TierMilestone) (*TierTable, error) {
	if len(tiers) < 2 {
		return nil, fmt.Errorf("tier table needs at least 2 tiers, got %d", len(tiers))
	}
	if tiers[0].AlbumThreshold != 0 || tiers[0].ValueThreshold != 0 {
		return nil, fmt.Errorf("tier %q must have zero thresholds", tiers[0].Name)
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].Name == "" {
			return nil, fmt.Errorf("tier at index %d has no name", i)
		}
		if tiers[i].AlbumThreshold <= tiers[i-1].AlbumThreshold {
			return nil, fmt.Errorf("album threshold for %q (%v) must exceed %q (%v)",
				tiers[i].Name, tiers[i].AlbumThreshold, tiers[i-1].Name, tiers[i-1].AlbumThreshold)
		}
		if tiers[i].ValueThreshold <= tiers[i-1].ValueThreshold {
			return nil, fmt.Errorf("value threshold for %q (%v) must exceed %q (%v)",
				tiers[i].Name, tiers[i].ValueThreshold, tiers[i-1].Name, tiers[i-1].ValueThreshold)
		}
	}
	out := make([]TierMilestone, len(tiers))
	copy(out, tiers)
	return &TierTable{tiers: out}, nil
}

// NewTierTableFromThresholds builds a table using the built-in tier names with
// overridden thresholds, one pair per tier.
func NewTierTableFromThresholds(albumMilestones, valueMilestones []float64) (*TierTable, error) {
	defaults := DefaultTierTable().Tiers()
	if len(albumMilestones) != len(defaults) || len(valueMilestones) != len(defaults) {
		return nil, fmt.Errorf("expected %d milestones per dimension, got %d albums / %d values",
			len(defaults), len(albumMilestones), len(valueMilestones))
	}
	tiers := make([]TierMilestone, len(defaults))
	for i, d := range defaults {
		tiers[i] = TierMilestone{
			Name:           d.Name,
			AlbumThreshold: albumMilestones[i],
			ValueThreshold: valueMilestones[i],
		}
	}
	return NewTierTable(tiers)
}

var defaultTable = mustLoadDefaultTable()

func mustLoadDefaultTable() *TierTable {
	var doc struct {
		Tiers []TierMilestone `yaml:"tiers"`
	}
	if err := yaml.Unmarshal(defaultTiersYAML, &doc); err != nil {
		panic(fmt.Sprintf("gamification: embedded tier table is malformed: %v", err))
	}
	table, err := NewTierTable(doc.Tiers)
	if err != nil {
		panic(fmt.Sprintf("gamification: embedded tier table is invalid: %v", err))
	}
	return table
}

// DefaultTierTable returns the built-in six-tier table.
func DefaultTierTable() *TierTable {
	return defaultTable
}

// Tiers returns the ordered milestones.
func (t *TierTable) Tiers() []TierMilestone {
	out := make([]TierMilestone, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// MaxLevel returns the highest level index.
func (t *TierTable) MaxLevel() int {
	return len(t.tiers) - 1
}

// TierName returns the name of the tier at the given level index.
func (t *TierTable) TierName(level int) string {
	return t.tiers[level].Name
}

func (t *TierTable) albumMilestones() []float64 {
	out := make([]float64, len(t.tiers))
	for i, tier := range t.tiers {
		out[i] = tier.AlbumThreshold
	}
	return out
}

func (t *TierTable) valueMilestones() []float64 {
	out := make([]float64, len(t.tiers))
	for i, tier := range t.tiers {
		out[i] = tier.ValueThreshold
	}
	return out
}

// LevelResult is the outcome of evaluating one dimension against its milestones.
type LevelResult struct {
	LevelIndex     int      `json:"level_index"`
	ProgressToNext float64  `json:"progress_to_next"`
	NextTarget     *float64 `json:"next_target,omitempty"`
}

// NextTargets carries the remaining thresholds a collector can still advance on.
type NextTargets struct {
	NextAlbums *float64 `json:"next_albums,omitempty"`
	NextValue  *float64 `json:"next_value,omitempty"`
}

// CollectorRank is the composed rank across both dimensions. The composite
// level is always gated by the weaker dimension.
type CollectorRank struct {
	Tier                string       `json:"tier"`
	LevelIndex          int          `json:"level_index"`
	ProgressToNext      float64      `json:"progress_to_next"`
	AlbumLevelIndex     int          `json:"album_level_index"`
	AlbumProgressToNext float64      `json:"album_progress_to_next"`
	ValueLevelIndex     int          `json:"value_level_index"`
	ValueProgressToNext float64      `json:"value_progress_to_next"`
	NextTargets         *NextTargets `json:"next_targets,omitempty"`
	NextTier            *string      `json:"next_tier,omitempty"`
}

// computeLevel finds the highest milestone index the current value has
// reached. Reaching a threshold exactly counts as achieving that level.
// Progress toward the next milestone is clamped to [0,1], so negative inputs
// floor at level 0 with zero progress.
func computeLevel(current float64, milestones []float64) LevelResult {
	level := 0
	for i := range milestones {
		if current >= milestones[i] {
			level = i
		}
	}

	if level >= len(milestones)-1 {
		return LevelResult{LevelIndex: level, ProgressToNext: 1.0}
	}

	base := milestones[level]
	next := milestones[level+1]
	progress := clamp01((current - base) / (next - base))
	return LevelResult{LevelIndex: level, ProgressToNext: progress, NextTarget: &next}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ComputeCollectorRank composes album-count and collection-value levels into a
// single collector rank. Pure and deterministic; safe for concurrent use.
func (t *TierTable) ComputeCollectorRank(totalAlbums, collectionValue float64) CollectorRank {
	album := computeLevel(totalAlbums, t.albumMilestones())
	value := computeLevel(collectionValue, t.valueMilestones())

	minLevel := album.LevelIndex
	if value.LevelIndex < minLevel {
		minLevel = value.LevelIndex
	}

	// Limiting dimension: the lower level, or on a tie whichever has less
	// progress. Album wins exact ties so progress display is stable.
	limitingAlbum := false
	switch {
	case album.LevelIndex < value.LevelIndex:
		limitingAlbum = true
	case value.LevelIndex < album.LevelIndex:
		limitingAlbum = false
	default:
		limitingAlbum = album.ProgressToNext <= value.ProgressToNext
	}

	progress := value.ProgressToNext
	if limitingAlbum {
		progress = album.ProgressToNext
	}

	targets := &NextTargets{}
	if album.LevelIndex == value.LevelIndex {
		// Tied levels: both dimensions still advancing keep their targets.
		targets.NextAlbums = album.NextTarget
		targets.NextValue = value.NextTarget
	} else if limitingAlbum {
		targets.NextAlbums = album.NextTarget
	} else {
		targets.NextValue = value.NextTarget
	}
	if targets.NextAlbums == nil && targets.NextValue == nil {
		targets = nil
	}

	var nextTier *string
	if minLevel < t.MaxLevel() {
		name := t.tiers[minLevel+1].Name
		nextTier = &name
	}

	return CollectorRank{
		Tier:                t.tiers[minLevel].Name,
		LevelIndex:          minLevel,
		ProgressToNext:      progress,
		AlbumLevelIndex:     album.LevelIndex,
		AlbumProgressToNext: album.ProgressToNext,
		ValueLevelIndex:     value.LevelIndex,
		ValueProgressToNext: value.ProgressToNext,
		NextTargets:         targets,
		NextTier:            nextTier,
	}
}
