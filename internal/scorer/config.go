// Package scorer implements the five-signal probability engine for 3D
// in-vitro lead qualification, plus batch ranking and tier classification.
package scorer

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Config holds the scoring vocabularies and signal caps. It is injected into
// the engine at construction and never mutated afterwards; swapping the
// vocabulary requires no change to the extractors.
type Config struct {
	// Role fit (max 30).
	SeniorityMarkers []string `yaml:"seniority_markers"`
	RoleKeywords     []string `yaml:"role_keywords"`
	FallbackTitles   []string `yaml:"fallback_titles"`

	// Scientific intent (max 40).
	ScientificKeywords []string `yaml:"scientific_keywords"`

	// Company intent (max 20): ordered ladder, first match wins.
	FundingLadder []FundingRung `yaml:"funding_ladder"`

	// Technographic (max 15).
	NAMsMarkers []string `yaml:"nams_markers"`

	// Location (max 10).
	HubLocations []string `yaml:"hub_locations"`
}

// FundingRung is one step of the funding-stage ladder. Stages are checked in
// declaration order; any matching keyword awards the rung's points.
type FundingRung struct {
	Keywords []string `yaml:"keywords"`
	Points   int      `yaml:"points"`
}

// Signal caps. These are contract, not tuning: the breakdown bounds are part
// of the output schema.
const (
	MaxScientificIntent = 40
	MaxRoleFit          = 30
	MaxCompanyIntent    = 20
	MaxTechnographic    = 15
	MaxLocation         = 10
	MaxTotal            = 100

	partialPublicationScore = 20
	namsBonus               = 5
)

// Default returns the canonical scoring vocabulary.
func Default() Config {
	return Config{
		SeniorityMarkers: []string{
			"director", "vp", "vice president", "head of", "chief",
		},
		RoleKeywords: []string{
			"toxicology", "toxicologist", "safety", "preclinical", "hepatic",
			"liver", "3d", "in vitro", "invitro", "in-vitro", "adme", "dmpk",
			"pharmacology", "assessment",
		},
		FallbackTitles: []string{"scientist", "research"},
		ScientificKeywords: []string{
			"dili", "drug-induced liver injury", "hepatotoxicity", "hepatotox",
			"3d culture", "3d model", "organoid", "spheroid", "organ-on-chip",
			"microphysiological", "mps", "nams", "new approach methodologies",
		},
		FundingLadder: []FundingRung{
			{Keywords: []string{"series a", "series b"}, Points: 20},
			{Keywords: []string{"series c", "series d"}, Points: 18},
			{Keywords: []string{"public"}, Points: 15},
			{Keywords: []string{"nih", "grant"}, Points: 10},
			{Keywords: []string{"seed"}, Points: 5},
		},
		NAMsMarkers: []string{"nams", "new approach"},
		HubLocations: []string{
			"boston", "cambridge", "san francisco", "south san francisco",
			"bay area", "palo alto", "menlo park", "basel", "switzerland",
			"london", "oxford", "cambridge uk", "stevenage", "uk",
			"new jersey", "san diego",
		},
	}
}

// LoadConfig reads a vocabulary override file (YAML) and merges it over the
// defaults. Empty sections keep the default vocabulary.
func LoadConfig(path string) (Config, error) {
	base := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, eris.Wrapf(err, "scorer: read vocab file %s", path)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Config{}, eris.Wrapf(err, "scorer: parse vocab file %s", path)
	}

	if len(override.SeniorityMarkers) > 0 {
		base.SeniorityMarkers = override.SeniorityMarkers
	}
	if len(override.RoleKeywords) > 0 {
		base.RoleKeywords = override.RoleKeywords
	}
	if len(override.FallbackTitles) > 0 {
		base.FallbackTitles = override.FallbackTitles
	}
	if len(override.ScientificKeywords) > 0 {
		base.ScientificKeywords = override.ScientificKeywords
	}
	if len(override.FundingLadder) > 0 {
		base.FundingLadder = override.FundingLadder
	}
	if len(override.NAMsMarkers) > 0 {
		base.NAMsMarkers = override.NAMsMarkers
	}
	if len(override.HubLocations) > 0 {
		base.HubLocations = override.HubLocations
	}

	if err := Validate(base); err != nil {
		return Config{}, err
	}
	return base, nil
}

// Validate checks that a Config is internally consistent.
func Validate(c Config) error {
	var errs []string

	vocab := map[string][]string{
		"seniority_markers":   c.SeniorityMarkers,
		"role_keywords":       c.RoleKeywords,
		"scientific_keywords": c.ScientificKeywords,
		"nams_markers":        c.NAMsMarkers,
		"hub_locations":       c.HubLocations,
	}
	for name, kws := range vocab {
		if len(kws) == 0 {
			errs = append(errs, fmt.Sprintf("%s must not be empty", name))
		}
		for _, kw := range kws {
			if strings.TrimSpace(kw) == "" {
				errs = append(errs, fmt.Sprintf("%s contains a blank keyword", name))
				break
			}
		}
	}

	if len(c.FundingLadder) == 0 {
		errs = append(errs, "funding_ladder must not be empty")
	}
	prev := MaxCompanyIntent + 1
	for i, rung := range c.FundingLadder {
		if len(rung.Keywords) == 0 {
			errs = append(errs, fmt.Sprintf("funding_ladder[%d] has no keywords", i))
		}
		if rung.Points < 0 || rung.Points > MaxCompanyIntent {
			errs = append(errs, fmt.Sprintf("funding_ladder[%d] points %d outside [0,%d]", i, rung.Points, MaxCompanyIntent))
		}
		// First match wins, so rungs must be declared highest-first.
		if rung.Points >= prev {
			errs = append(errs, fmt.Sprintf("funding_ladder[%d] points must descend", i))
		}
		prev = rung.Points
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
