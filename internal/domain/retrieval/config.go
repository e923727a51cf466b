package retrieval

import (
	"errors"
	"time"
)

// Composite match weights and per-signal credits. These are tuned constants
// central to observable behavior; tests pin their values.
const (
	WeightExact           = 0.4
	WeightSemantic        = 0.3
	WeightPartial         = 0.2
	WeightOrder           = 0.1
	WeightStoredRelevance = 0.1

	CreditKeyPhrase   = 0.9
	CreditSynonym     = 0.8
	CreditPartialWord = 0.7

	// MinPartialWordLen is the minimum query word length considered by the
	// partial-substring signal.
	MinPartialWordLen = 4

	// Match-type cuts over the individual sub-scores.
	ExactTypeCut    = 0.8
	SemanticTypeCut = 0.7
	PartialTypeCut  = 0.6
)

// Config holds the runtime knobs of the retrieval core.
type Config struct {
	MaxVariants        int
	VariantDecay       float64
	SynonymWeightFloor float64

	TopK             int
	MinScore         float64
	DefaultRelevance float64
	ProductBoost     float64
	CategoryBoost    float64
	RecencyBoostMin  float64
	RecencyBoostMax  float64
	RecencyWindow    time.Duration

	ResultLimit int
	CacheTTL    time.Duration

	MatchThreshold        float64
	ContactMatchThreshold float64
}

// DefaultConfig returns the tuned production defaults.
func DefaultConfig() Config {
	return Config{
		MaxVariants:           4,
		VariantDecay:          0.15,
		SynonymWeightFloor:    0.3,
		TopK:                  3,
		MinScore:              0.35,
		DefaultRelevance:      0.2,
		ProductBoost:          0.15,
		CategoryBoost:         0.1,
		RecencyBoostMin:       0.1,
		RecencyBoostMax:       0.2,
		RecencyWindow:         30 * 24 * time.Hour,
		ResultLimit:           10,
		CacheTTL:              5 * time.Minute,
		MatchThreshold:        0.3,
		ContactMatchThreshold: 0.2,
	}
}

// withDefaults fills zero-valued knobs with the production defaults.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxVariants == 0 {
		c.MaxVariants = def.MaxVariants
	}
	if c.VariantDecay == 0 {
		c.VariantDecay = def.VariantDecay
	}
	if c.SynonymWeightFloor == 0 {
		c.SynonymWeightFloor = def.SynonymWeightFloor
	}
	if c.TopK == 0 {
		c.TopK = def.TopK
	}
	if c.MinScore == 0 {
		c.MinScore = def.MinScore
	}
	if c.DefaultRelevance == 0 {
		c.DefaultRelevance = def.DefaultRelevance
	}
	if c.ProductBoost == 0 {
		c.ProductBoost = def.ProductBoost
	}
	if c.CategoryBoost == 0 {
		c.CategoryBoost = def.CategoryBoost
	}
	if c.RecencyBoostMin == 0 {
		c.RecencyBoostMin = def.RecencyBoostMin
	}
	if c.RecencyBoostMax == 0 {
		c.RecencyBoostMax = def.RecencyBoostMax
	}
	if c.RecencyWindow == 0 {
		c.RecencyWindow = def.RecencyWindow
	}
	if c.ResultLimit == 0 {
		c.ResultLimit = def.ResultLimit
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = def.CacheTTL
	}
	if c.MatchThreshold == 0 {
		c.MatchThreshold = def.MatchThreshold
	}
	if c.ContactMatchThreshold == 0 {
		c.ContactMatchThreshold = def.ContactMatchThreshold
	}
	return c
}

// Validate rejects configurations that would corrupt scoring. Construction is
// the only place expected to raise; runtime failures degrade to empty results.
func (c Config) Validate() error {
	if c.MaxVariants <= 0 {
		return errors.New("maxVariants must be positive")
	}
	if c.VariantDecay <= 0 || c.VariantDecay >= 1 {
		return errors.New("variantDecay must be in (0, 1)")
	}
	if c.SynonymWeightFloor <= 0 || c.SynonymWeightFloor > 1 {
		return errors.New("synonymWeightFloor must be in (0, 1]")
	}
	if c.TopK <= 0 {
		return errors.New("topK must be positive")
	}
	if c.MinScore < 0 {
		return errors.New("minScore cannot be negative")
	}
	if c.DefaultRelevance <= 0 {
		return errors.New("defaultRelevance must be positive")
	}
	if c.RecencyBoostMax < c.RecencyBoostMin {
		return errors.New("recencyBoostMax cannot be below recencyBoostMin")
	}
	if c.RecencyWindow <= 0 {
		return errors.New("recencyWindow must be positive")
	}
	if c.ResultLimit <= 0 {
		return errors.New("resultLimit must be positive")
	}
	if c.CacheTTL < 0 {
		return errors.New("cacheTtl cannot be negative")
	}
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return errors.New("matchThreshold must be in (0, 1]")
	}
	if c.ContactMatchThreshold <= 0 || c.ContactMatchThreshold > 1 {
		return errors.New("contactMatchThreshold must be in (0, 1]")
	}
	return nil
}
