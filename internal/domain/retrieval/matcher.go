package retrieval

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	apperrors "github.com/helpdeskhq/smartfaq/pkg/errors"
)

// MatchOptions tunes a single FindBestMatch call.
type MatchOptions struct {
	// Threshold overrides the configured acceptance threshold when positive.
	// Callers handling contact-support intents pass the lower contact value.
	Threshold float64
	// Language hints which lexicon applies; only French tables ship today.
	Language string
}

// Matcher computes composite match scores between a query and candidate rows.
type Matcher struct {
	cfg    Config
	lex    *Lexicon
	logger *slog.Logger
}

// NewMatcher wires up the answer matcher.
func NewMatcher(cfg Config, lex *Lexicon, logger *slog.Logger) (*Matcher, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.Wrap("invalid_config", "matcher config rejected", err)
	}
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Matcher{
		cfg:    cfg,
		lex:    lex,
		logger: logger.With("component", "retrieval.matcher"),
	}, nil
}

// ContactIntent reports whether the query looks like a request to reach
// support, for which callers use the lower acceptance threshold.
func (m *Matcher) ContactIntent(query string) bool {
	return m.lex.HasKeyPhrase(query)
}

// ContactThreshold exposes the configured contact-intent threshold.
func (m *Matcher) ContactThreshold() float64 {
	return m.cfg.ContactMatchThreshold
}

// FindBestMatch scores every question/answer pair in the candidate rows
// against the query and returns the best pair at or above the acceptance
// threshold, or nil. Rows with malformed QA payloads are skipped and logged;
// the scan never aborts.
func (m *Matcher) FindBestMatch(query string, rows []Row, opts MatchOptions) *MatchResult {
	query = strings.TrimSpace(query)
	if query == "" || len(rows) == 0 {
		return nil
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = m.cfg.MatchThreshold
	}

	normQuery := Normalize(query)
	queryStems := m.lex.ExtractWords(query)
	rawQueryWords := strings.Fields(normQuery)

	var best *MatchResult
	for _, row := range rows {
		entries, err := ParseQAEntries(row.QAData)
		if err != nil {
			m.logger.Warn("qa payload parse failed", "faq_id", row.ID, "error", err)
			continue
		}
		relevanceBonus := WeightStoredRelevance * storedRelevance(row, m.cfg)
		for _, entry := range entries {
			normQuestion := Normalize(entry.Question)
			if normQuestion == "" {
				continue
			}
			questionStems := m.lex.ExtractWords(entry.Question)

			exact := m.exactScore(normQuery, normQuestion)
			semantic := m.semanticScore(queryStems, questionStems, normQuestion)
			partial := partialScore(rawQueryWords, normQuestion)
			order := orderScore(queryStems, questionStems)

			composite := WeightExact*exact +
				WeightSemantic*semantic +
				WeightPartial*partial +
				WeightOrder*order +
				relevanceBonus

			if best != nil && composite <= best.Score {
				continue
			}
			best = &MatchResult{
				FaqID:     row.ID,
				Question:  entry.Question,
				Answer:    entry.Answer,
				Score:     composite,
				MatchType: matchType(exact, semantic, partial),
			}
		}
	}

	if best == nil || best.Score < threshold {
		return nil
	}
	return best
}

// exactScore grants full credit for containment either direction and key
// phrase credit when both sides express the same recognized intent.
func (m *Matcher) exactScore(normQuery, normQuestion string) float64 {
	if strings.Contains(normQuestion, normQuery) || strings.Contains(normQuery, normQuestion) {
		return 1.0
	}
	if m.lex.HasKeyPhrase(normQuery) && m.lex.HasKeyPhrase(normQuestion) {
		return CreditKeyPhrase
	}
	return 0
}

// semanticScore is the fraction of query words found in the question, with
// partial credit for synonym-only matches.
func (m *Matcher) semanticScore(queryStems, questionStems []string, normQuestion string) float64 {
	if len(queryStems) == 0 {
		return 0
	}
	questionSet := make(map[string]struct{}, len(questionStems))
	for _, stem := range questionStems {
		questionSet[stem] = struct{}{}
	}

	var credit float64
	for _, stem := range queryStems {
		if _, ok := questionSet[stem]; ok {
			credit += 1
			continue
		}
		for _, synonym := range m.lex.SynonymsOf(stem) {
			folded := m.lex.Stem(Normalize(synonym))
			if _, ok := questionSet[folded]; ok {
				credit += CreditSynonym
				break
			}
			if strings.Contains(normQuestion, Normalize(synonym)) {
				credit += CreditSynonym
				break
			}
		}
	}
	return credit / float64(len(queryStems))
}

// partialScore is the fraction of long-enough query words appearing as
// substrings of the question, each worth partial credit.
func partialScore(rawQueryWords []string, normQuestion string) float64 {
	var eligible, found int
	for _, word := range rawQueryWords {
		if len([]rune(word)) < MinPartialWordLen {
			continue
		}
		eligible++
		if strings.Contains(normQuestion, word) {
			found++
		}
	}
	if eligible == 0 {
		return 0
	}
	return CreditPartialWord * float64(found) / float64(eligible)
}

// orderScore is the fraction of adjacent query-word pairs appearing in the
// same relative order in the question. Gaps in the question are ignored;
// this is a cheap order signal, kept as is because its magnitude feeds the
// acceptance threshold.
func orderScore(queryStems, questionStems []string) float64 {
	if len(queryStems) < 2 {
		return 0
	}
	positions := make(map[string]int, len(questionStems))
	for i, stem := range questionStems {
		if _, ok := positions[stem]; !ok {
			positions[stem] = i
		}
	}
	var preserved int
	for i := 0; i < len(queryStems)-1; i++ {
		first, okFirst := positions[queryStems[i]]
		second, okSecond := positions[queryStems[i+1]]
		if okFirst && okSecond && first < second {
			preserved++
		}
	}
	return float64(preserved) / float64(len(queryStems)-1)
}

func matchType(exact, semantic, partial float64) MatchType {
	switch {
	case exact > ExactTypeCut:
		return MatchExact
	case semantic > SemanticTypeCut:
		return MatchSemantic
	case partial > PartialTypeCut:
		return MatchPartial
	default:
		return MatchWeak
	}
}

// ParseQAEntries normalizes the duck-typed QA payload (single object, list of
// objects, or a JSON string wrapping either) into a canonical entry list.
func ParseQAEntries(raw json.RawMessage) ([]QAEntry, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty qa payload")
	}
	switch trimmed[0] {
	case '"':
		// the sync collaborator sometimes double-encodes the payload
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, err
		}
		return ParseQAEntries(json.RawMessage(inner))
	case '[':
		var list []QAEntry
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return keepValid(list), nil
	default:
		var single QAEntry
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, err
		}
		return keepValid([]QAEntry{single}), nil
	}
}

func keepValid(entries []QAEntry) []QAEntry {
	valid := entries[:0]
	for _, entry := range entries {
		if strings.TrimSpace(entry.Question) != "" {
			valid = append(valid, entry)
		}
	}
	return valid
}
