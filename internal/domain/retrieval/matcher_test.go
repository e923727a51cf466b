package retrieval

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func contactRow() Row {
	return Row{
		ID:        7,
		Title:     "Contacter le support",
		Relevance: 0.8,
		QAData:    json.RawMessage(`[{"question":"Comment contacter le support ?","answer":"Écrivez-nous à support@example.com."}]`),
	}
}

func TestFindBestMatchContactScenario(t *testing.T) {
	m := newTestMatcher(t)

	match := m.FindBestMatch("Comment puis-je contacter le support ?", []Row{contactRow()}, MatchOptions{})
	require.NotNil(t, match)
	require.Equal(t, int64(7), match.FaqID)
	require.Equal(t, "Comment contacter le support ?", match.Question)
	require.Equal(t, MatchExact, match.MatchType)
	require.InDelta(t, 0.945, match.Score, 1e-9)
}

func TestFindBestMatchRejectsUnrelatedQuery(t *testing.T) {
	m := newTestMatcher(t)

	match := m.FindBestMatch("bonjour météo demain", []Row{contactRow()}, MatchOptions{})
	require.Nil(t, match)
}

func TestFindBestMatchEmptyInputs(t *testing.T) {
	m := newTestMatcher(t)

	require.Nil(t, m.FindBestMatch("", []Row{contactRow()}, MatchOptions{}))
	require.Nil(t, m.FindBestMatch("contacter le support", nil, MatchOptions{}))
}

func TestFindBestMatchThresholdOverride(t *testing.T) {
	m := newTestMatcher(t)

	match := m.FindBestMatch("Comment puis-je contacter le support ?", []Row{contactRow()}, MatchOptions{Threshold: 0.99})
	require.Nil(t, match)
}

func TestFindBestMatchSkipsMalformedPayload(t *testing.T) {
	m := newTestMatcher(t)
	rows := []Row{
		{ID: 1, QAData: json.RawMessage(`{not json`)},
		contactRow(),
	}

	match := m.FindBestMatch("Comment puis-je contacter le support ?", rows, MatchOptions{})
	require.NotNil(t, match)
	require.Equal(t, int64(7), match.FaqID)
}

func TestFindBestMatchSingleObjectPayload(t *testing.T) {
	m := newTestMatcher(t)
	rows := []Row{{
		ID:     12,
		QAData: json.RawMessage(`{"question":"Quels sont les délais de livraison ?","answer":"Sous 48h."}`),
	}}

	match := m.FindBestMatch("délai de livraison", rows, MatchOptions{})
	require.NotNil(t, match)
	require.Equal(t, MatchSemantic, match.MatchType)
	require.InDelta(t, 0.56, match.Score, 1e-9)
}

func TestContactIntent(t *testing.T) {
	m := newTestMatcher(t)

	require.True(t, m.ContactIntent("Je veux parler à un conseiller"))
	require.False(t, m.ContactIntent("Quel est le prix ?"))
	require.Equal(t, DefaultConfig().ContactMatchThreshold, m.ContactThreshold())
}

func TestParseQAEntries(t *testing.T) {
	entries, err := ParseQAEntries(json.RawMessage(`[{"question":"Q1","answer":"A1"},{"question":"  ","answer":"dropped"}]`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Q1", entries[0].Question)
}

func TestParseQAEntriesDoubleEncoded(t *testing.T) {
	entries, err := ParseQAEntries(json.RawMessage(`"[{\"question\":\"Q1\",\"answer\":\"A1\"}]"`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "A1", entries[0].Answer)
}

func TestParseQAEntriesEmptyPayload(t *testing.T) {
	_, err := ParseQAEntries(nil)
	require.Error(t, err)
}

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := NewMatcher(DefaultConfig(), nil, testLogger())
	require.NoError(t, err)
	return m
}
