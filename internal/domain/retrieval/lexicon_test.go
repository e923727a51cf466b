package retrieval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSynonymsOfBidirectional(t *testing.T) {
	lex := DefaultLexicon()

	require.Equal(t, []string{"aide", "assistance", "sav", "conseiller"}, lex.SynonymsOf("support"))
	// a related term resolves to its canonical plus siblings
	require.Equal(t, []string{"support", "assistance", "sav", "conseiller"}, lex.SynonymsOf("aide"))
	require.Nil(t, lex.SynonymsOf("inconnu"))
}

func TestExpand(t *testing.T) {
	lex := DefaultLexicon()

	rewrites := lex.Expand("contacter le support")
	require.Equal(t, []string{"contact le support", "contacter le aide"}, rewrites)

	require.Empty(t, lex.Expand("bonjour monde"))
}

func TestHasKeyPhrase(t *testing.T) {
	lex := DefaultLexicon()

	require.True(t, lex.HasKeyPhrase("Comment puis-je contacter le support ?"))
	require.True(t, lex.HasKeyPhrase("Je veux parler à un conseiller"))
	require.False(t, lex.HasKeyPhrase("Quel est le prix ?"))
}

func TestLoadLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	raw := `
stopWords: ["les", "des"]
suffixes: ["er", "s"]
synonyms:
  prix: ["tarif", "cout"]
keyPhrases: ["contacter support"]
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	lex, err := LoadLexicon(path)
	require.NoError(t, err)
	require.Equal(t, "command", lex.Stem("commander"))
	require.Equal(t, []string{"tarif", "cout"}, lex.SynonymsOf("prix"))
	require.Equal(t, []string{"prix", "cout"}, lex.SynonymsOf("tarif"))
	require.True(t, lex.isStopWord("les"))
	require.False(t, lex.isStopWord("prix"))
}

func TestLoadLexiconMissingFile(t *testing.T) {
	_, err := LoadLexicon(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
