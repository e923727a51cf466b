package retrieval

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Lexicon bundles the French language tables driving normalization, stemming
// and synonym expansion. The tables are domain data, not logic; a reduced
// lexicon can be loaded from YAML for tests or other deployments.
type Lexicon struct {
	StopWords []string            `yaml:"stopWords"`
	Suffixes  []string            `yaml:"suffixes"`
	Synonyms  map[string][]string `yaml:"synonyms"`
	// KeyPhrases are intent phrases (e.g. ways of asking to reach support)
	// treated as near-equivalent during exact matching.
	KeyPhrases []string `yaml:"keyPhrases"`

	stopSet map[string]struct{}
	reverse map[string][]string
}

// DefaultLexicon returns the built-in French tables.
func DefaultLexicon() *Lexicon {
	lex := &Lexicon{
		StopWords: []string{
			"les", "des", "une", "aux", "est", "sont", "etre", "avoir",
			"ete", "cette", "ces", "celui", "celle", "mais", "donc",
			"pour", "avec", "sans", "dans", "sur", "sous", "par", "pas",
			"plus", "moins", "tres", "tout", "tous", "toute", "toutes",
			"que", "qui", "quoi", "quel", "quelle", "quels", "quelles",
			"comment", "pourquoi", "quand", "combien", "puis", "peut",
			"peux", "pouvez", "faire", "fait", "faut", "vous", "nous",
			"ils", "elles", "elle", "mon", "mes", "ton", "tes", "ses",
			"votre", "vos", "notre", "nos", "leur", "leurs",
		},
		// First matching suffix in table order wins; no iterative stripping.
		Suffixes: []string{
			"issement", "issant", "ations", "ation", "tions", "tion",
			"sions", "sion", "ements", "ement", "ments", "ment",
			"ances", "ance", "ences", "ence", "euses", "euse",
			"eurs", "eur", "ables", "able", "antes", "ante", "ants", "ant",
			"ents", "ent", "ees", "ee", "ers", "er", "ez",
			"es", "e", "s",
		},
		Synonyms: map[string][]string{
			"support":     {"aide", "assistance", "sav", "conseiller"},
			"contact":     {"contacter", "joindre", "appeler", "ecrire", "email"},
			"horaire":     {"heure", "ouverture", "fermeture", "disponibilite"},
			"prix":        {"tarif", "cout", "montant", "facture"},
			"compte":      {"profil", "identifiant", "connexion", "login"},
			"produit":     {"article", "offre", "catalogue"},
			"paiement":    {"reglement", "virement", "prelevement", "facturation"},
			"inscription": {"enregistrement", "creation", "adhesion"},
			"livraison":   {"expedition", "envoi", "colis", "delai"},
			"annulation":  {"annuler", "resilier", "resiliation", "remboursement"},
			"probleme":    {"erreur", "panne", "souci", "dysfonctionnement"},
			"commande":    {"achat", "panier", "commander"},
		},
		KeyPhrases: []string{
			"contacter support",
			"joindre support",
			"contacter aide",
			"parler conseiller",
		},
	}
	lex.build()
	return lex
}

// LoadLexicon reads a lexicon from a YAML resource.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon file: %w", err)
	}
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon file: %w", err)
	}
	lex.build()
	return &lex, nil
}

// build derives the lookup sets. The reverse synonym index is constructed in
// sorted key order so lookups stay deterministic.
func (l *Lexicon) build() {
	l.stopSet = make(map[string]struct{}, len(l.StopWords))
	for _, w := range l.StopWords {
		l.stopSet[w] = struct{}{}
	}

	l.reverse = make(map[string][]string)
	canonicals := make([]string, 0, len(l.Synonyms))
	for canonical := range l.Synonyms {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)
	for _, canonical := range canonicals {
		for _, related := range l.Synonyms[canonical] {
			group := []string{canonical}
			for _, sibling := range l.Synonyms[canonical] {
				if sibling != related {
					group = append(group, sibling)
				}
			}
			l.reverse[related] = append(l.reverse[related], group...)
		}
	}
}

func (l *Lexicon) isStopWord(word string) bool {
	_, ok := l.stopSet[word]
	return ok
}
