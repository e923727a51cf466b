package faqrepo

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdeskhq/smartfaq/internal/domain/retrieval"
)

// PostgresRepository implements retrieval.CandidateRepository over the faqs
// table populated by the sync collaborator.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		pool:   pool,
		logger: logger.With("component", "faqrepo.postgres"),
	}
}

const rowColumns = "id, title, language_code, rubrique, product_ref, meta_keywords, meta_description, qa_data, last_updated"

// prefixedRowColumns qualifies every column with the given table alias.
func prefixedRowColumns(alias string) string {
	cols := strings.Split(rowColumns, ", ")
	for i, col := range cols {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ")
}

// SearchFaqs unions the four search strategies, deduplicates by record id
// keeping the highest relevance, applies the post-pass boosts and returns
// rows sorted by final score then recency.
func (r *PostgresRepository) SearchFaqs(ctx context.Context, query string, filters retrieval.SearchFilters) ([]retrieval.Row, error) {
	merged := make(map[int64]retrieval.Row)
	order := make([]int64, 0, 16)

	strategies := []func(context.Context, string, retrieval.SearchFilters) ([]retrieval.Row, error){
		r.fullTextSearch,
		r.jsonContentSearch,
		r.wordMatchSearch,
		r.metadataSearch,
	}
	var firstErr error
	for _, strategy := range strategies {
		rows, err := strategy(ctx, query, filters)
		if err != nil {
			// one failing strategy must not empty the whole union
			if firstErr == nil {
				firstErr = err
			}
			r.logger.Warn("search strategy failed", "query", query, "error", err)
			continue
		}
		mergeRows(merged, &order, rows)
	}
	if len(order) == 0 {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, nil
	}

	out := make([]retrieval.Row, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	enhanceRows(query, out)
	sortRows(out)
	return truncateRows(out, filters.Limit), nil
}

// SearchFaqContent is the pattern-only fallback search over title, keywords,
// description and the QA payload text.
func (r *PostgresRepository) SearchFaqContent(ctx context.Context, query string, filters retrieval.SearchFilters) ([]retrieval.Row, error) {
	base := fmt.Sprintf(`SELECT %s, %.2f::float8 AS relevance FROM faqs WHERE is_active
		AND (title ILIKE $1 OR meta_keywords ILIKE $1 OR meta_description ILIKE $1 OR qa_data::text ILIKE $1)`,
		rowColumns, tierMetadata)
	sqlText, args := buildQuery(base, []any{likePattern(query)}, "", filters, "ORDER BY last_updated DESC")
	return r.queryRows(ctx, sqlText, args, "content")
}

// GetFaqs is a direct filtered lookup used by callers outside the retrieval
// path.
func (r *PostgresRepository) GetFaqs(ctx context.Context, filters retrieval.SearchFilters) ([]retrieval.Row, error) {
	base := fmt.Sprintf("SELECT %s, 0::float8 AS relevance FROM faqs WHERE is_active", rowColumns)
	sqlText, args := buildQuery(base, nil, "", filters, "ORDER BY last_updated DESC")
	return r.queryRows(ctx, sqlText, args, "")
}

func (r *PostgresRepository) fullTextSearch(ctx context.Context, query string, filters retrieval.SearchFilters) ([]retrieval.Row, error) {
	const vector = "to_tsvector('french', coalesce(title, '') || ' ' || coalesce(qa_data::text, ''))"
	base := fmt.Sprintf(`SELECT %s, ts_rank(%s, plainto_tsquery('french', $1))::float8 AS relevance
		FROM faqs WHERE is_active AND %s @@ plainto_tsquery('french', $1)`,
		rowColumns, vector, vector)
	sqlText, args := buildQuery(base, []any{query}, "", filters, "ORDER BY relevance DESC")
	return r.queryRows(ctx, sqlText, args, "fulltext")
}

// jsonContentSearch scores pattern hits inside the QA payload: exact
// substring beats word-boundary matches, question fields beat answer fields.
// Single-object payloads are wrapped into one-element arrays before
// unnesting, so both payload shapes rank the same way.
func (r *PostgresRepository) jsonContentSearch(ctx context.Context, query string, filters retrieval.SearchFilters) ([]retrieval.Row, error) {
	base := fmt.Sprintf(`SELECT DISTINCT ON (f.id) %s,
			CASE
				WHEN pair->>'question' ILIKE $1 THEN %.2f
				WHEN pair->>'question' ~* $2 THEN %.2f
				WHEN pair->>'answer' ILIKE $1 THEN %.2f
				ELSE %.2f
			END::float8 AS relevance
		FROM faqs f
		CROSS JOIN LATERAL jsonb_array_elements(
			CASE WHEN jsonb_typeof(f.qa_data) = 'array' THEN f.qa_data ELSE jsonb_build_array(f.qa_data) END
		) AS pair
		WHERE f.is_active
			AND (pair->>'question' ILIKE $1 OR pair->>'question' ~* $2
				OR pair->>'answer' ILIKE $1 OR pair->>'answer' ~* $2)`,
		prefixedRowColumns("f"),
		tierJSONExactQuestion, tierJSONWordQuestion, tierJSONExactAnswer, tierJSONWordAnswer)
	args := []any{likePattern(query), wordBoundaryPattern(query)}
	// DISTINCT ON needs the leading id sort; re-rank by relevance outside.
	sqlText, args := buildQuery(base, args, "f.", filters, "ORDER BY f.id, relevance DESC")
	sqlText = "SELECT * FROM (" + sqlText + ") ranked ORDER BY relevance DESC"
	return r.queryRows(ctx, sqlText, args, "json")
}

// wordMatchSearch runs a per-significant-word substring search across title
// and QA content at a fixed low tier.
func (r *PostgresRepository) wordMatchSearch(ctx context.Context, query string, filters retrieval.SearchFilters) ([]retrieval.Row, error) {
	words := significantWords(query)
	if len(words) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(words))
	conds := make([]string, 0, len(words))
	for _, word := range words {
		args = append(args, likePattern(word))
		placeholder := fmt.Sprintf("$%d", len(args))
		conds = append(conds, fmt.Sprintf("(title ILIKE %s OR qa_data::text ILIKE %s)", placeholder, placeholder))
	}
	base := fmt.Sprintf("SELECT %s, %.2f::float8 AS relevance FROM faqs WHERE is_active AND (%s)",
		rowColumns, tierWordMatch, strings.Join(conds, " OR "))
	sqlText, args := buildQuery(base, args, "", filters, "ORDER BY last_updated DESC")
	return r.queryRows(ctx, sqlText, args, "word")
}

// metadataSearch is the lowest tier: title, keywords and description only.
func (r *PostgresRepository) metadataSearch(ctx context.Context, query string, filters retrieval.SearchFilters) ([]retrieval.Row, error) {
	base := fmt.Sprintf(`SELECT %s, %.2f::float8 AS relevance FROM faqs WHERE is_active
		AND (title ILIKE $1 OR meta_keywords ILIKE $1 OR meta_description ILIKE $1)`,
		rowColumns, tierMetadata)
	sqlText, args := buildQuery(base, []any{likePattern(query)}, "", filters, "ORDER BY last_updated DESC")
	return r.queryRows(ctx, sqlText, args, "metadata")
}

func (r *PostgresRepository) queryRows(ctx context.Context, sqlText string, args []any, strategy string) ([]retrieval.Row, error) {
	rows, err := r.pool.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []retrieval.Row
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		record.Strategy = strategy
		out = append(out, record)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (retrieval.Row, error) {
	var (
		record      retrieval.Row
		language    sql.NullString
		category    sql.NullString
		productRef  sql.NullString
		keywords    sql.NullString
		description sql.NullString
		qaData      []byte
		updated     sql.NullTime
		relevance   sql.NullFloat64
	)
	if err := row.Scan(&record.ID, &record.Title, &language, &category, &productRef,
		&keywords, &description, &qaData, &updated, &relevance); err != nil {
		return retrieval.Row{}, err
	}
	record.LanguageCode = language.String
	record.Category = retrieval.Category(category.String)
	record.ProductRef = productRef.String
	record.MetaKeywords = keywords.String
	record.MetaDescription = description.String
	record.QAData = qaData
	if updated.Valid {
		record.LastUpdated = updated.Time
	}
	if relevance.Valid {
		record.Relevance = relevance.Float64
	}
	return record, nil
}

// buildQuery appends the optional filter equality conditions and a limit to
// a base statement that already opened its WHERE clause.
func buildQuery(base string, args []any, columnPrefix string, filters retrieval.SearchFilters, orderBy string) (string, []any) {
	var b strings.Builder
	b.WriteString(base)
	appendCond := func(column string, value any) {
		args = append(args, value)
		fmt.Fprintf(&b, " AND %s%s = $%d", columnPrefix, column, len(args))
	}
	if filters.Language != "" {
		appendCond("language_code", filters.Language)
	}
	if filters.Category != "" {
		appendCond("rubrique", string(filters.Category))
	}
	if filters.ProductRef != "" {
		appendCond("product_ref", filters.ProductRef)
	}
	if orderBy != "" {
		b.WriteString(" " + orderBy)
	}
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}

func likePattern(text string) string {
	escaped := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(text)
	return "%" + escaped + "%"
}

var regexpMeta = regexp.MustCompile(`[\\.+*?()|\[\]{}^$]`)

// wordBoundaryPattern builds a case-insensitive \m...\M regex for the query.
func wordBoundaryPattern(text string) string {
	escaped := regexpMeta.ReplaceAllString(text, `\$0`)
	return `\m` + escaped + `\M`
}

var _ retrieval.CandidateRepository = (*PostgresRepository)(nil)
