package sqlite

import (
	"strings"

	"github.com/docvaultapp/docvault-server/internal/domain"
)

// whereBuilder accumulates typed predicate clauses and a parallel parameter
// list. The count query, the page query, and every facet query for a search
// are built from the same builder, so their predicate sets can never diverge.
type whereBuilder struct {
	clauses []string
	args    []any
}

// add appends one clause and its parameters.
func (b *whereBuilder) add(clause string, args ...any) {
	b.clauses = append(b.clauses, clause)
	b.args = append(b.args, args...)
}

// where renders the accumulated clauses as a WHERE fragment, or returns an
// empty string when no clause was added.
func (b *whereBuilder) where() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

// params returns a copy of the parameter list, optionally followed by extra
// trailing parameters (LIMIT/OFFSET and the like).
func (b *whereBuilder) params(extra ...any) []any {
	out := make([]any, 0, len(b.args)+len(extra))
	out = append(out, b.args...)
	out = append(out, extra...)
	return out
}

// escapeLike escapes LIKE wildcards in user input so a keyword of "100%" only
// matches the literal text. Patterns built from it must use ESCAPE '\'.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// containsPattern builds a case-insensitive substring LIKE pattern.
func containsPattern(s string) string {
	return "%" + escapeLike(strings.ToLower(s)) + "%"
}

// aliasColumns prefixes every column in a comma-separated column list with a
// table alias, for use in queries that name the table.
func aliasColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// placeholders returns a "?, ?, ?" list of the given length.
func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// baseOptions controls which criteria dimensions participate in the base
// predicate set. Facet queries exclude the dimension being broken out.
type baseOptions struct {
	withTags bool
	withType bool
}

// basePredicates builds the shared predicate set for a search: soft-delete
// exclusion, keyword, visibility, date range, and (per options) tag and type
// filters. Visibility is enforced here, at the query level, so no caller can
// receive a row the requester may not see.
func basePredicates(c domain.SearchCriteria, requesterID string, includeGranted bool, opts baseOptions) *whereBuilder {
	b := &whereBuilder{}

	b.add("d.deleted_at IS NULL")

	if c.Keyword != "" {
		p := containsPattern(c.Keyword)
		b.add(`(LOWER(d.title) LIKE ? ESCAPE '\' OR LOWER(COALESCE(d.description, '')) LIKE ? ESCAPE '\' OR LOWER(d.file_name) LIKE ? ESCAPE '\')`, p, p, p)
	}

	switch c.Visibility {
	case domain.VisibilityPublic:
		b.add("d.is_public = 1")
	case domain.VisibilityPrivate:
		// Private scope is always bounded by ownership: a requester can
		// never enumerate someone else's private documents. Anonymous
		// requesters get an empty result rather than an error at this level.
		if requesterID == "" {
			b.add("1 = 0")
		} else {
			b.add("d.is_public = 0 AND d.owner_id = ?", requesterID)
		}
	default:
		// Implicit scope: anonymous requesters see public documents only;
		// authenticated requesters additionally see their own, and, when the
		// deployment opts in, documents they hold a grant on.
		if requesterID == "" {
			b.add("d.is_public = 1")
		} else if includeGranted {
			b.add(`(d.is_public = 1 OR d.owner_id = ? OR EXISTS (
				SELECT 1 FROM permission_grants g
				WHERE g.document_id = d.id AND g.grantee_id = ?))`, requesterID, requesterID)
		} else {
			b.add("(d.is_public = 1 OR d.owner_id = ?)", requesterID)
		}
	}

	if c.CreatedAfter != nil {
		b.add("d.created_at >= ?", formatTime(*c.CreatedAfter))
	}
	if c.CreatedBefore != nil {
		b.add("d.created_at <= ?", formatTime(*c.CreatedBefore))
	}

	if opts.withType {
		addTypePredicates(b, c)
	}
	if opts.withTags {
		addTagPredicates(b, c)
	}

	return b
}

// addTypePredicates narrows by coarse category and/or exact MIME type.
// Both may be present; they compose as AND.
func addTypePredicates(b *whereBuilder, c domain.SearchCriteria) {
	if c.TypeCategory != domain.TypeNone {
		prefixes, substrings := c.TypeCategory.MimeRules()
		var alts []string
		var args []any
		for _, p := range prefixes {
			alts = append(alts, "d.content_type LIKE ?")
			args = append(args, p+"%")
		}
		for _, sub := range substrings {
			alts = append(alts, "d.content_type LIKE ?")
			args = append(args, "%"+sub+"%")
		}
		if len(alts) > 0 {
			b.add("("+strings.Join(alts, " OR ")+")", args...)
		}
	}
	if c.MimeType != "" {
		b.add("d.content_type = ?", c.MimeType)
	}
}

// addTagPredicates narrows by tag set. matchAll uses intersection semantics:
// the document's distinct matching tags must cover the whole requested set.
func addTagPredicates(b *whereBuilder, c domain.SearchCriteria) {
	if len(c.TagIDs) == 0 {
		return
	}

	ph := placeholders(len(c.TagIDs))
	args := make([]any, len(c.TagIDs))
	for i, id := range c.TagIDs {
		args[i] = id
	}

	if c.MatchAll {
		args = append(args, len(c.TagIDs))
		b.add(`d.id IN (
			SELECT dt.document_id FROM document_tags dt
			WHERE dt.tag_id IN (`+ph+`)
			GROUP BY dt.document_id
			HAVING COUNT(DISTINCT dt.tag_id) = ?)`, args...)
	} else {
		b.add(`EXISTS (
			SELECT 1 FROM document_tags dt
			WHERE dt.document_id = d.id AND dt.tag_id IN (`+ph+`))`, args...)
	}
}

// orderClause maps the sort key and direction to an ORDER BY fragment.
// Relevance with a keyword ranks exact-title-substring matches first, then by
// recency; without a keyword it degrades to recency. Every ordering ends with
// d.id so pagination is stable across identical sort values.
func orderClause(c domain.SearchCriteria) (string, []any) {
	dir := "DESC"
	if c.SortDir == domain.SortAsc {
		dir = "ASC"
	}

	switch c.SortKey {
	case domain.SortCreated:
		return " ORDER BY d.created_at " + dir + ", d.id", nil
	case domain.SortSize:
		return " ORDER BY d.size " + dir + ", d.id", nil
	case domain.SortViewCount:
		return " ORDER BY d.view_count " + dir + ", d.id", nil
	case domain.SortDownloadCount:
		return " ORDER BY d.download_count " + dir + ", d.id", nil
	default:
		if c.Keyword != "" {
			return ` ORDER BY (CASE WHEN INSTR(LOWER(d.title), ?) > 0 THEN 0 ELSE 1 END), d.created_at DESC, d.id`,
				[]any{strings.ToLower(c.Keyword)}
		}
		return " ORDER BY d.created_at " + dir + ", d.id", nil
	}
}
