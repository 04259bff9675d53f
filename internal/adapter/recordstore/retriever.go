package recordstore

import (
	"context"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"warehouse-assistant-bot/internal/domain"
)

const DefaultTopK = 5

// Retriever searches a snapshot's records with SQLite FTS5 and returns
// them best bm25 score first, ties in file order. Each call has no side
// effects.
type Retriever struct {
	store *Store
	topK  int
}

// Retrieve searches the snapshot with snapshotID, or the default snapshot
// when snapshotID is empty.
func (r *Retriever) Retrieve(ctx context.Context, snapshotID, query string) ([]domain.Record, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidInput
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id := r.store.resolveLocked(snapshotID)
	if _, ok := r.store.snapshots[id]; !ok {
		return nil, ErrNoSnapshot
	}

	match := MatchQuery(query)
	if match == "" {
		return nil, nil
	}

	rows, err := r.store.db.QueryContext(ctx,
		`SELECT source, content FROM records
		 WHERE records MATCH ? AND snapshot_id = ?
		 ORDER BY bm25(records), rowid
		 LIMIT ?`, match, id, r.topK)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrRetrievalUnavailable, "search records: %v", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(&rec.Source, &rec.Content); err != nil {
			return nil, errors.Wrapf(domain.ErrRetrievalUnavailable, "scan record: %v", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(domain.ErrRetrievalUnavailable, "iterate records: %v", err)
	}
	return records, nil
}

// MatchQuery turns free text into an FTS5 expression that ORs one quoted
// phrase per word. Words keep inner hyphens, so SKU-123 stays a phrase,
// and no FTS5 operator syntax from the text reaches the parser.
func MatchQuery(text string) string {
	words := strings.FieldsFunc(text, func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-'
	})

	phrases := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, "-")
		if w == "" {
			continue
		}
		phrases = append(phrases, `"`+w+`"`)
	}
	return strings.Join(phrases, " OR ")
}
