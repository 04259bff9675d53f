package recordstore

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"warehouse-assistant-bot/internal/domain"
	"warehouse-assistant-bot/internal/usecase/inventory"
)

// ErrNoSnapshot is returned when the requested snapshot is not loaded and
// there is no shared one to fall back to.
var ErrNoSnapshot = errors.Wrap(domain.ErrRetrievalUnavailable, "no records loaded")

// MemoryDSN keeps the index inside the process.
const MemoryDSN = ":memory:"

var schema = []string{
	`CREATE VIRTUAL TABLE IF NOT EXISTS records USING fts5(
		snapshot_id UNINDEXED,
		source UNINDEXED,
		content
	)`,
	`CREATE TABLE IF NOT EXISTS cells (
		snapshot_id TEXT    NOT NULL,
		record_id   INTEGER NOT NULL,
		col         TEXT    NOT NULL,
		val         TEXT    NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cells_snapshot ON cells(snapshot_id, col)`,
}

// Store keeps uploaded tabular snapshots in SQLite, each under its own ID.
// The default snapshot answers for sessions that never uploaded a file.
type Store struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time

	mu        sync.RWMutex
	snapshots map[string]inventory.Snapshot
	defaultID string
}

func Open(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// an in-memory database lives per connection
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "create schema")
		}
	}
	return &Store{
		db:        db,
		log:       log,
		now:       time.Now,
		snapshots: make(map[string]inventory.Snapshot),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Snapshot returns the snapshot with id, or the default one when id is empty.
func (s *Store) Snapshot(id string) (inventory.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[s.resolveLocked(id)]
	if !ok {
		return inventory.Snapshot{}, false
	}
	snap.Columns = append([]string(nil), snap.Columns...)
	return snap, true
}

// SetDefault makes a loaded snapshot the fallback for sessions without one.
func (s *Store) SetDefault(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshots[id]; !ok {
		return ErrNoSnapshot
	}
	s.defaultID = id
	return nil
}

// Release deletes a snapshot and its rows. The default snapshot is kept.
func (s *Store) Release(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" || id == s.defaultID {
		return nil
	}
	if _, ok := s.snapshots[id]; !ok {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin release")
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM cells WHERE snapshot_id = ?`,
		`DELETE FROM records WHERE snapshot_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return errors.Wrap(err, "delete snapshot")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit release")
	}

	delete(s.snapshots, id)
	s.log.Debug("snapshot released", zap.String("snapshot_id", id))
	return nil
}

// LoadCSV parses r with a header row and stores it as a new snapshot.
// Each data row becomes one record rendered as "Column: value" pairs.
func (s *Store) LoadCSV(ctx context.Context, name string, r io.Reader) (inventory.Snapshot, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return inventory.Snapshot{}, errors.New("file has no header row")
	}
	if err != nil {
		return inventory.Snapshot{}, errors.Wrap(err, "read header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return inventory.Snapshot{}, errors.Wrap(err, "read rows")
	}

	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return inventory.Snapshot{}, errors.Wrap(err, "begin load")
	}
	defer tx.Rollback()

	count := 0
	for i, row := range rows {
		content := renderRow(header, row)
		if content == "" {
			continue
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO records (snapshot_id, source, content) VALUES (?, ?, ?)`,
			id, fmt.Sprintf("%s#%d", name, i+1), content)
		if err != nil {
			return inventory.Snapshot{}, errors.Wrap(err, "insert record")
		}
		recordID, err := res.LastInsertId()
		if err != nil {
			return inventory.Snapshot{}, errors.Wrap(err, "record id")
		}
		for j, col := range header {
			if j >= len(row) || col == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cells (snapshot_id, record_id, col, val) VALUES (?, ?, ?, ?)`,
				id, recordID, col, strings.TrimSpace(row[j])); err != nil {
				return inventory.Snapshot{}, errors.Wrap(err, "insert cell")
			}
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return inventory.Snapshot{}, errors.Wrap(err, "commit load")
	}

	snap := inventory.Snapshot{
		ID:       id,
		Name:     name,
		Columns:  header,
		Rows:     count,
		LoadedAt: s.now(),
	}
	s.snapshots[id] = snap

	s.log.Info("records loaded", zap.String("snapshot_id", id), zap.String("file", name), zap.Int("rows", count))
	return snap, nil
}

// LowStock returns rows of the snapshot whose numeric Quantity is below
// threshold, in file order.
func (s *Store) LowStock(ctx context.Context, id string, threshold float64) ([]inventory.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id = s.resolveLocked(id)
	if _, ok := s.snapshots[id]; !ok {
		return nil, ErrNoSnapshot
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT record_id, col, val FROM cells
		 WHERE snapshot_id = ? AND col IN ('SKU', 'Product', 'Quantity')
		 ORDER BY record_id`, id)
	if err != nil {
		return nil, errors.Wrap(err, "query stock")
	}
	defer rows.Close()

	items := make(map[int64]*inventory.StockItem)
	hasQty := make(map[int64]bool)
	var order []int64
	for rows.Next() {
		var (
			recordID int64
			col, val string
		)
		if err := rows.Scan(&recordID, &col, &val); err != nil {
			return nil, errors.Wrap(err, "scan stock")
		}
		item, ok := items[recordID]
		if !ok {
			item = &inventory.StockItem{}
			items[recordID] = item
			order = append(order, recordID)
		}
		switch col {
		case "SKU":
			item.SKU = val
		case "Product":
			item.Product = val
		case "Quantity":
			q, err := strconv.ParseFloat(val, 64)
			if err != nil {
				continue
			}
			item.Quantity = q
			hasQty[recordID] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate stock")
	}

	var low []inventory.StockItem
	for _, recordID := range order {
		if hasQty[recordID] && items[recordID].Quantity < threshold {
			low = append(low, *items[recordID])
		}
	}
	return low, nil
}

// Retriever returns a full-text retriever over the store yielding at most topK records.
func (s *Store) Retriever(topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{store: s, topK: topK}
}

func (s *Store) resolveLocked(id string) string {
	if id == "" {
		return s.defaultID
	}
	return id
}

func renderRow(header, row []string) string {
	parts := make([]string, 0, len(row))
	for j, val := range row {
		val = strings.TrimSpace(val)
		if val == "" {
			continue
		}
		col := ""
		if j < len(header) {
			col = header[j]
		}
		if col == "" {
			parts = append(parts, val)
			continue
		}
		parts = append(parts, col+": "+val)
	}
	return strings.Join(parts, ", ")
}
