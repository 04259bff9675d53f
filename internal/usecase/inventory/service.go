package inventory

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"warehouse-assistant-bot/internal/domain"
)

// LowStockThreshold is the quantity under which an item is reported as low.
const LowStockThreshold = 100

var (
	ErrUnsupportedFormat = errors.New("only .csv files are supported")
	ErrNoQuantityColumn  = errors.New("loaded records have no Quantity column")
)

type Snapshot struct {
	ID       string
	Name     string
	Columns  []string
	Rows     int
	LoadedAt time.Time
}

type StockItem struct {
	SKU      string
	Product  string
	Quantity float64
}

// Store keeps snapshots by ID. An empty ID stands for the default
// snapshot shared by sessions that never uploaded a file.
type Store interface {
	LoadCSV(ctx context.Context, name string, r io.Reader) (Snapshot, error)
	Snapshot(id string) (Snapshot, bool)
	SetDefault(id string) error
	Release(ctx context.Context, id string) error
	LowStock(ctx context.Context, id string, threshold float64) ([]StockItem, error)
}

type Service struct {
	store Store
	log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store: store,
		log:   log,
	}
}

// Upload loads a CSV file as the session's own snapshot, replacing the one
// it uploaded before. Failed uploads leave the session untouched.
func (s *Service) Upload(ctx context.Context, sess *domain.Session, name string, r io.Reader) (Snapshot, error) {
	if !isCSV(name) {
		return Snapshot{}, ErrUnsupportedFormat
	}

	snap, err := s.store.LoadCSV(ctx, name, r)
	if err != nil {
		s.log.Warn("inventory upload failed", zap.String("file", name), zap.Error(err))
		return Snapshot{}, err
	}

	previous := sess.Snapshot()
	sess.AttachSnapshot(snap.ID)
	sess.Log("Inventory uploaded at " + sess.Now().Format("15:04:05"))
	s.log.Info("inventory uploaded",
		zap.String("session_id", sess.ID),
		zap.String("snapshot_id", snap.ID),
		zap.String("file", name),
		zap.Int("rows", snap.Rows),
	)

	if previous != "" {
		if err := s.store.Release(ctx, previous); err != nil {
			s.log.Warn("could not release previous snapshot", zap.String("snapshot_id", previous), zap.Error(err))
		}
	}
	return snap, nil
}

// Preload loads a CSV file as the default snapshot.
func (s *Service) Preload(ctx context.Context, name string, r io.Reader) (Snapshot, error) {
	if !isCSV(name) {
		return Snapshot{}, ErrUnsupportedFormat
	}

	snap, err := s.store.LoadCSV(ctx, name, r)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.store.SetDefault(snap.ID); err != nil {
		return Snapshot{}, err
	}
	s.log.Info("inventory preloaded", zap.String("snapshot_id", snap.ID), zap.String("file", name), zap.Int("rows", snap.Rows))
	return snap, nil
}

// Current returns the snapshot sess answers from.
func (s *Service) Current(sess *domain.Session) (Snapshot, bool) {
	return s.store.Snapshot(sess.Snapshot())
}

// LowStock lists items of the session's snapshot under LowStockThreshold.
func (s *Service) LowStock(ctx context.Context, sess *domain.Session) ([]StockItem, error) {
	snap, ok := s.Current(sess)
	if !ok {
		return nil, domain.ErrRetrievalUnavailable
	}
	if !hasColumn(snap.Columns, "Quantity") {
		return nil, ErrNoQuantityColumn
	}
	return s.store.LowStock(ctx, snap.ID, LowStockThreshold)
}

// Release frees the snapshot sess uploaded, if any.
func (s *Service) Release(ctx context.Context, sess *domain.Session) error {
	id := sess.Snapshot()
	if id == "" {
		return nil
	}
	if err := s.store.Release(ctx, id); err != nil {
		return err
	}
	sess.AttachSnapshot("")
	return nil
}

func isCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

func hasColumn(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}
