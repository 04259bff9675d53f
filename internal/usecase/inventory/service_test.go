package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-assistant-bot/internal/domain"
	"warehouse-assistant-bot/internal/usecase/inventory"
)

type fakeStore struct {
	snaps     map[string]inventory.Snapshot
	defaultID string
	loads     int
	loadErr   error
	items     []inventory.StockItem
	body      string
	released  []string
	lowStock  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{snaps: make(map[string]inventory.Snapshot)}
}

func (f *fakeStore) LoadCSV(_ context.Context, name string, r io.Reader) (inventory.Snapshot, error) {
	if f.loadErr != nil {
		return inventory.Snapshot{}, f.loadErr
	}
	data, _ := io.ReadAll(r)
	f.body = string(data)
	f.loads++
	snap := inventory.Snapshot{
		ID:      fmt.Sprintf("snap-%d", f.loads),
		Name:    name,
		Columns: []string{"SKU", "Quantity"},
		Rows:    1,
	}
	f.snaps[snap.ID] = snap
	return snap, nil
}

func (f *fakeStore) Snapshot(id string) (inventory.Snapshot, bool) {
	if id == "" {
		id = f.defaultID
	}
	snap, ok := f.snaps[id]
	return snap, ok
}

func (f *fakeStore) SetDefault(id string) error {
	f.defaultID = id
	return nil
}

func (f *fakeStore) Release(_ context.Context, id string) error {
	f.released = append(f.released, id)
	delete(f.snaps, id)
	return nil
}

func (f *fakeStore) LowStock(_ context.Context, id string, _ float64) ([]inventory.StockItem, error) {
	f.lowStock = append(f.lowStock, id)
	return f.items, nil
}

func clockAt(h, m, s int) func() time.Time {
	return func() time.Time { return time.Date(2024, 5, 2, h, m, s, 0, time.UTC) }
}

func TestUpload(t *testing.T) {
	store := newFakeStore()
	svc := inventory.NewService(store, nil)
	sess := domain.NewSessionWithClock(clockAt(14, 5, 9))

	snap, err := svc.Upload(context.Background(), sess, "Stock.CSV", strings.NewReader("SKU,Quantity\nA,1\n"))
	require.NoError(t, err)

	assert.Equal(t, "snap-1", snap.ID)
	assert.Equal(t, "SKU,Quantity\nA,1\n", store.body)
	assert.Equal(t, "snap-1", sess.Snapshot())
	activity := sess.Activity()
	require.Len(t, activity, 1)
	assert.Equal(t, "Inventory uploaded at 14:05:09", activity[0].Text)
	assert.Empty(t, store.released)
}

func TestUploadReplacesOwnSnapshot(t *testing.T) {
	store := newFakeStore()
	svc := inventory.NewService(store, nil)
	sess := domain.NewSession()

	_, err := svc.Upload(context.Background(), sess, "a.csv", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = svc.Upload(context.Background(), sess, "b.csv", strings.NewReader("y"))
	require.NoError(t, err)

	assert.Equal(t, "snap-2", sess.Snapshot())
	assert.Equal(t, []string{"snap-1"}, store.released)
}

func TestUploadRejectsUnsupportedFormat(t *testing.T) {
	svc := inventory.NewService(newFakeStore(), nil)
	sess := domain.NewSession()

	_, err := svc.Upload(context.Background(), sess, "stock.xlsx", strings.NewReader(""))

	assert.ErrorIs(t, err, inventory.ErrUnsupportedFormat)
	assert.Empty(t, sess.Activity())
}

func TestUploadFailureIsNotLogged(t *testing.T) {
	store := newFakeStore()
	store.loadErr = errors.New("bad csv")
	svc := inventory.NewService(store, nil)
	sess := domain.NewSession()

	_, err := svc.Upload(context.Background(), sess, "stock.csv", strings.NewReader("x"))

	assert.EqualError(t, err, "bad csv")
	assert.Empty(t, sess.Activity())
	assert.Empty(t, sess.Snapshot())
}

func TestSessionsSeeTheirOwnSnapshot(t *testing.T) {
	store := newFakeStore()
	svc := inventory.NewService(store, nil)
	ctx := context.Background()

	shared, err := svc.Preload(ctx, "base.csv", strings.NewReader("SKU,Quantity\n"))
	require.NoError(t, err)

	a, b := domain.NewSession(), domain.NewSession()
	own, err := svc.Upload(ctx, a, "a.csv", strings.NewReader("SKU,Quantity\nSKU-7,12\n"))
	require.NoError(t, err)

	cur, ok := svc.Current(a)
	require.True(t, ok)
	assert.Equal(t, own.ID, cur.ID)

	cur, ok = svc.Current(b)
	require.True(t, ok)
	assert.Equal(t, shared.ID, cur.ID, "sessions without an upload use the preloaded file")
	assert.Empty(t, b.Snapshot())

	_, err = svc.LowStock(ctx, a)
	require.NoError(t, err)
	_, err = svc.LowStock(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []string{own.ID, shared.ID}, store.lowStock)
}

func TestPreloadRejectsUnsupportedFormat(t *testing.T) {
	store := newFakeStore()
	svc := inventory.NewService(store, nil)

	_, err := svc.Preload(context.Background(), "stock.json", strings.NewReader("{}"))
	assert.ErrorIs(t, err, inventory.ErrUnsupportedFormat)
	assert.Empty(t, store.defaultID)
}

func TestRelease(t *testing.T) {
	store := newFakeStore()
	svc := inventory.NewService(store, nil)
	sess := domain.NewSession()

	require.NoError(t, svc.Release(context.Background(), sess))
	assert.Empty(t, store.released)

	_, err := svc.Upload(context.Background(), sess, "a.csv", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, svc.Release(context.Background(), sess))

	assert.Equal(t, []string{"snap-1"}, store.released)
	assert.Empty(t, sess.Snapshot())
}

func TestLowStock(t *testing.T) {
	store := newFakeStore()
	store.items = []inventory.StockItem{{SKU: "A", Quantity: 1}}
	svc := inventory.NewService(store, nil)
	sess := domain.NewSession()

	_, err := svc.LowStock(context.Background(), sess)
	assert.ErrorIs(t, err, domain.ErrRetrievalUnavailable)

	store.snaps["plain"] = inventory.Snapshot{ID: "plain", Columns: []string{"SKU", "Product"}}
	sess.AttachSnapshot("plain")
	_, err = svc.LowStock(context.Background(), sess)
	assert.ErrorIs(t, err, inventory.ErrNoQuantityColumn)

	store.snaps["stock"] = inventory.Snapshot{ID: "stock", Columns: []string{"SKU", "Quantity"}}
	sess.AttachSnapshot("stock")
	items, err := svc.LowStock(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, store.items, items)
}
