package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestGroup(t *testing.T, store *SQLiteStore, members ...string) *models.Group {
	t.Helper()
	group := &models.Group{Name: "Roommates", Currency: "USD", Members: members}
	require.NoError(t, store.CreateGroup(context.Background(), group))
	return group
}

func TestSQLiteStore_Groups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup generates ID and keeps member order", func(t *testing.T) {
		group := newTestGroup(t, store, "Charlie", "Alice", "Bob")
		assert.NotEmpty(t, group.ID)
		assert.NotZero(t, group.CreatedAt)

		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, "Roommates", got.Name)
		assert.Equal(t, "USD", got.Currency)
		assert.Equal(t, []string{"Charlie", "Alice", "Bob"}, got.Members)
	})

	t.Run("AddGroupMembers appends and skips duplicates", func(t *testing.T) {
		group := newTestGroup(t, store, "Alice", "Bob")
		require.NoError(t, store.AddGroupMembers(ctx, group.ID, []string{"Bob", "Dana", "Eve"}))

		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Alice", "Bob", "Dana", "Eve"}, got.Members)
	})

	t.Run("AddGroupMembers on missing group", func(t *testing.T) {
		err := store.AddGroupMembers(ctx, "nope", []string{"Alice"})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("GetGroup on missing group", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListGroups includes members", func(t *testing.T) {
		groups, err := store.ListGroups(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, groups)
		for _, g := range groups {
			assert.NotEmpty(t, g.Members, g.ID)
		}
	})
}

func TestSQLiteStore_Bills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := newTestGroup(t, store, "Alice", "Bob", "Charlie")

	t.Run("CreateBill generates ID and title", func(t *testing.T) {
		bill := &models.Bill{
			GroupID:   group.ID,
			PayerID:   "Alice",
			Total:     3300,
			SplitMode: "equally",
			Shares: []models.Share{
				{Member: "Alice", Value: 1650, Amount: 1650},
				{Member: "Bob", Value: 1650, Amount: 1650},
			},
		}
		require.NoError(t, store.CreateBill(ctx, bill))

		assert.NotEmpty(t, bill.ID)
		assert.Equal(t, "Split with Alice, Bob", bill.Title)
		assert.NotZero(t, bill.CreatedAt)
	})

	t.Run("GetBill round trips shares in order", func(t *testing.T) {
		original := &models.Bill{
			GroupID:   group.ID,
			Title:     "Groceries",
			PayerID:   "Bob",
			Total:     5000,
			SplitMode: "percent",
			Shares: []models.Share{
				{Member: "Charlie", Value: 7000, Edited: true, Amount: 3500},
				{Member: "Alice", Value: 1500, Amount: 750},
				{Member: "Bob", Value: 1500, Amount: 750},
			},
		}
		require.NoError(t, store.CreateBill(ctx, original))

		got, err := store.GetBill(ctx, original.ID)
		require.NoError(t, err)
		assert.Equal(t, original, got)
	})

	t.Run("GetBill returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetBill(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("CreateBill rejects unknown group", func(t *testing.T) {
		err := store.CreateBill(ctx, &models.Bill{GroupID: "nope", PayerID: "Alice", SplitMode: "equally"})
		assert.Error(t, err)
	})

	t.Run("DeleteBill", func(t *testing.T) {
		bill := &models.Bill{
			GroupID: group.ID, PayerID: "Alice", Total: 100, SplitMode: "amount",
			Shares: []models.Share{{Member: "Bob", Value: 100, Edited: true, Amount: 100}},
		}
		require.NoError(t, store.CreateBill(ctx, bill))
		require.NoError(t, store.DeleteBill(ctx, bill.ID))

		_, err := store.GetBill(ctx, bill.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteBill(ctx, bill.ID), storage.ErrNotFound)
	})
}

func TestSQLiteStore_Payments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := newTestGroup(t, store, "Alice", "Bob")

	payment := &models.Payment{GroupID: group.ID, FromID: "Bob", ToID: "Alice", Amount: 1250, Note: "rent"}
	require.NoError(t, store.CreatePayment(ctx, payment))
	assert.NotEmpty(t, payment.ID)

	got, err := store.GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payment, got)

	noNote := &models.Payment{GroupID: group.ID, FromID: "Alice", ToID: "Bob", Amount: 5}
	require.NoError(t, store.CreatePayment(ctx, noNote))
	got, err = store.GetPayment(ctx, noNote.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Note)

	require.NoError(t, store.DeletePayment(ctx, payment.ID))
	_, err = store.GetPayment(ctx, payment.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, store.DeletePayment(ctx, payment.ID), storage.ErrNotFound)
}

func TestSQLiteStore_Ledger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := newTestGroup(t, store, "Alice", "Bob")
	other := newTestGroup(t, store, "Zed", "Yan")

	bill := &models.Bill{
		GroupID: group.ID, PayerID: "Alice", Total: 200, SplitMode: "equally", CreatedAt: 1,
		Shares: []models.Share{
			{Member: "Alice", Value: 100, Amount: 100},
			{Member: "Bob", Value: 100, Amount: 100},
		},
	}
	require.NoError(t, store.CreateBill(ctx, bill))
	require.NoError(t, store.CreateBill(ctx, &models.Bill{
		GroupID: other.ID, PayerID: "Zed", Total: 10, SplitMode: "equally",
		Shares: []models.Share{{Member: "Yan", Value: 10, Amount: 10}},
	}))
	payment := &models.Payment{GroupID: group.ID, FromID: "Bob", ToID: "Alice", Amount: 40, CreatedAt: 2}
	require.NoError(t, store.CreatePayment(ctx, payment))

	ledger, err := store.Ledger(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []*models.Bill{bill}, ledger.Bills)
	assert.Equal(t, []*models.Payment{payment}, ledger.Payments)

	_, err = store.Ledger(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// deleting the group takes its ledger with it
	require.NoError(t, store.DeleteGroup(ctx, group.ID))
	_, err = store.GetBill(ctx, bill.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetPayment(ctx, payment.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, store.DeleteGroup(ctx, group.ID), storage.ErrNotFound)
}

func TestGenerateTitle(t *testing.T) {
	tests := []struct {
		participants []string
		wantContains string
	}{
		{[]string{}, "Bill -"},
		{[]string{"Alice"}, "Split with Alice"},
		{[]string{"Alice", "Bob"}, "Split with Alice, Bob"},
		{[]string{"Alice", "Bob", "Charlie"}, "Split with Alice, Bob, Charlie"},
		{[]string{"Alice", "Bob", "Charlie", "Diana"}, "Split with Alice, Bob and 2 others"},
	}

	for _, tt := range tests {
		t.Run(tt.wantContains, func(t *testing.T) {
			assert.Contains(t, generateTitle(tt.participants), tt.wantContains)
		})
	}
}
