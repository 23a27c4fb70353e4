package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raseedhq/raseed/internal/receipt"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "receipts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestCreateAndGetReceipt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r := &receipt.Receipt{
		Type:              receipt.PurchaseRestaurant,
		EstablishmentName: "Saravana Bhavan",
		Date:              "2025-07-14",
		Total:             receipt.AmountFromString("412.5"),
		Items: []receipt.LineItem{
			{Name: "Masala Dosa", Price: receipt.AmountFromString("95"), Quantity: 2},
			{Name: "Filter Coffee", Price: receipt.AmountFromString("40.5"), Quantity: 1},
		},
	}

	require.NoError(t, s.CreateReceipt(ctx, "user-1", r))
	require.NotEmpty(t, r.ID)
	require.NotEmpty(t, r.CreatedAt)

	got, err := s.GetReceipt(ctx, "user-1", r.ID)
	require.NoError(t, err)

	assert.Equal(t, receipt.PurchaseRestaurant, got.Type)
	assert.Equal(t, "Saravana Bhavan", got.EstablishmentName)
	assert.Equal(t, "2025-07-14", got.Date)
	assert.Equal(t, "412.5", got.Total.String())
	assert.False(t, got.InWallet)

	require.Len(t, got.Items, 2)
	assert.Equal(t, "Masala Dosa", got.Items[0].Name)
	assert.Equal(t, "95", got.Items[0].Price.String())
	assert.Equal(t, receipt.Quantity(2), got.Items[0].Quantity)
	assert.Equal(t, "Filter Coffee", got.Items[1].Name)
}

func TestGetReceiptNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetReceipt(context.Background(), "user-1", "missing")
	require.ErrorIs(t, err, receipt.ErrNotFound)
}

func TestGetReceiptOtherUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r := &receipt.Receipt{Type: receipt.PurchaseRetail, EstablishmentName: "DMart"}
	require.NoError(t, s.CreateReceipt(ctx, "user-1", r))

	_, err := s.GetReceipt(ctx, "user-2", r.ID)
	require.ErrorIs(t, err, receipt.ErrNotFound)
}

func TestListReceipts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := &receipt.Receipt{
		Type:              receipt.PurchaseRetail,
		EstablishmentName: "DMart",
		Items:             []receipt.LineItem{{Name: "Rice", Price: receipt.AmountFromString("640"), Quantity: 1}},
	}
	second := &receipt.Receipt{
		Type:              receipt.PurchaseRestaurant,
		EstablishmentName: "Cafe Madras",
	}
	other := &receipt.Receipt{Type: receipt.PurchaseOther, EstablishmentName: "City Chemist"}

	require.NoError(t, s.CreateReceipt(ctx, "user-1", first))
	require.NoError(t, s.CreateReceipt(ctx, "user-1", second))
	require.NoError(t, s.CreateReceipt(ctx, "user-2", other))

	receipts, err := s.ListReceipts(ctx, "user-1")
	require.NoError(t, err)

	require.Len(t, receipts, 2, "only the requesting user's receipts")
	assert.Equal(t, "Cafe Madras", receipts[0].EstablishmentName, "newest first")
	assert.Equal(t, "DMart", receipts[1].EstablishmentName)

	require.Len(t, receipts[1].Items, 1)
	assert.Equal(t, "Rice", receipts[1].Items[0].Name)
	assert.NotNil(t, receipts[0].Items, "itemless receipts still carry an empty list")
}

func TestListReceiptsEmpty(t *testing.T) {
	s := openTestStore(t)

	receipts, err := s.ListReceipts(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, receipts)
	assert.NotNil(t, receipts)
}

func TestMarkInWallet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r := &receipt.Receipt{Type: receipt.PurchaseRetail, EstablishmentName: "DMart"}
	require.NoError(t, s.CreateReceipt(ctx, "user-1", r))

	require.NoError(t, s.MarkInWallet(ctx, "user-1", r.ID))

	got, err := s.GetReceipt(ctx, "user-1", r.ID)
	require.NoError(t, err)
	assert.True(t, got.InWallet)

	require.NoError(t, s.MarkInWallet(ctx, "user-1", r.ID), "linking twice is allowed")
}

func TestMarkInWalletNotFound(t *testing.T) {
	s := openTestStore(t)

	err := s.MarkInWallet(context.Background(), "user-1", "missing")
	require.ErrorIs(t, err, receipt.ErrNotFound)
}
