package receipt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestServiceSave(t *testing.T) {
	testCases := []struct {
		name      string
		payload   SavePayload
		setupMock func(m *MockRepository, stored **Receipt)
		check     func(t *testing.T, stored *Receipt)
		wantID    string
		wantErr   bool
	}{
		{
			name: "stores the payload as given",
			payload: SavePayload{
				Type:              PurchaseRestaurant,
				EstablishmentName: "Saravana Bhavan",
				Date:              "2025-07-14",
				Total:             AmountFromString("412.50"),
				Items: []LineItem{
					{Name: "Masala Dosa", Price: AmountFromString("95"), Quantity: 2},
				},
			},
			setupMock: func(m *MockRepository, stored **Receipt) {
				m.EXPECT().
					CreateReceipt(gomock.Any(), "user-1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, r *Receipt) error {
						*stored = r
						r.ID = "rcpt-1"
						return nil
					})
			},
			check: func(t *testing.T, stored *Receipt) {
				assert.Equal(t, PurchaseRestaurant, stored.Type)
				assert.Equal(t, "Saravana Bhavan", stored.EstablishmentName)
				require.Len(t, stored.Items, 1)
				assert.Equal(t, "Masala Dosa", stored.Items[0].Name)
				assert.Equal(t, Quantity(2), stored.Items[0].Quantity)
			},
			wantID: "rcpt-1",
		},
		{
			name: "fills blanks before storing",
			payload: SavePayload{
				Type:              PurchaseType("Groceries"),
				EstablishmentName: "   ",
				Items: []LineItem{
					{Name: "", Price: AmountFromString("-5"), Quantity: 0},
				},
			},
			setupMock: func(m *MockRepository, stored **Receipt) {
				m.EXPECT().
					CreateReceipt(gomock.Any(), "user-1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, r *Receipt) error {
						*stored = r
						return nil
					})
			},
			check: func(t *testing.T, stored *Receipt) {
				assert.Equal(t, PurchaseRetail, stored.Type)
				assert.Equal(t, "Unknown Store", stored.EstablishmentName)
				require.Len(t, stored.Items, 1)
				assert.Equal(t, "Unknown", stored.Items[0].Name)
				assert.Equal(t, "0", stored.Items[0].Price.String())
				assert.Equal(t, Quantity(1), stored.Items[0].Quantity)
			},
		},
		{
			name:    "repository failure",
			payload: SavePayload{EstablishmentName: "DMart"},
			setupMock: func(m *MockRepository, _ **Receipt) {
				m.EXPECT().
					CreateReceipt(gomock.Any(), "user-1", gomock.Any()).
					Return(errors.New("disk full"))
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepository(ctrl)

			var stored *Receipt
			tc.setupMock(repo, &stored)

			svc := NewService(repo)

			id, err := svc.Save(context.Background(), "user-1", tc.payload)

			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantID, id)

			if tc.check != nil {
				require.NotNil(t, stored)
				tc.check(t, stored)
			}
		})
	}
}

func TestServiceList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepository(ctrl)
	repo.EXPECT().
		ListReceipts(gomock.Any(), "user-1").
		Return([]Receipt{{ID: "rcpt-2"}, {ID: "rcpt-1"}}, nil)

	svc := NewService(repo)

	receipts, err := svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, "rcpt-2", receipts[0].ID)
}

func TestServiceListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepository(ctrl)
	repo.EXPECT().
		ListReceipts(gomock.Any(), "user-1").
		Return(nil, errors.New("locked"))

	svc := NewService(repo)

	_, err := svc.List(context.Background(), "user-1")
	require.Error(t, err)
}

func TestServiceLinkToWallet(t *testing.T) {
	testCases := []struct {
		name      string
		setupMock func(m *MockRepository)
		wantErr   error
	}{
		{
			name: "marks and returns the receipt",
			setupMock: func(m *MockRepository) {
				m.EXPECT().
					GetReceipt(gomock.Any(), "user-1", "rcpt-1").
					Return(&Receipt{ID: "rcpt-1"}, nil)
				m.EXPECT().
					MarkInWallet(gomock.Any(), "user-1", "rcpt-1").
					Return(nil)
			},
		},
		{
			name: "unknown receipt",
			setupMock: func(m *MockRepository) {
				m.EXPECT().
					GetReceipt(gomock.Any(), "user-1", "rcpt-1").
					Return(nil, ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "mark failure",
			setupMock: func(m *MockRepository) {
				m.EXPECT().
					GetReceipt(gomock.Any(), "user-1", "rcpt-1").
					Return(&Receipt{ID: "rcpt-1"}, nil)
				m.EXPECT().
					MarkInWallet(gomock.Any(), "user-1", "rcpt-1").
					Return(errors.New("locked"))
			},
			wantErr: errors.New("locked"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepository(ctrl)
			tc.setupMock(repo)

			svc := NewService(repo)

			r, err := svc.LinkToWallet(context.Background(), "user-1", "rcpt-1")

			if tc.wantErr != nil {
				require.Error(t, err)
				assert.ErrorContains(t, err, tc.wantErr.Error())
				return
			}

			require.NoError(t, err)
			assert.True(t, r.InWallet)
		})
	}
}
