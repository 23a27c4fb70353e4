package receipt

import (
	"context"
	"fmt"
	"strings"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=receipt
type Repository interface {
	CreateReceipt(ctx context.Context, userSub string, r *Receipt) error
	ListReceipts(ctx context.Context, userSub string) ([]Receipt, error)
	GetReceipt(ctx context.Context, userSub, id string) (*Receipt, error)
	MarkInWallet(ctx context.Context, userSub, id string) error
}

// Service owns the server-side persistence rules for receipts.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Save stores an incoming receipt for the given user and returns the
// assigned id. Stored documents never carry blanks: unnamed
// establishments become "Unknown Store", unnamed items "Unknown",
// quantities floor at one and negative prices clamp to zero.
func (s *Service) Save(ctx context.Context, userSub string, p SavePayload) (string, error) {
	r := &Receipt{
		Type:              ParsePurchaseType(string(p.Type)),
		EstablishmentName: strings.TrimSpace(p.EstablishmentName),
		Date:              strings.TrimSpace(p.Date),
		Total:             p.Total,
		Items:             make([]LineItem, 0, len(p.Items)),
	}

	if r.EstablishmentName == "" {
		r.EstablishmentName = "Unknown Store"
	}

	for _, it := range p.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			name = "Unknown"
		}

		price := it.Price
		if price.IsNegative() {
			price = Amount{}
		}

		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}

		r.Items = append(r.Items, LineItem{Name: name, Price: price, Quantity: qty})
	}

	if err := s.repo.CreateReceipt(ctx, userSub, r); err != nil {
		return "", fmt.Errorf("creating receipt: %w", err)
	}

	return r.ID, nil
}

// List returns the user's receipts, newest first.
func (s *Service) List(ctx context.Context, userSub string) ([]Receipt, error) {
	receipts, err := s.repo.ListReceipts(ctx, userSub)
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}

	return receipts, nil
}

// Get returns one receipt by id.
func (s *Service) Get(ctx context.Context, userSub, id string) (*Receipt, error) {
	r, err := s.repo.GetReceipt(ctx, userSub, id)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// LinkToWallet marks the receipt as saved to the user's wallet and
// returns it with the flag set.
func (s *Service) LinkToWallet(ctx context.Context, userSub, id string) (*Receipt, error) {
	r, err := s.repo.GetReceipt(ctx, userSub, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkInWallet(ctx, userSub, id); err != nil {
		return nil, fmt.Errorf("marking receipt in wallet: %w", err)
	}

	r.InWallet = true

	return r, nil
}
