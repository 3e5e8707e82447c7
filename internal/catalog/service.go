// Package catalog covers the sellable products and the dining tables orders
// are taken at. Stock is read-only here.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
	"github.com/ariefcatur/hospitality-pos/internal/orders"
)

type Venue string

const (
	VenueBar        Venue = "BAR"
	VenueRestaurant Venue = "RESTAURANT"
)

func ParseVenue(raw string) (Venue, error) {
	switch v := Venue(strings.ToUpper(strings.TrimSpace(raw))); v {
	case VenueBar, VenueRestaurant:
		return v, nil
	}
	return "", apperr.Validation("venue", "venue must be BAR or RESTAURANT")
}

type Table struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Venue     Venue     `json:"venue"`
	Seats     int       `json:"seats"`
	CreatedAt time.Time `json:"created_at"`
}

type ProductFilter struct {
	Kind  orders.ProductKind
	Query string
}

type Repository interface {
	ListProducts(ctx context.Context, f ProductFilter) ([]orders.Product, error)
	GetProduct(ctx context.Context, id string) (orders.Product, error)
	UpdateProduct(ctx context.Context, p orders.Product) error
	DeleteProduct(ctx context.Context, id string) error

	InsertTable(ctx context.Context, t Table) error
	ListTables(ctx context.Context, venue Venue) ([]Table, error)
	GetTable(ctx context.Context, id string) (Table, error)
	UpdateTable(ctx context.Context, t Table) error
	DeleteTable(ctx context.Context, id string) error
}

// ProductCreator is satisfied by *orders.Service, which books initial stock.
type ProductCreator interface {
	CreateProduct(ctx context.Context, in orders.NewProductInput) (orders.Product, error)
}

type Service struct {
	Repo     Repository
	Products ProductCreator
	Log      zerolog.Logger
}

type ProductPatch struct {
	Name          *string          `json:"name"`
	Category      *string          `json:"category"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	Unit          *string          `json:"unit"`
}

type TableInput struct {
	Label string `json:"label"`
	Venue string `json:"venue"`
	Seats int    `json:"seats"`
}

func (s *Service) CreateProduct(ctx context.Context, in orders.NewProductInput) (orders.Product, error) {
	in.Kind = orders.ProductKind(strings.ToUpper(strings.TrimSpace(string(in.Kind))))
	return s.Products.CreateProduct(ctx, in)
}

func (s *Service) ListProducts(ctx context.Context, kind, query string) ([]orders.Product, error) {
	f := ProductFilter{Query: strings.TrimSpace(query)}
	if kind = strings.TrimSpace(kind); kind != "" {
		f.Kind = orders.ProductKind(strings.ToUpper(kind))
		if !f.Kind.Valid() {
			return nil, apperr.Validation("kind", fmt.Sprintf("unknown kind %q", kind))
		}
	}
	return s.Repo.ListProducts(ctx, f)
}

func (s *Service) GetProduct(ctx context.Context, id string) (orders.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *Service) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (orders.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return orders.Product{}, err
	}
	if patch.Name != nil {
		if p.Name = strings.TrimSpace(*patch.Name); p.Name == "" {
			return orders.Product{}, apperr.Validation("name", "name must not be empty")
		}
	}
	if patch.Category != nil {
		p.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.PurchasePrice != nil {
		if patch.PurchasePrice.IsNegative() {
			return orders.Product{}, apperr.Validation("purchase_price", "purchase_price must not be negative")
		}
		p.PurchasePrice = *patch.PurchasePrice
	}
	if patch.SalePrice != nil {
		if patch.SalePrice.IsNegative() {
			return orders.Product{}, apperr.Validation("sale_price", "sale_price must not be negative")
		}
		p.SalePrice = *patch.SalePrice
	}
	if patch.Unit != nil {
		if p.Unit = strings.TrimSpace(*patch.Unit); p.Unit == "" {
			return orders.Product{}, apperr.Validation("unit", "unit must not be empty")
		}
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.Repo.UpdateProduct(ctx, p); err != nil {
		return orders.Product{}, err
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.Log.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

func (s *Service) CreateTable(ctx context.Context, in TableInput) (Table, error) {
	t, err := tableFrom(in)
	if err != nil {
		return Table{}, err
	}
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	if err := s.Repo.InsertTable(ctx, t); err != nil {
		return Table{}, err
	}
	return t, nil
}

func (s *Service) ListTables(ctx context.Context, venue string) ([]Table, error) {
	var v Venue
	if strings.TrimSpace(venue) != "" {
		var err error
		if v, err = ParseVenue(venue); err != nil {
			return nil, err
		}
	}
	return s.Repo.ListTables(ctx, v)
}

func (s *Service) GetTable(ctx context.Context, id string) (Table, error) {
	return s.Repo.GetTable(ctx, id)
}

func (s *Service) UpdateTable(ctx context.Context, id string, in TableInput) (Table, error) {
	cur, err := s.Repo.GetTable(ctx, id)
	if err != nil {
		return Table{}, err
	}
	t, err := tableFrom(in)
	if err != nil {
		return Table{}, err
	}
	t.ID, t.CreatedAt = cur.ID, cur.CreatedAt
	if err := s.Repo.UpdateTable(ctx, t); err != nil {
		return Table{}, err
	}
	return t, nil
}

func (s *Service) DeleteTable(ctx context.Context, id string) error {
	return s.Repo.DeleteTable(ctx, id)
}

func tableFrom(in TableInput) (Table, error) {
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return Table{}, apperr.Validation("label", "label is required")
	}
	venue, err := ParseVenue(in.Venue)
	if err != nil {
		return Table{}, err
	}
	if in.Seats <= 0 {
		return Table{}, apperr.Validation("seats", "seats must be positive")
	}
	return Table{Label: label, Venue: venue, Seats: in.Seats}, nil
}
