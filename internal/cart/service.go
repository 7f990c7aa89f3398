package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/popeyesteak/pos-backend/internal/catalog"
	"github.com/popeyesteak/pos-backend/internal/options"
	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
)

// Selection names one chosen add-on by its group and choice; prices come
// from the resolver, never from the client.
type Selection struct {
	Group  string `json:"group"`
	Choice string `json:"choice"`
}

// Snapshot is the terminal's view of one table's cart.
type Snapshot struct {
	TableID int64      `json:"table_id"`
	Items   []LineItem `json:"items"`
	Totals  Totals     `json:"totals"`
}

type productLoader interface {
	ProductByID(ctx context.Context, id int64) (*catalog.Product, error)
}

// Service composes the cart model with catalog lookup and option
// resolution. All mutations are synchronous per table.
type Service interface {
	View(ctx context.Context, tableID int64) (*Snapshot, error)
	AddItem(ctx context.Context, tableID, productID int64, selections []Selection) (*Snapshot, error)
	SetQuantity(ctx context.Context, tableID int64, slotKey string, quantity int) (*Snapshot, error)
	SetNote(ctx context.Context, tableID int64, slotKey, note string) (*Snapshot, error)
	RemoveItem(ctx context.Context, tableID int64, slotKey string) (*Snapshot, error)
	Clear(ctx context.Context, tableID int64) (*Snapshot, error)
	Reset(tableID int64)
}

type service struct {
	store    *Store
	products productLoader
	resolver options.Resolver
	taxRate  decimal.Decimal
}

// NewService wires the cart over the catalog adapter and option resolver.
func NewService(store *Store, products productLoader, resolver options.Resolver, taxRate decimal.Decimal) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("option resolver required")
	}
	return &service{
		store:    store,
		products: products,
		resolver: resolver,
		taxRate:  taxRate,
	}, nil
}

func (s *service) View(ctx context.Context, tableID int64) (*Snapshot, error) {
	return s.snapshot(tableID), nil
}

// AddItem validates the selections against the product's resolved option
// groups, then merges or appends a slot. The cart itself is untouched when
// validation or resolution fails.
func (s *service) AddItem(ctx context.Context, tableID, productID int64, selections []Selection) (*Snapshot, error) {
	product, err := s.products.ProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	groups, err := s.resolver.ResolveGroups(ctx, productID)
	if err != nil {
		return nil, err
	}

	chosen, err := buildChosenOptions(groups, selections)
	if err != nil {
		return nil, err
	}

	ref := ProductRef{ID: product.ID, Name: product.Name, UnitPrice: product.Price}
	s.store.With(tableID, func(c *Cart) {
		c.Add(ref, chosen)
	})
	return s.snapshot(tableID), nil
}

func (s *service) SetQuantity(ctx context.Context, tableID int64, slotKey string, quantity int) (*Snapshot, error) {
	found := false
	s.store.With(tableID, func(c *Cart) {
		found = c.SetQuantity(slotKey, quantity)
	})
	if !found && quantity > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart slot not found")
	}
	return s.snapshot(tableID), nil
}

func (s *service) SetNote(ctx context.Context, tableID int64, slotKey, note string) (*Snapshot, error) {
	found := false
	s.store.With(tableID, func(c *Cart) {
		found = c.SetNote(slotKey, note)
	})
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart slot not found")
	}
	return s.snapshot(tableID), nil
}

func (s *service) RemoveItem(ctx context.Context, tableID int64, slotKey string) (*Snapshot, error) {
	s.store.With(tableID, func(c *Cart) {
		c.Remove(slotKey)
	})
	return s.snapshot(tableID), nil
}

func (s *service) Clear(ctx context.Context, tableID int64) (*Snapshot, error) {
	s.store.With(tableID, func(c *Cart) {
		c.Clear()
	})
	return s.snapshot(tableID), nil
}

func (s *service) Reset(tableID int64) {
	s.store.Reset(tableID)
}

func (s *service) snapshot(tableID int64) *Snapshot {
	snap := &Snapshot{TableID: tableID}
	s.store.With(tableID, func(c *Cart) {
		snap.Items = c.Items()
		snap.Totals = c.Totals(s.taxRate)
	})
	return snap
}

// buildChosenOptions reconciles the cashier's selections with the resolved
// groups: every selection must name a real group and choice, and every
// required group must be covered. Violations are aggregated so the terminal
// can show the full list at once.
func buildChosenOptions(groups []options.Group, selections []Selection) ([]ChosenOption, error) {
	byName := make(map[string]options.Group, len(groups))
	for _, g := range groups {
		byName[g.Name] = g
	}

	var violations error
	covered := map[string]bool{}
	chosen := make([]ChosenOption, 0, len(selections))

	for _, sel := range selections {
		group, ok := byName[sel.Group]
		if !ok {
			violations = multierr.Append(violations, fmt.Errorf("unknown option group %q", sel.Group))
			continue
		}
		var choice *options.Choice
		for i := range group.Choices {
			if group.Choices[i].Name == sel.Choice {
				choice = &group.Choices[i]
				break
			}
		}
		if choice == nil {
			violations = multierr.Append(violations, fmt.Errorf("unknown choice %q in group %q", sel.Choice, sel.Group))
			continue
		}
		covered[group.Name] = true
		chosen = append(chosen, ChosenOption{
			Group:      group.Name,
			Name:       choice.Name,
			PriceDelta: choice.PriceDelta,
		})
	}

	missing := []string{}
	for _, g := range groups {
		if g.Required && !covered[g.Name] {
			missing = append(missing, g.Name)
			violations = multierr.Append(violations, fmt.Errorf("missing required selection for group %q", g.Name))
		}
	}

	if violations != nil {
		details := map[string]any{}
		if len(missing) > 0 {
			details["missing_required_groups"] = missing
		}
		errs := []string{}
		for _, e := range multierr.Errors(violations) {
			errs = append(errs, e.Error())
		}
		details["violations"] = errs
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, violations, "invalid option selection").WithDetails(details)
	}

	return chosen, nil
}
