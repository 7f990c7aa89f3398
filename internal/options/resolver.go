package options

import (
	"context"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
	"github.com/popeyesteak/pos-backend/pkg/upstream"
)

// Choice is one selectable add-on with its price delta.
type Choice struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price_delta"`
	Default    bool            `json:"default,omitempty"`
}

// Group is a named choice set attached to a product. A required group must
// have a selection before the product can join the cart.
type Group struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Required bool     `json:"required"`
	Choices  []Choice `json:"choices"`
}

type optionSource interface {
	MappingsByMenu(ctx context.Context, menuID int64) ([]upstream.MappingRecord, error)
	GetOptionGroup(ctx context.Context, id int64) (*upstream.OptionGroupRecord, error)
	ListOptions(ctx context.Context) ([]upstream.OptionRecord, error)
}

// Resolver determines whether a product carries option groups and populates
// them fully before the add-to-cart path may proceed.
type Resolver interface {
	HasOptions(ctx context.Context, productID int64) (bool, error)
	ResolveGroups(ctx context.Context, productID int64) ([]Group, error)
}

type resolver struct {
	source optionSource
}

// NewResolver builds the option resolver over the backend client.
func NewResolver(source optionSource) (Resolver, error) {
	if source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "option source required")
	}
	return &resolver{source: source}, nil
}

func (r *resolver) HasOptions(ctx context.Context, productID int64) (bool, error) {
	mappings, err := r.source.MappingsByMenu(ctx, productID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve option mappings")
	}
	return len(mappings) > 0, nil
}

// ResolveGroups populates every mapped group with its choices. Resolution is
// all-or-nothing for transport failures: the cart-add path never proceeds on
// partial data. A mapping whose group no longer exists is skipped; when every
// mapping is stale the result is an empty slice, which callers treat as
// "no options".
func (r *resolver) ResolveGroups(ctx context.Context, productID int64) ([]Group, error) {
	mappings, err := r.source.MappingsByMenu(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve option mappings")
	}
	if len(mappings) == 0 {
		return []Group{}, nil
	}

	// Lazily fetched the first time a group arrives without its choices
	// attached; the backend cannot filter options server-side.
	var allOptions []upstream.OptionRecord
	optionsFetched := false

	groups := make([]Group, 0, len(mappings))
	for _, mapping := range mappings {
		record, err := r.source.GetOptionGroup(ctx, mapping.OptionGroupID)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve option group")
		}

		choiceRecords := record.Options
		if len(choiceRecords) == 0 {
			if !optionsFetched {
				allOptions, err = r.source.ListOptions(ctx)
				if err != nil {
					return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve option choices")
				}
				optionsFetched = true
			}
			for _, opt := range allOptions {
				if opt.OptionGroupID != nil && *opt.OptionGroupID == record.ID {
					choiceRecords = append(choiceRecords, opt)
				}
			}
		}

		choices := make([]Choice, 0, len(choiceRecords))
		for _, opt := range choiceRecords {
			choices = append(choices, Choice{
				ID:         opt.ID,
				Name:       opt.NameTH,
				PriceDelta: decimal.NewFromFloat(opt.Price),
				Default:    opt.IsDefault != nil && *opt.IsDefault,
			})
		}

		groups = append(groups, Group{
			ID:       record.ID,
			Name:     record.NameTH,
			Required: record.IsRequired != nil && *record.IsRequired,
			Choices:  choices,
		})
	}

	return groups, nil
}
