package cart

import (
	"context"
	"testing"

	"github.com/popeyesteak/pos-backend/internal/catalog"
	"github.com/popeyesteak/pos-backend/internal/options"
	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
)

type stubProducts struct {
	products map[int64]*catalog.Product
}

func (s *stubProducts) ProductByID(ctx context.Context, id int64) (*catalog.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

type stubResolver struct {
	groups map[int64][]options.Group
	err    error
}

func (s *stubResolver) HasOptions(ctx context.Context, productID int64) (bool, error) {
	return len(s.groups[productID]) > 0, s.err
}

func (s *stubResolver) ResolveGroups(ctx context.Context, productID int64) ([]options.Group, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.groups[productID], nil
}

func newTestService(t *testing.T, resolver options.Resolver) Service {
	t.Helper()
	products := &stubProducts{products: map[int64]*catalog.Product{
		1: {ID: 1, Name: "Pork Steak", Price: dec("150")},
		2: {ID: 2, Name: "Lemon Tea", Price: dec("35")},
	}}
	svc, err := NewService(NewStore(), products, resolver, taxRate)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func donenessGroup(required bool) options.Group {
	return options.Group{
		ID:       10,
		Name:     "Doneness",
		Required: required,
		Choices: []options.Choice{
			{ID: 100, Name: "Medium", PriceDelta: dec("0")},
			{ID: 101, Name: "Well Done", PriceDelta: dec("0")},
		},
	}
}

func sideGroup() options.Group {
	return options.Group{
		ID:   11,
		Name: "Side",
		Choices: []options.Choice{
			{ID: 110, Name: "Fries", PriceDelta: dec("20")},
			{ID: 111, Name: "Salad", PriceDelta: dec("25")},
		},
	}
}

func TestAddItemResolvesPricesServerSide(t *testing.T) {
	resolver := &stubResolver{groups: map[int64][]options.Group{
		1: {donenessGroup(true), sideGroup()},
	}}
	svc := newTestService(t, resolver)

	snap, err := svc.AddItem(context.Background(), 7, 1, []Selection{
		{Group: "Doneness", Choice: "Medium"},
		{Group: "Side", Choice: "Fries"},
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(snap.Items) != 1 {
		t.Fatalf("expected one slot, got %d", len(snap.Items))
	}
	if !snap.Items[0].UnitTotal().Equal(dec("170")) {
		t.Fatalf("unit total = %s, want 170", snap.Items[0].UnitTotal())
	}
	if !snap.Totals.GrandTotal.Equal(dec("181.90")) {
		t.Fatalf("grand total = %s, want 181.90", snap.Totals.GrandTotal)
	}
}

func TestAddItemMissingRequiredGroup(t *testing.T) {
	resolver := &stubResolver{groups: map[int64][]options.Group{
		1: {donenessGroup(true)},
	}}
	svc := newTestService(t, resolver)

	_, err := svc.AddItem(context.Background(), 7, 1, nil)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
	details, ok := appErr.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected structured details, got %T", appErr.Details())
	}
	missing, ok := details["missing_required_groups"].([]string)
	if !ok || len(missing) != 1 || missing[0] != "Doneness" {
		t.Fatalf("expected Doneness reported missing, got %v", details)
	}

	snap, err := svc.View(context.Background(), 7)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(snap.Items) != 0 {
		t.Fatalf("failed add must leave the cart untouched")
	}
}

func TestAddItemUnknownGroupAndChoice(t *testing.T) {
	resolver := &stubResolver{groups: map[int64][]options.Group{
		1: {donenessGroup(false)},
	}}
	svc := newTestService(t, resolver)

	_, err := svc.AddItem(context.Background(), 7, 1, []Selection{
		{Group: "Sauce", Choice: "Pepper"},
	})
	if err == nil {
		t.Fatalf("expected error for unknown group")
	}

	_, err = svc.AddItem(context.Background(), 7, 1, []Selection{
		{Group: "Doneness", Choice: "Blue"},
	})
	if err == nil {
		t.Fatalf("expected error for unknown choice")
	}
}

func TestAddItemOptionalGroupMaySkip(t *testing.T) {
	resolver := &stubResolver{groups: map[int64][]options.Group{
		1: {sideGroup()},
	}}
	svc := newTestService(t, resolver)

	snap, err := svc.AddItem(context.Background(), 7, 1, nil)
	if err != nil {
		t.Fatalf("optional groups must not block: %v", err)
	}
	if len(snap.Items) != 1 {
		t.Fatalf("expected one slot")
	}
}

func TestAddItemResolverFailureBlocksAdd(t *testing.T) {
	resolver := &stubResolver{err: pkgerrors.New(pkgerrors.CodeDependency, "backend down")}
	svc := newTestService(t, resolver)

	_, err := svc.AddItem(context.Background(), 7, 1, nil)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc := newTestService(t, &stubResolver{})

	_, err := svc.AddItem(context.Background(), 7, 999, nil)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetQuantityAndRemove(t *testing.T) {
	resolver := &stubResolver{groups: map[int64][]options.Group{}}
	svc := newTestService(t, resolver)

	snap, err := svc.AddItem(context.Background(), 3, 2, nil)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	key := snap.Items[0].Key

	snap, err = svc.SetQuantity(context.Background(), 3, key, 4)
	if err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if snap.Items[0].Quantity != 4 {
		t.Fatalf("quantity = %d, want 4", snap.Items[0].Quantity)
	}

	if _, err := svc.SetQuantity(context.Background(), 3, "missing", 2); err == nil {
		t.Fatalf("expected not found for missing slot")
	}

	snap, err = svc.SetQuantity(context.Background(), 3, key, 0)
	if err != nil {
		t.Fatalf("zero quantity should remove, not error: %v", err)
	}
	if len(snap.Items) != 0 {
		t.Fatalf("expected empty cart")
	}
}

func TestClearAndTableIsolation(t *testing.T) {
	resolver := &stubResolver{groups: map[int64][]options.Group{}}
	svc := newTestService(t, resolver)

	if _, err := svc.AddItem(context.Background(), 1, 1, nil); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), 2, 2, nil); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	snap, err := svc.Clear(context.Background(), 1)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(snap.Items) != 0 {
		t.Fatalf("table 1 not cleared")
	}

	snap, err = svc.View(context.Background(), 2)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(snap.Items) != 1 {
		t.Fatalf("table 2 must be unaffected")
	}
}
