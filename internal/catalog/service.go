package catalog

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
	"github.com/popeyesteak/pos-backend/pkg/upstream"
)

// CategoryFallbackLabel is shown when a menu's category id cannot be
// resolved against the loaded category list.
const CategoryFallbackLabel = "ไม่ระบุ"

// CategoryAll selects the whole catalog in FilterByCategory.
const CategoryAll = "all"

// Product is the flat, terminal-friendly view of a menu record.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	CategoryID  *int64          `json:"category_id,omitempty"`
	Image       string          `json:"image,omitempty"`
	Description string          `json:"description,omitempty"`
	Recommended bool            `json:"recommended,omitempty"`

	// Kept for search; the backend serves trilingual names.
	nameEN string
	nameMM string
}

// Category is one grid filter entry.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Table is one dining table for the selection screen.
type Table struct {
	ID          int64  `json:"id"`
	TableNumber int    `json:"table_number"`
	QRCode      string `json:"qr_code,omitempty"`
}

type menuSource interface {
	ListMenus(ctx context.Context) ([]upstream.MenuRecord, error)
	ListCategories(ctx context.Context) ([]upstream.CategoryRecord, error)
	ListTables(ctx context.Context) ([]upstream.TableRecord, error)
}

// Service adapts the backend catalog into products the terminal can render.
type Service interface {
	Load(ctx context.Context) error
	Products(ctx context.Context) ([]Product, []Category, error)
	FilterByCategory(ctx context.Context, categoryIDOrAll string) ([]Product, error)
	Search(ctx context.Context, query string) ([]Product, error)
	ProductByID(ctx context.Context, id int64) (*Product, error)
	Tables(ctx context.Context) ([]Table, error)
}

type service struct {
	source menuSource

	mu         sync.RWMutex
	products   []Product
	categories []Category
	loaded     bool
}

// NewService builds the catalog adapter over the backend client.
func NewService(source menuSource) (Service, error) {
	if source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "menu source required")
	}
	return &service{source: source}, nil
}

// ErrUnavailable is the catalog-unavailable condition callers render as an
// empty state with a retry affordance.
func ErrUnavailable(cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "catalog unavailable")
}

// Load fetches menus and categories and replaces the snapshot wholesale.
// Concurrent loads race benignly; the last writer wins and carts are
// unaffected because line items capture price at add time.
func (s *service) Load(ctx context.Context) error {
	menus, err := s.source.ListMenus(ctx)
	if err != nil {
		return ErrUnavailable(err)
	}
	categories, err := s.source.ListCategories(ctx)
	if err != nil {
		return ErrUnavailable(err)
	}

	labels := make(map[int64]string, len(categories))
	cats := make([]Category, 0, len(categories))
	for _, c := range categories {
		labels[c.ID] = c.NameTH
		cats = append(cats, Category{ID: c.ID, Name: c.NameTH})
	}

	products := make([]Product, 0, len(menus))
	for _, m := range menus {
		if m.IsAvailable != nil && !*m.IsAvailable {
			continue
		}
		label := CategoryFallbackLabel
		if m.CategoryID != nil {
			if name, ok := labels[*m.CategoryID]; ok {
				label = name
			}
		}
		products = append(products, Product{
			ID:          m.ID,
			Name:        m.NameTH,
			Price:       decimal.NewFromFloat(m.Price),
			Category:    label,
			CategoryID:  m.CategoryID,
			Image:       m.Image,
			Description: m.NameEN,
			Recommended: m.IsRecommended != nil && *m.IsRecommended,
			nameEN:      m.NameEN,
			nameMM:      m.NameMM,
		})
	}

	s.mu.Lock()
	s.products = products
	s.categories = cats
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func (s *service) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Load(ctx)
}

func (s *service) Products(ctx context.Context) ([]Product, []Category, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Product(nil), s.products...), append([]Category(nil), s.categories...), nil
}

func (s *service) FilterByCategory(ctx context.Context, categoryIDOrAll string) ([]Product, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if categoryIDOrAll == "" || strings.EqualFold(categoryIDOrAll, CategoryAll) {
		return append([]Product(nil), s.products...), nil
	}

	id, err := strconv.ParseInt(categoryIDOrAll, 10, 64)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category must be a numeric id or \"all\"")
	}

	out := []Product{}
	for _, p := range s.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *service) Search(ctx context.Context, query string) ([]Product, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	defer s.mu.RUnlock()

	if needle == "" {
		return append([]Product(nil), s.products...), nil
	}

	out := []Product{}
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.nameEN), needle) ||
			strings.Contains(strings.ToLower(p.nameMM), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *service) ProductByID(ctx context.Context, id int64) (*Product, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			prod := p
			return &prod, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *service) Tables(ctx context.Context) ([]Table, error) {
	records, err := s.source.ListTables(ctx)
	if err != nil {
		return nil, ErrUnavailable(err)
	}
	out := make([]Table, 0, len(records))
	for _, t := range records {
		out = append(out, Table{ID: t.ID, TableNumber: t.TableNumber, QRCode: t.QRCode})
	}
	return out, nil
}
