package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/popeyesteak/pos-backend/internal/catalog"
	"github.com/popeyesteak/pos-backend/pkg/enums"
	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
	"github.com/popeyesteak/pos-backend/pkg/upstream"
)

// SalesReport summarizes one business day.
type SalesReport struct {
	Date            string           `json:"date"`
	OrderCount      int              `json:"order_count"`
	GrossSales      decimal.Decimal  `json:"gross_sales"`
	AverageOrder    decimal.Decimal  `json:"average_order"`
	ByPaymentMethod map[string]int   `json:"by_payment_method"`
	TopProducts     []ProductSummary `json:"top_products"`
}

// ProductSummary ranks a product by units sold within the report window.
type ProductSummary struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type orderSource interface {
	ListOrders(ctx context.Context, startDate, endDate string) ([]upstream.OrderRecord, error)
	ListPayments(ctx context.Context) ([]upstream.PaymentRecord, error)
}

type productNamer interface {
	ProductByID(ctx context.Context, id int64) (*catalog.Product, error)
}

// Service builds daily sales summaries from the backend's order history.
type Service interface {
	Sales(ctx context.Context, date string) (*SalesReport, error)
}

type service struct {
	source   orderSource
	products productNamer
}

func NewService(source orderSource, products productNamer) (Service, error) {
	if source == nil {
		return nil, fmt.Errorf("order source required")
	}
	return &service{source: source, products: products}, nil
}

const topProductLimit = 5

// Sales aggregates the orders for one calendar date. Cancelled orders are
// excluded from every figure. Payment-method counts come from the payments
// feed matched by order id; unmatched orders count under "unknown".
func (s *service) Sales(ctx context.Context, date string) (*SalesReport, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "date must be YYYY-MM-DD")
	}

	orders, err := s.source.ListOrders(ctx, date, date)
	if err != nil {
		return nil, err
	}
	payments, err := s.source.ListPayments(ctx)
	if err != nil {
		return nil, err
	}

	methodByOrder := make(map[int64]string, len(payments))
	for _, p := range payments {
		if p.Method != "" {
			methodByOrder[p.OrderID] = p.Method
		}
	}

	report := &SalesReport{
		Date:            date,
		GrossSales:      decimal.Zero,
		AverageOrder:    decimal.Zero,
		ByPaymentMethod: map[string]int{},
	}

	byProduct := map[int64]*ProductSummary{}
	for _, order := range orders {
		status := enums.OrderStatus(order.Status)
		if order.Status != "" && !status.CountsTowardRevenue() {
			continue
		}

		report.OrderCount++
		report.GrossSales = report.GrossSales.Add(decimal.NewFromFloat(order.TotalPrice))

		method := methodByOrder[order.ID]
		if method == "" {
			method = "unknown"
		}
		report.ByPaymentMethod[method]++

		for _, item := range order.Items {
			summary, ok := byProduct[item.ProductID]
			if !ok {
				summary = &ProductSummary{ProductID: item.ProductID}
				byProduct[item.ProductID] = summary
			}
			summary.Quantity += item.Quantity
			lineRevenue := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
			summary.Revenue = summary.Revenue.Add(lineRevenue)
		}
	}

	if report.OrderCount > 0 {
		report.AverageOrder = report.GrossSales.DivRound(decimal.NewFromInt(int64(report.OrderCount)), 2)
	}
	report.GrossSales = report.GrossSales.Round(2)
	report.TopProducts = s.rankProducts(ctx, byProduct)
	return report, nil
}

func (s *service) rankProducts(ctx context.Context, byProduct map[int64]*ProductSummary) []ProductSummary {
	ranked := make([]ProductSummary, 0, len(byProduct))
	for _, summary := range byProduct {
		summary.Revenue = summary.Revenue.Round(2)
		ranked = append(ranked, *summary)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	if len(ranked) > topProductLimit {
		ranked = ranked[:topProductLimit]
	}

	// Names are cosmetic; a catalog miss leaves the id-only row in place.
	if s.products != nil {
		for i := range ranked {
			if product, err := s.products.ProductByID(ctx, ranked[i].ProductID); err == nil {
				ranked[i].Name = product.Name
			}
		}
	}
	return ranked
}
