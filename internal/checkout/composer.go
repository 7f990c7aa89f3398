package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/popeyesteak/pos-backend/internal/cart"
	"github.com/popeyesteak/pos-backend/pkg/enums"
	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
	"github.com/popeyesteak/pos-backend/pkg/upstream"
)

// Request carries everything the terminal sends to close a table.
type Request struct {
	PaymentMethod string           `json:"payment_method" validate:"required,oneof=cash card qr"`
	CashReceived  *decimal.Decimal `json:"cash_received,omitempty"`
	CustomerName  string           `json:"customer_name,omitempty"`
	CustomerPhone string           `json:"customer_phone,omitempty"`
}

// Result is the composed order after the backend accepted it.
type Result struct {
	Order  *upstream.OrderRecord `json:"order"`
	Totals cart.Totals           `json:"totals"`
	Change *decimal.Decimal      `json:"change,omitempty"`
}

type orderSubmitter interface {
	CreateOrder(ctx context.Context, req upstream.CreateOrderRequest) (*upstream.OrderRecord, error)
}

// Composer turns a table's cart into an order submission. Composition is
// pure; only Submit touches the network.
type Composer interface {
	Submit(ctx context.Context, tableID int64, req Request) (*Result, error)
}

type composer struct {
	carts     cart.Service
	submitter orderSubmitter
}

func NewComposer(carts cart.Service, submitter orderSubmitter) (Composer, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if submitter == nil {
		return nil, fmt.Errorf("order submitter required")
	}
	return &composer{carts: carts, submitter: submitter}, nil
}

// BuildSubmission validates the payment and composes the wire-level order
// from the cart snapshot. No I/O happens here.
func BuildSubmission(snap *cart.Snapshot, req Request) (*upstream.CreateOrderRequest, *decimal.Decimal, error) {
	if snap == nil || len(snap.Items) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	method, err := enums.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	var change *decimal.Decimal
	var cashReceived *float64
	var changeAmount *float64
	if method == enums.PaymentMethodCash {
		if req.CashReceived == nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cash_received is required for cash payments")
		}
		if req.CashReceived.LessThan(snap.Totals.GrandTotal) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cash_received is less than the grand total").
				WithDetails(map[string]any{
					"grand_total":   snap.Totals.GrandTotal.StringFixed(2),
					"cash_received": req.CashReceived.StringFixed(2),
				})
		}
		diff := req.CashReceived.Sub(snap.Totals.GrandTotal)
		change = &diff
		received, _ := req.CashReceived.Float64()
		cashReceived = &received
		changed, _ := diff.Float64()
		changeAmount = &changed
	} else if req.CashReceived != nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cash_received is only valid for cash payments")
	}

	items := make([]upstream.OrderItem, 0, len(snap.Items))
	for _, li := range snap.Items {
		unit, _ := li.UnitTotal().Float64()
		items = append(items, upstream.OrderItem{
			ProductID: li.Product.ID,
			Quantity:  li.Quantity,
			Price:     unit,
			Note:      itemNote(li),
		})
	}

	total, _ := snap.Totals.GrandTotal.Float64()
	tid := snap.TableID
	submission := &upstream.CreateOrderRequest{
		Items:         items,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		PaymentMethod: method.String(),
		TotalAmount:   total,
		CashReceived:  cashReceived,
		Change:        changeAmount,
		TableID:       &tid,
	}
	return submission, change, nil
}

// itemNote folds the chosen options into the free-form note so kitchen
// tickets show them even though the backend has no per-item option field.
func itemNote(li cart.LineItem) string {
	parts := make([]string, 0, len(li.Options)+1)
	for _, opt := range li.Options {
		parts = append(parts, fmt.Sprintf("%s: %s", opt.Group, opt.Name))
	}
	if li.Note != "" {
		parts = append(parts, li.Note)
	}
	return strings.Join(parts, "; ")
}

// Submit composes and posts the order, clearing the table's cart only after
// the backend accepted it. A failed submission leaves the cart intact.
func (c *composer) Submit(ctx context.Context, tableID int64, req Request) (*Result, error) {
	snap, err := c.carts.View(ctx, tableID)
	if err != nil {
		return nil, err
	}

	submission, change, err := BuildSubmission(snap, req)
	if err != nil {
		return nil, err
	}

	order, err := c.submitter.CreateOrder(ctx, *submission)
	if err != nil {
		return nil, err
	}

	if _, err := c.carts.Clear(ctx, tableID); err != nil {
		return nil, err
	}

	return &Result{Order: order, Totals: snap.Totals, Change: change}, nil
}
