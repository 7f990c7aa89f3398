package upstream

// The backend serves trilingual menu data (Thai, English, Burmese). Records
// below mirror its JSON shapes verbatim; adaptation to POS types happens in
// the internal services.

// MenuRecord is one sellable menu entry.
type MenuRecord struct {
	ID            int64    `json:"id"`
	CategoryID    *int64   `json:"category_id,omitempty"`
	MenuNumber    int      `json:"menu_number"`
	NameTH        string   `json:"name_th"`
	NameEN        string   `json:"name_en,omitempty"`
	NameMM        string   `json:"name_mm,omitempty"`
	Price         float64  `json:"price"`
	Image         string   `json:"image,omitempty"`
	IsAvailable   *bool    `json:"is_available,omitempty"`
	IsRecommended *bool    `json:"is_recommended,omitempty"`
}

// CategoryRecord groups menus for the grid filter.
type CategoryRecord struct {
	ID     int64  `json:"id"`
	NameTH string `json:"name_th"`
	NameEN string `json:"name_en,omitempty"`
}

// OptionGroupRecord is a named set of add-on choices (e.g. doneness).
type OptionGroupRecord struct {
	ID         int64          `json:"id"`
	NameTH     string         `json:"name_th"`
	NameEN     string         `json:"name_en,omitempty"`
	NameMM     string         `json:"name_mm,omitempty"`
	IsRequired *bool          `json:"is_required,omitempty"`
	Options    []OptionRecord `json:"options,omitempty"`
}

// OptionRecord is one concrete choice inside a group, with its price delta.
type OptionRecord struct {
	ID            int64   `json:"id"`
	OptionGroupID *int64  `json:"option_group_id,omitempty"`
	NameTH        string  `json:"name_th"`
	NameEN        string  `json:"name_en,omitempty"`
	NameMM        string  `json:"name_mm,omitempty"`
	Price         float64 `json:"price"`
	IsDefault     *bool   `json:"is_default,omitempty"`
}

// MappingRecord links a menu to an option group (many-to-many).
type MappingRecord struct {
	MenuID        int64 `json:"menu_id"`
	OptionGroupID int64 `json:"option_group_id"`
}

// TableRecord is one dining table.
type TableRecord struct {
	ID          int64  `json:"id"`
	TableNumber int    `json:"table_number"`
	QRCode      string `json:"qr_code,omitempty"`
}

// OrderItem is one line of a submitted order, price captured at add time.
type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Note      string  `json:"note,omitempty"`
}

// CreateOrderRequest is the order submission boundary's wire shape.
type CreateOrderRequest struct {
	Items         []OrderItem `json:"items"`
	CustomerName  string      `json:"customer_name,omitempty"`
	CustomerPhone string      `json:"customer_phone,omitempty"`
	PaymentMethod string      `json:"payment_method"`
	TotalAmount   float64     `json:"total_amount"`
	CashReceived  *float64    `json:"cash_received,omitempty"`
	Change        *float64    `json:"change,omitempty"`
	TableID       *int64      `json:"table_id,omitempty"`
}

// OrderRecord is the backend's view of a stored order. Items are attached
// when the backend embeds them; older deployments omit the field.
type OrderRecord struct {
	ID         int64       `json:"id"`
	TableID    *int64      `json:"table_id,omitempty"`
	Status     string      `json:"status,omitempty"`
	TotalPrice float64     `json:"total_price"`
	Items      []OrderItem `json:"items,omitempty"`
	CreatedAt  string      `json:"created_at,omitempty"`
}

// PaymentRecord is one settled payment.
type PaymentRecord struct {
	ID      int64   `json:"id"`
	OrderID int64   `json:"order_id"`
	Amount  float64 `json:"amount"`
	Method  string  `json:"method,omitempty"`
	Status  string  `json:"status,omitempty"`
	PaidAt  string  `json:"paid_at,omitempty"`
}
