package enums

import "testing"

func TestParsePaymentMethod(t *testing.T) {
	for _, raw := range []string{"cash", "card", "qr"} {
		method, err := ParsePaymentMethod(raw)
		if err != nil {
			t.Fatalf("ParsePaymentMethod(%q): %v", raw, err)
		}
		if method.String() != raw || !method.IsValid() {
			t.Fatalf("round trip failed for %q", raw)
		}
	}

	for _, raw := range []string{"", "CASH", "crypto", "promptpay"} {
		if _, err := ParsePaymentMethod(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestOrderStatusCountsTowardRevenue(t *testing.T) {
	if !OrderStatusPending.CountsTowardRevenue() {
		t.Fatalf("pending orders count")
	}
	if !OrderStatusCompleted.CountsTowardRevenue() {
		t.Fatalf("completed orders count")
	}
	if OrderStatusCancelled.CountsTowardRevenue() {
		t.Fatalf("cancelled orders must not count")
	}
}
