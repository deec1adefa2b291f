package enums

import "fmt"

// SaleStatus tracks the fulfillment lifecycle of an accepted sale.
type SaleStatus string

const (
	SaleStatusAccepted   SaleStatus = "accepted"
	SaleStatusProcessing SaleStatus = "processing"
	SaleStatusShipped    SaleStatus = "shipped"
	SaleStatusDelivered  SaleStatus = "delivered"
	SaleStatusCompleted  SaleStatus = "completed"
	SaleStatusCancelled  SaleStatus = "cancelled"
	SaleStatusReturned   SaleStatus = "returned"
)

var validSaleStatuses = []SaleStatus{
	SaleStatusAccepted,
	SaleStatusProcessing,
	SaleStatusShipped,
	SaleStatusDelivered,
	SaleStatusCompleted,
	SaleStatusCancelled,
	SaleStatusReturned,
}

// String implements fmt.Stringer.
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleStatus.
func (s SaleStatus) IsValid() bool {
	for _, candidate := range validSaleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the lifecycle. Terminal sales
// are retained for history, never deleted.
func (s SaleStatus) IsTerminal() bool {
	switch s {
	case SaleStatusCompleted, SaleStatusCancelled, SaleStatusReturned:
		return true
	default:
		return false
	}
}

// SaleStatuses returns every known status in expected progression order.
func SaleStatuses() []SaleStatus {
	out := make([]SaleStatus, len(validSaleStatuses))
	copy(out, validSaleStatuses)
	return out
}

// ParseSaleStatus converts raw input into a SaleStatus.
func ParseSaleStatus(value string) (SaleStatus, error) {
	for _, candidate := range validSaleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale status %q", value)
}
