package domain

import "time"

// PrepaidTransactionKind type of a prepaid balance movement
type PrepaidTransactionKind string

const (
	TxBookingDebit       PrepaidTransactionKind = "booking_debit"
	TxCancellationRefund PrepaidTransactionKind = "cancellation_refund"
)

// PrepaidTransaction immutable ledger entry of a prepaid balance movement.
// Amount is signed: negative for debits, positive for refunds.
type PrepaidTransaction struct {
	ID           int64
	MemberID     int64
	BookingID    *int64
	Kind         PrepaidTransactionKind
	Amount       int64
	BalanceAfter int64
	CreatedAt    time.Time
}

// PrepaidDebit amount to debit at booking: min(balance, unitPrice), never negative
func PrepaidDebit(balance, unitPrice int64) int64 {
	if balance <= 0 || unitPrice <= 0 {
		return 0
	}
	if balance < unitPrice {
		return balance
	}
	return unitPrice
}

// RefundFor amount credited back when the booking ends in status.
// Only a non-late cancellation returns the recorded prepaid amount.
func RefundFor(b *Booking, status BookingStatus) int64 {
	if status != StatusCancelled || b.PaidFromPrepaid <= 0 {
		return 0
	}
	return b.PaidFromPrepaid
}
