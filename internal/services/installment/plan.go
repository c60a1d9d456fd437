package installment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCount       = errors.New("installment count must be positive")
	ErrReservationTooHigh = errors.New("reservation must be lower than the total")
	ErrNegativeAmount     = errors.New("amounts must be positive")
)

// Installment is one entry of a generated plan. Number 0 is the
// reservation, due immediately.
type Installment struct {
	Number  int             `json:"installment_number"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`
}

type Plan struct {
	Reservation  Installment   `json:"reservation"`
	Installments []Installment `json:"installments"`
}

// All returns the reservation followed by the future installments.
func (p *Plan) All() []Installment {
	return append([]Installment{p.Reservation}, p.Installments...)
}

// Total sums the reservation and every installment.
func (p *Plan) Total() decimal.Decimal {
	total := p.Reservation.Amount
	for _, in := range p.Installments {
		total = total.Add(in.Amount)
	}
	return total
}

// BuildPlan splits total into a reservation due at now plus count equal
// monthly installments starting at firstDue. Amounts are rounded down to
// two decimal places; the rounding remainder lands on the final
// installment so the plan sums to total exactly.
func BuildPlan(total, reservation decimal.Decimal, count int, now, firstDue time.Time) (*Plan, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}
	if total.Sign() <= 0 || reservation.Sign() < 0 {
		return nil, ErrNegativeAmount
	}
	if reservation.GreaterThanOrEqual(total) {
		return nil, ErrReservationTooHigh
	}

	remaining := total.Sub(reservation)
	base := remaining.Div(decimal.NewFromInt(int64(count))).RoundDown(2)

	plan := &Plan{
		Reservation: Installment{Number: 0, Amount: reservation, DueDate: now},
	}

	allocated := decimal.Zero
	for i := 1; i <= count; i++ {
		amount := base
		if i == count {
			amount = remaining.Sub(allocated)
		}
		allocated = allocated.Add(amount)

		plan.Installments = append(plan.Installments, Installment{
			Number:  i,
			Amount:  amount,
			DueDate: firstDue.AddDate(0, i-1, 0),
		})
	}

	return plan, nil
}
