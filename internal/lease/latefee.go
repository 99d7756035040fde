package lease

import "github.com/shopspring/decimal"

// Late-fee schedule for overdue recurring rent: nothing inside the grace
// period, then a base percentage plus a weekly percentage, capped.
var (
	lateFeeGraceDays  = 5
	lateFeeBaseRate   = decimal.NewFromFloat(0.05) // once more than 5 days late
	lateFeeWeeklyRate = decimal.NewFromFloat(0.02) // per additional full week
	lateFeeCapRate    = decimal.NewFromFloat(0.20)
)

// LateFee computes the penalty for a rent payment that is daysLate overdue.
func LateFee(amount decimal.Decimal, daysLate int) decimal.Decimal {
	if daysLate <= lateFeeGraceDays || !amount.IsPositive() {
		return decimal.Zero
	}

	fee := amount.Mul(lateFeeBaseRate)

	extraWeeks := (daysLate - lateFeeGraceDays) / 7
	if extraWeeks > 0 {
		fee = fee.Add(amount.Mul(lateFeeWeeklyRate).Mul(decimal.NewFromInt(int64(extraWeeks))))
	}

	cap := amount.Mul(lateFeeCapRate)
	if fee.GreaterThan(cap) {
		fee = cap
	}

	return fee.Round(2)
}

// DaysLate returns how many whole days have passed since the due date.
func DaysLate(due, now int64) int {
	if due <= 0 || now <= due {
		return 0
	}
	return int((now - due) / 86400)
}
