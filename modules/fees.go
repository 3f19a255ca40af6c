package modules

import (
	"github.com/ethereum/go-ethereum/common/math"
)

const (
	PercentBase          = 100
	SecondsPer30DayMonth = 30 * 24 * 60 * 60
	CredentialAmount     = 1
	CredentialDecimals   = 0
	FirstSemester        = 1
	MaxFeePercent        = 100
)

// PercentOf computes (amount / 100) * pct, truncating before the multiplication.
func PercentOf(amount, pct uint64) (uint64, error) {
	fee, overflow := math.SafeMul(amount/PercentBase, pct)
	if overflow {
		return 0, wrap(ErrArithmeticOverflow, "%d / %d * %d", amount, PercentBase, pct)
	}
	return fee, nil
}

func SemesterFee(tuitionFee, maxSemesterCount uint64) (uint64, error) {
	if maxSemesterCount == 0 {
		return 0, wrap(ErrDivisionHazard, "max semester count is zero")
	}
	return tuitionFee / maxSemesterCount, nil
}

// SplitSemesterFee returns the protocol cut and the institution share of one semester payment.
// Together they never exceed the per semester fee.
func SplitSemesterFee(tuitionFee, maxSemesterCount, studentPct uint64) (protocolCut, institutionShare uint64, err error) {
	perSemester, err := SemesterFee(tuitionFee, maxSemesterCount)
	if err != nil {
		return 0, 0, err
	}
	protocolCut, err = PercentOf(perSemester, studentPct)
	if err != nil {
		return 0, 0, err
	}
	institutionShare, underflow := math.SafeSub(perSemester, protocolCut)
	if underflow {
		return 0, 0, wrap(ErrArithmeticOverflow, "protocol cut %d above semester fee %d", protocolCut, perSemester)
	}
	return protocolCut, institutionShare, nil
}

// RequiredDuration is the minimum program length in seconds.
func RequiredDuration(maxSemesterCount, monthsPerSemester uint64) (uint64, error) {
	months, overflow := math.SafeMul(maxSemesterCount, monthsPerSemester)
	if overflow {
		return 0, wrap(ErrArithmeticOverflow, "%d semesters of %d months", maxSemesterCount, monthsPerSemester)
	}
	seconds, overflow := math.SafeMul(months, SecondsPer30DayMonth)
	if overflow || seconds > math.MaxInt64 {
		return 0, wrap(ErrArithmeticOverflow, "%d months in seconds", months)
	}
	return seconds, nil
}

// Elapsed reports whether at least required seconds passed between start and now.
func Elapsed(now, start int64, required uint64) bool {
	if now < start {
		return false
	}
	return uint64(now-start) >= required
}

func increment(counter uint64, name string) (uint64, error) {
	next, overflow := math.SafeAdd(counter, 1)
	if overflow {
		return 0, wrap(ErrCounterOverflow, "%s at %d", name, counter)
	}
	return next, nil
}
