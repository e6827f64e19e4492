package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultGeneralRatio is the share of aggregate business billed as general VAT invoices
const DefaultGeneralRatio = 0.6

var defaultGeneralRatio = decimal.NewFromFloat(DefaultGeneralRatio)

// Policy decides how non-itinerary business is split between general and
// special VAT invoices. The ratio is a demo placeholder, not a tax rule.
type Policy struct {
	GeneralRatio decimal.Decimal
}

// DefaultPolicy splits 60% general / 40% special
func DefaultPolicy() Policy {
	return Policy{GeneralRatio: defaultGeneralRatio}
}

// NewPolicy builds a policy from a configured ratio
func NewPolicy(generalRatio float64) (Policy, error) {
	ratio := decimal.NewFromFloat(generalRatio)
	if ratio.IsNegative() || ratio.GreaterThan(decimal.NewFromInt(1)) {
		return Policy{}, fmt.Errorf("%w: %s", ErrInvalidRatio, ratio)
	}
	return Policy{GeneralRatio: ratio}, nil
}

// splitIndex returns how many leading orders go to the general invoice.
// With at least two orders each side keeps one.
func (p Policy) splitIndex(n int) int {
	cut := int(decimal.NewFromInt(int64(n)).Mul(p.GeneralRatio).Round(0).IntPart())
	if n >= 2 {
		if cut < 1 {
			cut = 1
		}
		if cut > n-1 {
			cut = n - 1
		}
	}
	if cut > n {
		cut = n
	}
	return cut
}
