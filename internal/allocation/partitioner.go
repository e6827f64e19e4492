package allocation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/shopspring/decimal"
)

const (
	// MaxDimensions is the deepest supported split
	MaxDimensions = 2

	// AllOrdersLabel labels the single leaf of an unsplit allocation
	AllOrdersLabel = "全部订单"

	labelSeparator = " - "
)

// PartitionLeaf is one bucket of an allocation after splitting by the requested dimensions.
// Amount is unrounded for itinerary allocations and already in cents for aggregate ones.
type PartitionLeaf struct {
	Label    string
	Values   []string
	Orders   []entity.Order
	Amount   decimal.Decimal
	Quantity int
}

// ParseDimensions converts raw keys into partition keys, skipping blanks
func ParseDimensions(raw []string) ([]entity.PartitionKey, error) {
	dims := make([]entity.PartitionKey, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		dims = append(dims, entity.PartitionKey(r))
	}
	if err := ValidateDimensions(dims); err != nil {
		return nil, err
	}
	return dims, nil
}

// ValidateDimensions rejects unknown, repeated or too many keys
func ValidateDimensions(dims []entity.PartitionKey) error {
	if len(dims) > MaxDimensions {
		return fmt.Errorf("%w: got %d, max %d", ErrTooManyDimensions, len(dims), MaxDimensions)
	}
	seen := make(map[entity.PartitionKey]bool, len(dims))
	for _, d := range dims {
		if !d.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidDimension, string(d))
		}
		if seen[d] {
			return fmt.Errorf("%w: %q", ErrDuplicateDimension, string(d))
		}
		seen[d] = true
	}
	return nil
}

// Partition splits an allocation by up to two dimensions.
//
// Leaves follow the first-seen order of values as orders are scanned; no sorting
// is applied. Itinerary leaves carry the exact sum of their orders. Aggregate
// leaves share the allocation amount in proportion to their order sums, so a
// category's total is the same whichever dimensions were chosen.
func Partition(alloc CategoryAllocation, dims []entity.PartitionKey) ([]PartitionLeaf, error) {
	if err := ValidateDimensions(dims); err != nil {
		return nil, err
	}

	if len(dims) == 0 || len(alloc.Orders) == 0 {
		return []PartitionLeaf{{
			Label:    AllOrdersLabel,
			Orders:   alloc.Orders,
			Amount:   alloc.Amount,
			Quantity: leafQuantity(alloc, len(alloc.Orders)),
		}}, nil
	}

	leaves := groupBy(alloc.Orders, dims, nil)

	if alloc.IsAggregate() {
		apportion(alloc.Amount, leaves)
	} else {
		for i := range leaves {
			leaves[i].Amount = sumPayAmount(leaves[i].Orders)
		}
	}
	for i := range leaves {
		leaves[i].Quantity = leafQuantity(alloc, len(leaves[i].Orders))
	}

	return leaves, nil
}

func groupBy(orders []entity.Order, dims []entity.PartitionKey, prefix []string) []PartitionLeaf {
	if len(dims) == 0 {
		return []PartitionLeaf{{
			Label:  strings.Join(prefix, labelSeparator),
			Values: prefix,
			Orders: orders,
		}}
	}

	key := dims[0]
	var seen []string
	buckets := make(map[string][]entity.Order)
	for _, o := range orders {
		v := o.PartitionValue(key)
		if _, ok := buckets[v]; !ok {
			seen = append(seen, v)
		}
		buckets[v] = append(buckets[v], o)
	}

	var leaves []PartitionLeaf
	for _, v := range seen {
		values := append(append([]string(nil), prefix...), v)
		leaves = append(leaves, groupBy(buckets[v], dims[1:], values)...)
	}
	return leaves
}

func leafQuantity(alloc CategoryAllocation, orderCount int) int {
	if alloc.IsAggregate() {
		return 1
	}
	return orderCount
}

// apportion distributes total over leaves by weight using the largest-remainder
// method on whole cents, so the leaf amounts sum to round(total, 2) exactly.
// Weights are the leaves' order sums, or their order counts when those sum to zero.
func apportion(total decimal.Decimal, leaves []PartitionLeaf) {
	weights := make([]decimal.Decimal, len(leaves))
	weightSum := decimal.Zero
	for i, leaf := range leaves {
		weights[i] = sumPayAmount(leaf.Orders)
		weightSum = weightSum.Add(weights[i])
	}
	if !weightSum.IsPositive() {
		weightSum = decimal.Zero
		for i, leaf := range leaves {
			weights[i] = decimal.NewFromInt(int64(len(leaf.Orders)))
			weightSum = weightSum.Add(weights[i])
		}
	}

	totalCents := total.Round(2).Shift(2)
	cents := make([]int64, len(leaves))
	remainders := make([]decimal.Decimal, len(leaves))
	var allocated int64
	for i := range leaves {
		q, r := totalCents.Mul(weights[i]).QuoRem(weightSum, 0)
		cents[i] = q.IntPart()
		remainders[i] = r
		allocated += cents[i]
	}

	order := make([]int, len(leaves))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})

	leftover := totalCents.IntPart() - allocated
	for k := 0; int64(k) < leftover && k < len(order); k++ {
		cents[order[k]]++
	}

	for i := range leaves {
		leaves[i].Amount = decimal.New(cents[i], -2)
	}
}
