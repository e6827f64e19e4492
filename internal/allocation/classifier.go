package allocation

import (
	"github.com/garyjia/bill-invoicing/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// OrderGroup holds the orders of one business type in input order
type OrderGroup struct {
	BusinessType entity.BusinessType
	Orders       []entity.Order
}

// CategoryAllocation is the share of a business type's orders billed under one invoice category
type CategoryAllocation struct {
	BusinessType entity.BusinessType
	Category     entity.InvoiceCategory
	Name         string
	Amount       decimal.Decimal
	Quantity     int
	Orders       []entity.Order
}

// IsAggregate reports whether the allocation is issued as a single document per row
func (a CategoryAllocation) IsAggregate() bool {
	return !a.Category.IsItinerary()
}

// Classify groups orders by business type. Groups appear in first-seen order.
func Classify(orders []entity.Order) []OrderGroup {
	groups := make([]OrderGroup, 0)
	index := make(map[entity.BusinessType]int)

	for _, order := range orders {
		i, ok := index[order.BusinessType]
		if !ok {
			i = len(groups)
			index[order.BusinessType] = i
			groups = append(groups, OrderGroup{BusinessType: order.BusinessType})
		}
		groups[i].Orders = append(groups[i].Orders, order)
	}

	return groups
}

// EligibleCategories maps one business type's orders to the invoice categories it is billed under.
//
// Flight and train orders become one itinerary allocation each. Everything else is
// split between general and special VAT invoices by the policy ratio; the special
// amount is the remainder of the rounded total so the two halves always add up.
func (p Policy) EligibleCategories(bt entity.BusinessType, orders []entity.Order) []CategoryAllocation {
	total := sumPayAmount(orders)

	switch bt {
	case entity.BusinessTypeFlight:
		return []CategoryAllocation{itinerary(bt, entity.CategoryFlightItinerary, total, orders)}
	case entity.BusinessTypeTrain:
		return []CategoryAllocation{itinerary(bt, entity.CategoryTrainItinerary, total, orders)}
	}

	// Degenerate ratios bill everything under one category
	if p.GeneralRatio.IsZero() {
		return []CategoryAllocation{aggregate(bt, entity.CategorySpecial, total.Round(2), orders)}
	}
	if p.GeneralRatio.Equal(decimal.NewFromInt(1)) {
		return []CategoryAllocation{aggregate(bt, entity.CategoryGeneral, total.Round(2), orders)}
	}

	general := total.Mul(p.GeneralRatio).Round(2)
	special := total.Round(2).Sub(general)
	cut := p.splitIndex(len(orders))

	return []CategoryAllocation{
		aggregate(bt, entity.CategoryGeneral, general, orders[:cut:cut]),
		aggregate(bt, entity.CategorySpecial, special, orders[cut:]),
	}
}

func itinerary(bt entity.BusinessType, category entity.InvoiceCategory, total decimal.Decimal, orders []entity.Order) CategoryAllocation {
	return CategoryAllocation{
		BusinessType: bt,
		Category:     category,
		Name:         category.Name(),
		Amount:       total,
		Quantity:     len(orders),
		Orders:       orders,
	}
}

func aggregate(bt entity.BusinessType, category entity.InvoiceCategory, amount decimal.Decimal, orders []entity.Order) CategoryAllocation {
	return CategoryAllocation{
		BusinessType: bt,
		Category:     category,
		Name:         category.Name(),
		Amount:       amount,
		Quantity:     1,
		Orders:       orders,
	}
}

func sumPayAmount(orders []entity.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.PayAmount)
	}
	return total
}
