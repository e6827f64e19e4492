package allocation

import (
	"fmt"

	"github.com/garyjia/bill-invoicing/internal/domain/entity"
)

// BuildRows turns partition leaves into invoice rows. Amounts are rounded to two
// places here and nowhere earlier; title and recipient are left for the caller.
func BuildRows(leaves []PartitionLeaf, alloc CategoryAllocation) []entity.InvoiceRow {
	rows := make([]entity.InvoiceRow, 0, len(leaves))
	for _, leaf := range leaves {
		orderNos := make([]string, 0, len(leaf.Orders))
		for _, o := range leaf.Orders {
			orderNos = append(orderNos, o.OrderNo)
		}

		rows = append(rows, entity.InvoiceRow{
			Category:        alloc.Category,
			CategoryName:    alloc.Name,
			BusinessType:    alloc.BusinessType,
			Summary:         leaf.Label,
			Amount:          leaf.Amount.Round(2),
			OrderCount:      len(leaf.Orders),
			Quantity:        leaf.Quantity,
			DimensionValues: leaf.Values,
			OrderNos:        orderNos,
		})
	}
	return rows
}

// Generate builds the invoice table for a set of orders: classify by business
// type, allocate to eligible categories, partition, and build rows. An empty
// order set yields an empty table.
func Generate(orders []entity.Order, dims []entity.PartitionKey, policy Policy) ([]entity.InvoiceRow, error) {
	if err := ValidateDimensions(dims); err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.PayAmount.IsNegative() {
			return nil, fmt.Errorf("%w: order %s", ErrNegativeAmount, o.OrderNo)
		}
	}

	rows := make([]entity.InvoiceRow, 0)
	for _, group := range Classify(orders) {
		for _, alloc := range policy.EligibleCategories(group.BusinessType, group.Orders) {
			leaves, err := Partition(alloc, dims)
			if err != nil {
				return nil, err
			}
			rows = append(rows, BuildRows(leaves, alloc)...)
		}
	}
	return rows, nil
}
