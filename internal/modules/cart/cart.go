// README: Per-customer in-memory cart grouped by owning vendor node.
package cart

import (
	"sort"
	"sync"

	"mensa/internal/modules/catalog"
	"mensa/internal/types"
)

// Line is one selected item with its quantity.
type Line struct {
	Item     catalog.Item
	Quantity int
}

// Cost is quantity times unit price.
func (l Line) Cost() types.Money {
	return l.Item.Price.Mul(l.Quantity)
}

// Info summarizes a snapshot: distinct owner-groups, total item count, and
// total cost across all groups.
type Info struct {
	OrdersNum int
	ItemsNum  int
	TotalCost types.Money
}

// Cart holds ephemeral selections for all customers of this process. It has
// no persistence; a group disappears when checked out or cleared.
type Cart struct {
	mu         sync.Mutex
	byCustomer map[types.ChatID]map[types.NodeID][]Line
}

func New() *Cart {
	return &Cart{byCustomer: make(map[types.ChatID]map[types.NodeID][]Line)}
}

// Add adjusts the quantity of item for customer by delta, clamped at zero,
// and returns the new quantity. A line that reaches zero is removed.
func (c *Cart) Add(customer types.ChatID, item catalog.Item, delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	groups, ok := c.byCustomer[customer]
	if !ok {
		groups = make(map[types.NodeID][]Line)
		c.byCustomer[customer] = groups
	}

	lines := groups[item.OwnerNode]
	idx := -1
	for i, l := range lines {
		if l.Item.Node == item.Node {
			idx = i
			break
		}
	}

	qty := delta
	if idx >= 0 {
		qty = lines[idx].Quantity + delta
	}
	if qty < 0 {
		qty = 0
	}

	switch {
	case qty == 0 && idx >= 0:
		lines = append(lines[:idx], lines[idx+1:]...)
	case qty == 0:
		// nothing to record
	case idx >= 0:
		lines[idx].Quantity = qty
	default:
		lines = append(lines, Line{Item: item, Quantity: qty})
	}

	if len(lines) == 0 {
		delete(groups, item.OwnerNode)
	} else {
		groups[item.OwnerNode] = lines
	}
	if len(groups) == 0 {
		delete(c.byCustomer, customer)
	}
	return qty
}

// Snapshot returns a copy of the customer's current groups plus the rollup.
func (c *Cart) Snapshot(customer types.ChatID) (map[types.NodeID][]Line, Info) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var info Info
	out := make(map[types.NodeID][]Line)
	for node, lines := range c.byCustomer[customer] {
		copied := make([]Line, len(lines))
		copy(copied, lines)
		sort.Slice(copied, func(i, j int) bool {
			return copied[i].Item.Node < copied[j].Item.Node
		})
		out[node] = copied

		info.OrdersNum++
		for _, l := range copied {
			info.ItemsNum += l.Quantity
			info.TotalCost = info.TotalCost.Add(l.Cost())
		}
	}
	return out, info
}

// ConsumeGroup removes and returns the lines of one owner-group. It returns
// nil when the group does not exist.
func (c *Cart) ConsumeGroup(customer types.ChatID, node types.NodeID) []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	groups := c.byCustomer[customer]
	lines, ok := groups[node]
	if !ok {
		return nil
	}
	delete(groups, node)
	if len(groups) == 0 {
		delete(c.byCustomer, customer)
	}
	return lines
}

// Clear drops everything the customer has selected.
func (c *Cart) Clear(customer types.ChatID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byCustomer, customer)
}
