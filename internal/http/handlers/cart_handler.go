// README: Cart handlers: quantity changes and the checkout preview.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mensa/internal/modules/cart"
	"mensa/internal/modules/catalog"
	"mensa/internal/types"
)

// Resolver looks an orderable item up by its menu node.
type Resolver interface {
	Resolve(ctx context.Context, id types.NodeID) (*catalog.Item, error)
}

type CartHandler struct {
	cart     *cart.Cart
	resolver Resolver
}

func NewCartHandler(c *cart.Cart, r Resolver) *CartHandler {
	return &CartHandler{cart: c, resolver: r}
}

type cartAddReq struct {
	CustomerID int64 `json:"customer_id"`
	NodeID     int64 `json:"node_id"`
	Delta      int   `json:"delta"`
}

func (h *CartHandler) Add(c *gin.Context) {
	var req cartAddReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CustomerID == 0 || req.NodeID == 0 || req.Delta == 0 {
		writeError(c, http.StatusBadRequest, "missing fields")
		return
	}
	item, err := h.resolver.Resolve(c.Request.Context(), types.NodeID(req.NodeID))
	if err != nil {
		writeError(c, http.StatusNotFound, "unknown node")
		return
	}
	qty := h.cart.Add(types.ChatID(req.CustomerID), *item, req.Delta)
	c.JSON(http.StatusOK, gin.H{"node_id": req.NodeID, "quantity": qty})
}

func (h *CartHandler) Clear(c *gin.Context) {
	customer, err := strconv.ParseInt(c.Param("customer"), 10, 64)
	if err != nil || customer == 0 {
		writeError(c, http.StatusBadRequest, "invalid customer id")
		return
	}
	h.cart.Clear(types.ChatID(customer))
	c.Status(http.StatusNoContent)
}

type cartLine struct {
	NodeID   int64  `json:"node_id"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Cost     string `json:"cost"`
}

type cartGroup struct {
	VendorNodeID int64      `json:"vendor_node_id"`
	Lines        []cartLine `json:"lines"`
}

func (h *CartHandler) Get(c *gin.Context) {
	customer, err := strconv.ParseInt(c.Param("customer"), 10, 64)
	if err != nil || customer == 0 {
		writeError(c, http.StatusBadRequest, "invalid customer id")
		return
	}
	groups, info := h.cart.Snapshot(types.ChatID(customer))
	out := make([]cartGroup, 0, len(groups))
	for vendor, lines := range groups {
		g := cartGroup{VendorNodeID: int64(vendor), Lines: make([]cartLine, 0, len(lines))}
		for _, l := range lines {
			g.Lines = append(g.Lines, cartLine{
				NodeID:   int64(l.Item.Node),
				Title:    l.Item.Title,
				Quantity: l.Quantity,
				Cost:     l.Cost().String(),
			})
		}
		out = append(out, g)
	}
	c.JSON(http.StatusOK, gin.H{
		"orders_num": info.OrdersNum,
		"items_num":  info.ItemsNum,
		"total_cost": info.TotalCost.String(),
		"groups":     out,
	})
}
