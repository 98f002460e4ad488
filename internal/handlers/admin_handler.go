package handlers

import (
	"net/http"

	"price-prediction/internal/auth"
	"price-prediction/internal/market"
	"price-prediction/internal/models"
	"price-prediction/internal/oracle"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// priceMicroUnits is the scale of oracle prices: 1.0 == 1_000_000.
var priceMicroUnits = decimal.New(1, 6)

type AdminHandler struct {
	engine    *market.Engine
	oracle    *oracle.KVOracle
	ownerAddr string
}

func NewAdminHandler(engine *market.Engine, o *oracle.KVOracle, ownerAddr string) *AdminHandler {
	return &AdminHandler{
		engine:    engine,
		oracle:    o,
		ownerAddr: ownerAddr,
	}
}

// OwnerMiddleware restricts a route group to the market owner. The engine
// re-checks ownership on every state-changing call; this just fails fast.
func (h *AdminHandler) OwnerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sender, exists := auth.GetWalletAddress(c)
		if !exists || sender != h.ownerAddr {
			c.JSON(http.StatusForbidden, gin.H{"error": "owner only"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// UpdateConfig overlays the supplied fields onto the market config
// POST /api/admin/config
func (h *AdminHandler) UpdateConfig(c *gin.Context) {
	sender, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var partial models.PartialConfig
	if err := c.ShouldBindJSON(&partial); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.engine.UpdateConfig(c.Request.Context(), sender, partial); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.engine.Config(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Hault pauses round advancement and betting
// POST /api/admin/hault
func (h *AdminHandler) Hault(c *gin.Context) {
	h.setHaulted(c, true)
}

// Resume lifts a hault
// POST /api/admin/resume
func (h *AdminHandler) Resume(c *gin.Context) {
	h.setHaulted(c, false)
}

func (h *AdminHandler) setHaulted(c *gin.Context, haulted bool) {
	sender, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var err error
	if haulted {
		err = h.engine.Hault(c.Request.Context(), sender)
	} else {
		err = h.engine.Resume(c.Request.Context(), sender)
	}
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"haulted": haulted})
}

// UpdatePrice publishes a new oracle price from a decimal string
// POST /api/admin/oracle/price
func (h *AdminHandler) UpdatePrice(c *gin.Context) {
	var req models.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price: " + err.Error()})
		return
	}
	if price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price cannot be negative"})
		return
	}

	// Exact conversion to integer micro-units; fractions below the scale
	// are rejected rather than silently rounded.
	scaled := price.Mul(priceMicroUnits)
	if !scaled.IsInteger() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price has more than 6 decimal places"})
		return
	}

	if err := h.oracle.Update(c.Request.Context(), scaled.IntPart()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"price": scaled.IntPart()})
}
