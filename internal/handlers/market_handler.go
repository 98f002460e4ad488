package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"price-prediction/internal/auth"
	"price-prediction/internal/market"
	"price-prediction/internal/models"

	"github.com/gin-gonic/gin"
)

type MarketHandler struct {
	engine *market.Engine
	denom  string
}

func NewMarketHandler(engine *market.Engine, denom string) *MarketHandler {
	return &MarketHandler{
		engine: engine,
		denom:  denom,
	}
}

// statusForError maps a market error kind to an HTTP status code.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, models.ErrSystemHaulted):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrInvalidRound),
		errors.Is(err, models.ErrWrongDenomination),
		errors.Is(err, models.ErrBelowMinimumBet):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrDuplicateBet),
		errors.Is(err, models.ErrAlreadyClaimed):
		return http.StatusConflict
	case errors.Is(err, models.ErrNothingToClaim):
		return http.StatusUnprocessableEntity
	case errors.Is(err, market.ErrRoundNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// BetBull places a bull wager on the current bidding round
// POST /api/market/bet/bull
func (h *MarketHandler) BetBull(c *gin.Context) {
	h.placeBet(c, h.engine.PlaceBull)
}

// BetBear places a bear wager on the current bidding round
// POST /api/market/bet/bear
func (h *MarketHandler) BetBear(c *gin.Context) {
	h.placeBet(c, h.engine.PlaceBear)
}

func (h *MarketHandler) placeBet(c *gin.Context, place func(ctx context.Context, sender string, roundID uint64, funds models.Coin) error) {
	sender, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.BetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	funds := models.Coin{Denom: h.denom, Amount: req.Amount}
	if err := place(c.Request.Context(), sender, req.RoundID, funds); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"round_id": req.RoundID, "amount": req.Amount})
}

// AdvanceRound closes the current round if due and opens the next
// POST /api/market/advance
func (h *MarketHandler) AdvanceRound(c *gin.Context) {
	if err := h.engine.AdvanceRound(c.Request.Context(), time.Now()); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	status, err := h.engine.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

// CollectWinnings claims payouts for finished rounds
// POST /api/market/collect
func (h *MarketHandler) CollectWinnings(c *gin.Context) {
	sender, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CollectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	total, err := h.engine.CollectWinnings(c.Request.Context(), sender, req.Rounds)
	if err != nil {
		// Earlier rounds in the batch may already have paid out.
		c.JSON(statusForError(err), gin.H{"error": err.Error(), "collected": total})
		return
	}

	c.JSON(http.StatusOK, gin.H{"collected": total})
}

// FundStakers flushes accumulated fees (plus any attached amount) to the rewards sink
// POST /api/market/fund-stakers
func (h *MarketHandler) FundStakers(c *gin.Context) {
	sender, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.FundStakersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attached := models.Coin{Denom: h.denom, Amount: req.Amount}
	total, err := h.engine.FlushToRewardsSink(c.Request.Context(), sender, attached)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"funded": total})
}

// GetConfig returns the current market parameters
// GET /api/market/config
func (h *MarketHandler) GetConfig(c *gin.Context) {
	cfg, err := h.engine.Config(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// GetStatus returns the current bidding and live rounds
// GET /api/market/status
func (h *MarketHandler) GetStatus(c *gin.Context) {
	status, err := h.engine.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetPosition returns an account's stakes in the live and bidding rounds
// GET /api/market/position?address=...
func (h *MarketHandler) GetPosition(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		if authed, exists := auth.GetWalletAddress(c); exists {
			address = authed
		}
	}
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	position, err := h.engine.Position(c.Request.Context(), address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, position)
}

// GetFinishedRound returns the immutable record of a settled round
// GET /api/market/rounds/:id
func (h *MarketHandler) GetFinishedRound(c *gin.Context) {
	roundID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid round id"})
		return
	}

	round, err := h.engine.FinishedRound(c.Request.Context(), roundID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, round)
}
