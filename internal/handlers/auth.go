package handlers

import (
	"net/http"

	"price-prediction/internal/auth"
	"price-prediction/internal/bank"
	"price-prediction/internal/models"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	bank           *bank.MemoryBank
	denom          string
	initialBalance int64
}

func NewAuthHandler(b *bank.MemoryBank, denom string, initialBalance int64) *AuthHandler {
	return &AuthHandler{
		bank:           b,
		denom:          denom,
		initialBalance: initialBalance,
	}
}

// WalletLogin opens a session for a wallet address and returns a JWT.
// First-time wallets receive the configured dev faucet balance.
// POST /auth/wallet
func (h *AuthHandler) WalletLogin(c *gin.Context) {
	var req models.WalletLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := auth.ValidateWalletAddress(req.WalletAddress); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	balance, err := h.bank.Balance(c.Request.Context(), req.WalletAddress, h.denom)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if balance == 0 && h.initialBalance > 0 {
		h.bank.Mint(req.WalletAddress, models.Coin{Denom: h.denom, Amount: h.initialBalance})
		balance = h.initialBalance
	}

	token, err := auth.GenerateToken(req.WalletAddress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":          token,
		"wallet_address": req.WalletAddress,
		"balance":        balance,
	})
}

// GetBalance returns the caller's bank balance in the settle denomination.
// GET /api/wallet/balance
func (h *AuthHandler) GetBalance(c *gin.Context) {
	address, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	balance, err := h.bank.Balance(c.Request.Context(), address, h.denom)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet_address": address, "balance": balance, "denom": h.denom})
}
