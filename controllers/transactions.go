package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OmPrakash-X/Konnekt-sub001/middleware"
)

// MyTransactions returns the caller's ledger history, newest first.
func MyTransactions(c *gin.Context) {
	user := middleware.CurrentUser(c)
	txs, err := deps.Ledger.History(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "transactions", gin.H{
		"wallet_balance": user.WalletBalance,
		"transactions":   txs,
	})
}
