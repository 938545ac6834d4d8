package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/OmPrakash-X/Konnekt-sub001/apperr"
	"github.com/OmPrakash-X/Konnekt-sub001/models"
	"github.com/OmPrakash-X/Konnekt-sub001/store"
)

// AdjustCreditsInput grants credits to a wallet as an admin adjustment.
type AdjustCreditsInput struct {
	UserID string `json:"user_id" binding:"required"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Note   string `json:"note,omitempty"`
}

// SetAccountStatusInput suspends or reactivates an account.
type SetAccountStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// AdjustCredits writes an admin_adjustment grant to the ledger.
func AdjustCredits(c *gin.Context) {
	var input AdjustCreditsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}
	userID, err := primitive.ObjectIDFromHex(input.UserID)
	if err != nil {
		fail(c, apperr.Validation("invalid user id"))
		return
	}
	tx, err := deps.Ledger.Grant(c.Request.Context(), userID, input.Amount, models.TxAdminAdjustment, input.Note)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "credits granted", tx)
}

// SetAccountStatus flips an account between active and suspended.
func SetAccountStatus(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, apperr.Validation("invalid user id"))
		return
	}
	var input SetAccountStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}
	if input.Status != models.AccountActive && input.Status != models.AccountSuspended {
		fail(c, apperr.Validation("status must be active or suspended"))
		return
	}
	if err := deps.Store.Users().SetAccountStatus(c.Request.Context(), userID, input.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, apperr.NotFound("user not found"))
			return
		}
		fail(c, apperr.Internal(err))
		return
	}
	respond(c, http.StatusOK, "account status updated", nil)
}
