package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/OmPrakash-X/Konnekt-sub001/apperr"
	"github.com/OmPrakash-X/Konnekt-sub001/middleware"
)

// BookSessionInput is the request body for booking a session.
type BookSessionInput struct {
	SkillID       string    `json:"skill_id" binding:"required"`
	ScheduledDate time.Time `json:"scheduled_date" binding:"required"`
	Duration      int       `json:"duration" binding:"required,gt=0"` // minutes
}

// CancelSessionInput carries the cancellation reason.
type CancelSessionInput struct {
	Reason string `json:"reason" binding:"required"`
}

// BookSession books a session on a skill; the caller is the learner.
func BookSession(c *gin.Context) {
	var input BookSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}
	skillID, err := primitive.ObjectIDFromHex(input.SkillID)
	if err != nil {
		fail(c, apperr.Validation("invalid skill id"))
		return
	}

	user := middleware.CurrentUser(c)
	sess, err := deps.Sessions.Book(c.Request.Context(), user, skillID, input.ScheduledDate, input.Duration)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "session booked", sess)
}

// ConfirmSession moves a pending session to confirmed (provider only).
func ConfirmSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	sess, err := deps.Sessions.Confirm(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "session confirmed", sess)
}

// CompleteSession settles a confirmed session and transfers the credits.
func CompleteSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	sess, err := deps.Sessions.Complete(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "session completed", sess)
}

// CancelSession cancels a pending or confirmed session.
func CancelSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var input CancelSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}
	sess, err := deps.Sessions.Cancel(c.Request.Context(), middleware.CurrentUser(c), id, input.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "session cancelled", sess)
}

// GetSession returns one session, participants only.
func GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	sess, err := deps.Sessions.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "session", sess)
}

// MySessions lists the caller's sessions, newest first.
func MySessions(c *gin.Context) {
	user := middleware.CurrentUser(c)
	sessions, err := deps.Sessions.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "sessions", sessions)
}

func sessionID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, apperr.Validation("invalid session id"))
		return primitive.NilObjectID, false
	}
	return id, true
}
