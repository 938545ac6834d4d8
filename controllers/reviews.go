package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/OmPrakash-X/Konnekt-sub001/apperr"
	"github.com/OmPrakash-X/Konnekt-sub001/middleware"
	"github.com/OmPrakash-X/Konnekt-sub001/models"
	"github.com/OmPrakash-X/Konnekt-sub001/store"
)

// CreateReviewInput is the request body for reviewing a completed session.
type CreateReviewInput struct {
	SessionID string `json:"session_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment,omitempty"`
}

// CreateReview lets the learner of a completed session leave one review.
func CreateReview(c *gin.Context) {
	var input CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}
	sessID, err := primitive.ObjectIDFromHex(input.SessionID)
	if err != nil {
		fail(c, apperr.Validation("invalid session id"))
		return
	}

	sess, err := deps.Store.Sessions().GetByID(c.Request.Context(), sessID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, apperr.NotFound("session not found"))
			return
		}
		fail(c, apperr.Internal(err))
		return
	}
	user := middleware.CurrentUser(c)
	if sess.Learner != user.ID {
		fail(c, apperr.Forbidden("only the learner can review a session"))
		return
	}
	if sess.Status != models.SessionCompleted {
		fail(c, apperr.Validation("only completed sessions can be reviewed"))
		return
	}

	review := &models.Review{
		Session:   sess.ID,
		Skill:     sess.Skill,
		Reviewer:  user.ID,
		Provider:  sess.Provider,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := deps.Store.Reviews().Create(c.Request.Context(), review); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			fail(c, apperr.Conflict("session already reviewed"))
			return
		}
		fail(c, apperr.Internal(err))
		return
	}
	respond(c, http.StatusCreated, "review submitted", review)
}

// SkillReviews lists the reviews of a skill, newest first.
func SkillReviews(c *gin.Context) {
	id, ok := skillID(c)
	if !ok {
		return
	}
	reviews, err := deps.Store.Reviews().ListBySkill(c.Request.Context(), id)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	respond(c, http.StatusOK, "reviews", reviews)
}
