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

// CreateSkillInput is the request body for listing a skill.
type CreateSkillInput struct {
	Title          string `json:"title" binding:"required"`
	Description    string `json:"description,omitempty"`
	Category       string `json:"category,omitempty"`
	CreditsPerHour int64  `json:"credits_per_hour" binding:"required,gt=0"`
}

// UpdateSkillInput allows partial updates.
type UpdateSkillInput struct {
	Title          *string `json:"title,omitempty"`
	Description    *string `json:"description,omitempty"`
	Category       *string `json:"category,omitempty"`
	CreditsPerHour *int64  `json:"credits_per_hour,omitempty"`
}

// CreateSkill lists a new skill owned by the caller.
func CreateSkill(c *gin.Context) {
	var input CreateSkillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}
	user := middleware.CurrentUser(c)
	skill := &models.Skill{
		UserID:         user.ID,
		Title:          input.Title,
		Description:    input.Description,
		Category:       input.Category,
		CreditsPerHour: input.CreditsPerHour,
		CreatedAt:      time.Now().UTC(),
	}
	if err := deps.Store.Skills().Create(c.Request.Context(), skill); err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	respond(c, http.StatusCreated, "skill listed", skill)
}

// ListSkills returns all skills, optionally filtered by category.
func ListSkills(c *gin.Context) {
	skills, err := deps.Store.Skills().List(c.Request.Context(), c.Query("category"))
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	respond(c, http.StatusOK, "skills", skills)
}

// GetSkill returns one skill by id.
func GetSkill(c *gin.Context) {
	id, ok := skillID(c)
	if !ok {
		return
	}
	skill, err := deps.Store.Skills().GetByID(c.Request.Context(), id)
	if err != nil {
		failSkillErr(c, err)
		return
	}
	respond(c, http.StatusOK, "skill", skill)
}

// UpdateSkill updates a skill; only the owner can update.
func UpdateSkill(c *gin.Context) {
	id, ok := skillID(c)
	if !ok {
		return
	}
	skill, err := deps.Store.Skills().GetByID(c.Request.Context(), id)
	if err != nil {
		failSkillErr(c, err)
		return
	}
	user := middleware.CurrentUser(c)
	if skill.UserID != user.ID && user.Role != models.RoleAdmin {
		fail(c, apperr.Forbidden("only the owner can modify this skill"))
		return
	}

	var input UpdateSkillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}
	if input.CreditsPerHour != nil && *input.CreditsPerHour <= 0 {
		fail(c, apperr.Validation("credits_per_hour must be positive"))
		return
	}
	upd := store.SkillUpdate{
		Title:          input.Title,
		Description:    input.Description,
		Category:       input.Category,
		CreditsPerHour: input.CreditsPerHour,
	}
	if err := deps.Store.Skills().Update(c.Request.Context(), id, upd); err != nil {
		failSkillErr(c, err)
		return
	}
	respond(c, http.StatusOK, "skill updated", nil)
}

// DeleteSkill removes a skill; only the owner can delete.
func DeleteSkill(c *gin.Context) {
	id, ok := skillID(c)
	if !ok {
		return
	}
	skill, err := deps.Store.Skills().GetByID(c.Request.Context(), id)
	if err != nil {
		failSkillErr(c, err)
		return
	}
	user := middleware.CurrentUser(c)
	if skill.UserID != user.ID && user.Role != models.RoleAdmin {
		fail(c, apperr.Forbidden("only the owner can delete this skill"))
		return
	}
	if err := deps.Store.Skills().Delete(c.Request.Context(), id); err != nil {
		failSkillErr(c, err)
		return
	}
	respond(c, http.StatusOK, "skill deleted", nil)
}

// EndorseSkill adds the caller to the skill's endorsement set. Repeat
// endorsements are idempotent.
func EndorseSkill(c *gin.Context) {
	id, ok := skillID(c)
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	if err := deps.Store.Skills().Endorse(c.Request.Context(), id, user.ID); err != nil {
		failSkillErr(c, err)
		return
	}
	respond(c, http.StatusOK, "skill endorsed", nil)
}

func skillID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, apperr.Validation("invalid skill id"))
		return primitive.NilObjectID, false
	}
	return id, true
}

func failSkillErr(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		fail(c, apperr.NotFound("skill not found"))
		return
	}
	fail(c, apperr.Internal(err))
}
