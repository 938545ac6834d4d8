package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OmPrakash-X/Konnekt-sub001/middleware"
	"github.com/OmPrakash-X/Konnekt-sub001/store"
)

// RegisterRoutes wires every endpoint under /api. The role policy lives
// here, in one place, using the role sets declared in middleware.
func RegisterRoutes(router *gin.Engine, jwtSecret []byte, st store.Store) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Konnekt API", "docs": "/api"})
	})

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", Signup)
		auth.POST("/verify-email", VerifyEmail)
		auth.POST("/signin", Signin)
		auth.POST("/signout", Signout)
		auth.POST("/password/forgot", ForgotPassword)
		auth.POST("/password/verify-otp", VerifyResetOTP)
		auth.POST("/password/reset", ResetPassword)
	}

	guard := middleware.Auth(jwtSecret, st)

	users := api.Group("/users", guard)
	{
		users.GET("/me", Me)
		users.PUT("/me", UpdateMe)
	}

	skills := api.Group("/skills")
	{
		skills.GET("", ListSkills)
		skills.GET("/:id", GetSkill)
		skills.GET("/:id/reviews", SkillReviews)
		skills.POST("", guard, middleware.RequireRole(middleware.RolesExpert...), CreateSkill)
		skills.PUT("/:id", guard, middleware.RequireRole(middleware.RolesExpert...), UpdateSkill)
		skills.DELETE("/:id", guard, middleware.RequireRole(middleware.RolesExpert...), DeleteSkill)
		skills.POST("/:id/endorse", guard, middleware.RequireRole(middleware.RolesAny...), EndorseSkill)
	}

	sessions := api.Group("/sessions", guard, middleware.RequireRole(middleware.RolesAny...))
	{
		sessions.POST("", BookSession)
		sessions.GET("/me", MySessions)
		sessions.GET("/:id", GetSession)
		sessions.POST("/:id/confirm", ConfirmSession)
		sessions.POST("/:id/complete", CompleteSession)
		sessions.POST("/:id/cancel", CancelSession)
	}

	api.GET("/transactions/me", guard, MyTransactions)

	reviews := api.Group("/reviews", guard)
	{
		reviews.POST("", CreateReview)
	}

	admin := api.Group("/admin", guard, middleware.RequireRole(middleware.RolesAdmin...))
	{
		admin.POST("/credits", AdjustCredits)
		admin.POST("/users/:id/status", SetAccountStatus)
	}
}
