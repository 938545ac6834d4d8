package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OmPrakash-X/Konnekt-sub001/apperr"
)

// SignupInput is the request body for account creation.
type SignupInput struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	Role         string `json:"role,omitempty"`
	ReferralCode string `json:"referral_code,omitempty"`
}

// VerifyEmailInput carries the signup OTP.
type VerifyEmailInput struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

// SigninInput is the request body for login.
type SigninInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordInput requests a reset OTP.
type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyResetOTPInput carries the reset OTP.
type VerifyResetOTPInput struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

// ResetPasswordInput sets the new password after OTP verification.
type ResetPasswordInput struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// Signup creates an unverified account and emails a verification code.
func Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}
	user, err := deps.Auth.Signup(c.Request.Context(), input.Name, input.Email, input.Password, input.Role, input.ReferralCode)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "account created, check your email for the verification code", gin.H{"id": user.ID.Hex()})
}

// VerifyEmail activates the account with the signup OTP.
func VerifyEmail(c *gin.Context) {
	var input VerifyEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}
	user, err := deps.Auth.VerifyEmail(c.Request.Context(), input.Email, input.OTP)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "email verified", gin.H{"id": user.ID.Hex(), "wallet_balance": user.WalletBalance})
}

// Signin authenticates and sets the session cookie.
func Signin(c *gin.Context) {
	var input SigninInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}
	user, token, err := deps.Auth.SignIn(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.SetCookie("token", token, int(deps.TokenTTL.Seconds()), "/", "", false, true)
	respond(c, http.StatusOK, "signed in", gin.H{
		"token": token,
		"user": gin.H{
			"id":             user.ID.Hex(),
			"name":           user.Name,
			"email":          user.Email,
			"role":           user.Role,
			"wallet_balance": user.WalletBalance,
		},
	})
}

// Signout clears the session cookie.
func Signout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	respond(c, http.StatusOK, "signed out", nil)
}

// ForgotPassword issues a reset OTP. Responds generically whether or not
// the account exists.
func ForgotPassword(c *gin.Context) {
	var input ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}
	err := deps.Auth.RequestPasswordReset(c.Request.Context(), input.Email)
	if err != nil {
		var e *apperr.Error
		if errors.As(err, &e) && e.Status == http.StatusNotFound {
			// Don't reveal whether the email exists.
			respond(c, http.StatusOK, "if that email exists, a code has been sent", nil)
			return
		}
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "if that email exists, a code has been sent", nil)
}

// VerifyResetOTP checks the reset OTP and opens the reset gate.
func VerifyResetOTP(c *gin.Context) {
	var input VerifyResetOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}
	if err := deps.Auth.VerifyResetOTP(c.Request.Context(), input.Email, input.OTP); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "code verified", nil)
}

// ResetPassword sets the new password; requires a verified reset OTP.
func ResetPassword(c *gin.Context) {
	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}
	if err := deps.Auth.ResetPassword(c.Request.Context(), input.Email, input.NewPassword); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "password reset successful", nil)
}
