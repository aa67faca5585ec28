package delivery

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mahapatra12/vitam-cms/domain"
	"github.com/mahapatra12/vitam-cms/dto"
	"github.com/mahapatra12/vitam-cms/middleware"
	"github.com/mahapatra12/vitam-cms/utils"
)

type AuthHandler struct {
	authUC domain.AuthUseCase
}

func NewAuthHandler(r *gin.Engine, authUC domain.AuthUseCase, users domain.UserRepository, limiter *middleware.RateLimiter) {
	handler := &AuthHandler{authUC: authUC}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	public := r.Group("/auth")
	{
		public.POST("/login", limiter.Limit(middleware.LoginLimit), handler.Login)
		public.POST("/mfa/verify", limiter.Limit(middleware.VerifyLimit), handler.VerifyMFA)
	}

	protected := r.Group("/auth")
	protected.Use(middleware.Authenticate(authUC.GetTokenManager(), users))
	{
		protected.GET("/me", handler.Me)
		protected.GET("/authenticator/setup", handler.AuthenticatorSetup)
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is step one of the flow: password check and OTP fan-out. The
// response never says whether the email or the password was wrong.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.PrintLogInfo(nil, 400, "Login", &err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": utils.TranslateValidationError(err),
		})
		return
	}

	loweredEmail := strings.ToLower(req.Email)
	ctx := domain.WithRequestMeta(c.Request.Context(), domain.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})

	challenge, err := h.authUC.Login(ctx, loweredEmail, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			utils.PrintLogInfo(&loweredEmail, 400, "Login", &err)
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid credentials",
			})
			return
		}
		utils.PrintLogInfo(&loweredEmail, 500, "Login", &err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": utils.TranslateDBError(err),
		})
		return
	}

	utils.PrintLogInfo(&loweredEmail, 201, "Login", nil)
	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"requireMfa":   challenge.RequireMfa,
		"pendingToken": challenge.PendingToken,
		"message":      "MFA codes sent to email and phone",
	})
}

// VerifyMFARequest accepts both wire shapes: the current one
// ({pendingToken, code, method}) and the legacy one the old dashboard sends
// ({tempToken, smsCode, emailCode, authCode}).
type VerifyMFARequest struct {
	PendingToken string `json:"pendingToken"`
	TempToken    string `json:"tempToken"`
	Method       string `json:"method" binding:"omitempty,oneof=sms email authenticator"`
	Code         string `json:"code" binding:"omitempty,otpcode"`
	SmsCode      string `json:"smsCode"`
	EmailCode    string `json:"emailCode"`
	AuthCode     string `json:"authCode"`
}

// factors flattens either body shape into the ordered candidate list the
// state machine consumes. Channels are always evaluated sms, email,
// authenticator; within a channel the declared code wins over the legacy
// field. A mixed body therefore resolves the same way a legacy one does.
func (r *VerifyMFARequest) factors() []domain.SecondFactor {
	declared := domain.Channel(r.Method)
	legacy := map[domain.Channel]string{
		domain.ChannelSMS:           r.SmsCode,
		domain.ChannelEmail:         r.EmailCode,
		domain.ChannelAuthenticator: r.AuthCode,
	}

	var out []domain.SecondFactor
	for _, ch := range []domain.Channel{domain.ChannelSMS, domain.ChannelEmail, domain.ChannelAuthenticator} {
		code := legacy[ch]
		if r.Code != "" && ch == declared {
			code = r.Code
		}
		if code != "" {
			out = append(out, domain.SecondFactor{Channel: ch, Code: code})
		}
	}
	return out
}

func (r *VerifyMFARequest) token() string {
	if r.PendingToken != "" {
		return r.PendingToken
	}
	return r.TempToken
}

// VerifyMFA is step two: one valid code on any channel promotes the pending
// token to a session.
func (h *AuthHandler) VerifyMFA(c *gin.Context) {
	var req VerifyMFARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.PrintLogInfo(nil, 400, "VerifyMFA", &err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": utils.TranslateValidationError(err),
		})
		return
	}

	ctx := domain.WithRequestMeta(c.Request.Context(), domain.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})

	user, err := h.authUC.VerifySecondFactor(ctx, req.token(), req.factors())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidVerificationCode):
			utils.PrintLogInfo(nil, 400, "VerifyMFA", &err)
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid verification code",
			})
		case errors.Is(err, domain.ErrPendingTokenInvalid):
			utils.PrintLogInfo(nil, 401, "VerifyMFA", &err)
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired session",
			})
		default:
			utils.PrintLogInfo(nil, 500, "VerifyMFA", &err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": utils.TranslateDBError(err),
			})
		}
		return
	}

	utils.PrintLogInfo(&user.Email, 200, "VerifyMFA", nil)
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) AuthenticatorSetup(c *gin.Context) {
	userUUID := c.GetString("userUUID")

	setup, err := h.authUC.AuthenticatorSetup(c.Request.Context(), userUUID)
	if err != nil {
		if errors.Is(err, domain.ErrAuthenticatorNotProvisioned) {
			utils.PrintLogInfo(&userUUID, 404, "AuthenticatorSetup", &err)
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Authenticator not provisioned",
			})
			return
		}
		utils.PrintLogInfo(&userUUID, 500, "AuthenticatorSetup", &err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": utils.TranslateDBError(err),
		})
		return
	}

	utils.PrintLogInfo(&userUUID, 200, "AuthenticatorSetup", nil)
	c.JSON(http.StatusOK, setup)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userUUID := c.GetString("userUUID")

	user, err := h.authUC.Me(c.Request.Context(), userUUID)
	if err != nil {
		utils.PrintLogInfo(&userUUID, 500, "Me", &err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": utils.TranslateDBError(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dto.NewPublicUser(user),
	})
}
