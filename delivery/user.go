package delivery

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mahapatra12/vitam-cms/domain"
	"github.com/mahapatra12/vitam-cms/dto"
	"github.com/mahapatra12/vitam-cms/middleware"
	"github.com/mahapatra12/vitam-cms/service"
	"github.com/mahapatra12/vitam-cms/utils"
)

type UserHandler struct {
	userUC domain.UserUseCase
}

func NewUserHandler(r *gin.Engine, userUC domain.UserUseCase, tokens *utils.TokenManager, users domain.UserRepository) {
	handler := &UserHandler{userUC: userUC}

	group := r.Group("/users")
	group.Use(middleware.Authenticate(tokens, users))
	{
		group.POST("", middleware.AdminOnly(), handler.CreateUser)
		group.GET("", middleware.AdminOnly(), handler.GetUsers)
		group.PUT("/me", handler.UpdateProfile)
	}
}

type CreateUserRequest struct {
	Name       string  `json:"name" binding:"required,min=3,max=50"`
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required,min=8,max=64"`
	Role       string  `json:"role" binding:"omitempty,oneof=super_admin admin hod faculty student alumni"`
	Department string  `json:"department"`
	RollNumber *string `json:"roll_number"`
	Year       *int    `json:"year" binding:"omitempty,min=1,max=4"`
	Phone      string  `json:"phone" binding:"required,min=10,max=15"`
}

// CreateUser provisions a principal. The response is the only place the
// authenticator secret ever leaves the system; the admin hands it to the
// user out of band.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.PrintLogInfo(nil, 400, "CreateUser", &err)
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

	created, err := h.userUC.CreateUser(ctx, domain.NewUser{
		Name:       req.Name,
		Email:      strings.ToLower(req.Email),
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
		RollNumber: req.RollNumber,
		Year:       req.Year,
		Phone:      req.Phone,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			utils.PrintLogInfo(&req.Email, 409, "CreateUser", &err)
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "User already exists",
			})
			return
		}
		utils.PrintLogInfo(&req.Email, 500, "CreateUser", &err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": utils.TranslateDBError(err),
		})
		return
	}

	utils.PrintLogInfo(&req.Email, 201, "CreateUser", nil)
	c.JSON(http.StatusCreated, gin.H{
		"success":              true,
		"message":              "User created successfully",
		"user":                 dto.NewPublicUser(created.User),
		"authenticatorSecret":  created.AuthenticatorSecret,
		"authenticatorOtpauth": created.AuthenticatorURI,
	})
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userUC.GetAllUsers(c.Request.Context())
	if err != nil {
		utils.PrintLogInfo(nil, 500, "GetUsers", &err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": utils.TranslateDBError(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dto.NewPublicUsers(users),
	})
}

type UpdateProfileRequest struct {
	Phone   *string `json:"phone" binding:"omitempty,min=10,max=15"`
	Address *string `json:"address" binding:"omitempty,max=200"`
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userUUID := c.GetString("userUUID")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.PrintLogInfo(&userUUID, 400, "UpdateProfile", &err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": utils.TranslateValidationError(err),
		})
		return
	}

	user, err := h.userUC.UpdateProfile(c.Request.Context(), userUUID, req.Phone, req.Address)
	if err != nil {
		utils.PrintLogInfo(&userUUID, 500, "UpdateProfile", &err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": utils.TranslateDBError(err),
		})
		return
	}

	utils.PrintLogInfo(&userUUID, 200, "UpdateProfile", nil)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"user":    dto.NewPublicUser(user),
	})
}
