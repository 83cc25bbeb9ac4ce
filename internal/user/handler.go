package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mserebryaakov/aggregator-storefront/pkg/apperror"
	"github.com/mserebryaakov/aggregator-storefront/pkg/auth"
	"github.com/mserebryaakov/aggregator-storefront/pkg/httpserver"
	"github.com/sirupsen/logrus"
)

type userHandler struct {
	log         *logrus.Entry
	userService UserService
}

func NewHandler(userService UserService, log *logrus.Entry) *userHandler {
	return &userHandler{
		log:         log,
		userService: userService,
	}
}

func (h *userHandler) Register(public, user, admin *gin.RouterGroup) {
	public.POST("/signup", h.signup)
	public.POST("/login", h.login)
	public.POST("/admin/login", h.adminLogin)

	user.GET("/user/:userId", h.getUser)

	admin.GET("/profile", h.adminProfile)
	admin.POST("/change-password", h.changePassword)
	admin.GET("/users", h.listUsers)
	admin.GET("/users/:userId", h.getUser)
	admin.POST("/users", h.signup)
	admin.DELETE("/users/:userId", h.deleteUser)
}

func (h *userHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, errAdminNotFound):
		err = apperror.NotFound(err.Error())
	case errors.Is(err, errBadCredentials), errors.Is(err, errWrongPassword):
		err = apperror.Unauthorized(err.Error())
	case errors.Is(err, errUserHasOrders):
		err = apperror.Conflict(err.Error())
	case errors.Is(err, errMissingPersonal), errors.Is(err, errMissingAddress),
		errors.Is(err, errMissingCredential), errors.Is(err, errEmailTaken),
		errors.Is(err, errPhoneTaken), errors.Is(err, errWeakPassword):
		err = apperror.Validation(err.Error())
	}
	apperror.Respond(c, h.log, err)
}

type signupRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	StreetNo  int    `json:"street_no"`
	HouseNo   int    `json:"house_no"`
	BlockName string `json:"block_name"`
	Society   string `json:"society"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

func (h *userHandler) signup(c *gin.Context) {
	var req signupRequest
	if err := httpserver.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	u, err := h.userService.Signup(c.Request.Context(), Registration{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		StreetNo:  req.StreetNo,
		HouseNo:   req.HouseNo,
		BlockName: req.BlockName,
		Society:   req.Society,
		City:      req.City,
		Country:   req.Country,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "userId": u.ID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *userHandler) login(c *gin.Context) {
	var req loginRequest
	if err := httpserver.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	session, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Login failed due to server error. Please try again later."))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"userId":   session.UserID,
		"username": session.Username,
		"token":    session.Token,
	})
}

func (h *userHandler) adminLogin(c *gin.Context) {
	var req loginRequest
	if err := httpserver.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	session, err := h.userService.AdminLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"adminId": session.UserID,
		"name":    session.Username,
		"token":   session.Token,
	})
}

func (h *userHandler) getUser(c *gin.Context) {
	userID, err := httpserver.ParamID(c, "userId")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := auth.EnsureSelf(c, userID); err != nil {
		h.fail(c, err)
		return
	}

	u, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *userHandler) listUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, apperror.Wrap(err, "Failed to fetch users"))
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *userHandler) deleteUser(c *gin.Context) {
	userID, err := httpserver.ParamID(c, "userId")
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), userID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted successfully"})
}

func (h *userHandler) adminProfile(c *gin.Context) {
	adminID, _, _ := auth.Current(c)
	a, err := h.userService.AdminProfile(c.Request.Context(), adminID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func (h *userHandler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := httpserver.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	adminID, _, _ := auth.Current(c)
	if err := h.userService.ChangeAdminPassword(c.Request.Context(), adminID, req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed successfully"})
}
