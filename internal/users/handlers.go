package users

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kshyun28/ddd-forum/internal/api"
)

// UserHandlers provides HTTP handlers for user directory operations
type UserHandlers struct {
	userService UserService
	logger      *zap.Logger
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(userService UserService, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes
func (h *UserHandlers) RegisterRoutes(router gin.IRouter) {
	users := router.Group("/users")
	{
		users.POST("/new", h.CreateUser)
		users.POST("/edit/:userId", h.EditUser)
		users.GET("", h.GetUserByEmail)
	}
}

// StatusFor maps an error code to its HTTP status
func StatusFor(code ErrorCode) int {
	switch code {
	case CodeUsernameAlreadyTaken, CodeEmailAlreadyInUse:
		return http.StatusConflict
	case CodeValidationError:
		return http.StatusBadRequest
	case CodeUserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *UserHandlers) CreateUser(c *gin.Context) {
	user, err := h.userService.CreateUser(c.Request.Context(), h.bindInput(c))
	if err != nil {
		h.fail(c, "create user", err)
		return
	}

	api.Success(c, http.StatusCreated, user)
}

func (h *UserHandlers) EditUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		h.fail(c, "edit user", NewValidationError("userId", "must be an integer"))
		return
	}

	user, err := h.userService.EditUser(c.Request.Context(), userID, h.bindInput(c))
	if err != nil {
		h.fail(c, "edit user", err)
		return
	}

	api.Success(c, http.StatusOK, user)
}

func (h *UserHandlers) GetUserByEmail(c *gin.Context) {
	user, err := h.userService.GetUserByEmail(c.Request.Context(), rawQueryValue(c.Request.URL.RawQuery, "email"))
	if err != nil {
		h.fail(c, "get user by email", err)
		return
	}

	api.Success(c, http.StatusOK, user)
}

// bindInput returns nil when the body is not a well-formed user object or the
// email or username is missing; the service reports that as a ValidationError
// at the point its checks reach it.
func (h *UserHandlers) bindInput(c *gin.Context) *UserInput {
	var req UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Rejected request body",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		return nil
	}
	return &req
}

func (h *UserHandlers) fail(c *gin.Context, operation string, err error) {
	code := CodeOf(err)
	if code == CodeServerError {
		h.logger.Error("Failed to "+operation, zap.Error(err))
	} else {
		h.logger.Debug("Rejected "+operation,
			zap.String("code", string(code)),
			zap.Error(err))
	}
	api.Failure(c, StatusFor(code), string(code))
}

// rawQueryValue returns the still-encoded value of key. url.Values would turn
// '+' into a space, which breaks alias addresses sent without encoding.
func rawQueryValue(rawQuery, key string) string {
	for _, pair := range strings.Split(rawQuery, "&") {
		k, v, _ := strings.Cut(pair, "=")
		if name, err := url.QueryUnescape(k); err == nil && name == key {
			return v
		}
	}
	return ""
}
