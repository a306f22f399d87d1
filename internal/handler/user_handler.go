package handler

import (
	"net/http"
	"time"

	"github.com/budgettracker/tracker-backend/internal/domain"
	"github.com/budgettracker/tracker-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// UserNotFoundMessage is returned by the lookup endpoint when no user matches
const UserNotFoundMessage = "User not found. Proceed with creation."

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest represents the create user request body
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CreateUser godoc
// @Summary Register a user
// @Description Create a user unless one with the same name and email already exists
// @Tags users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "User creation request"
// @Success 201 {object} UserResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.userService.CreateNewUser(&domain.User{Name: req.Name, Email: req.Email})
	if err != nil {
		return NewServiceError(c, err, "Failed to create user")
	}

	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// FindUser godoc
// @Summary Find a user by name and email
// @Description Returns the user, or a message telling the client to create one
// @Tags users
// @Produce json
// @Param name query string true "User name"
// @Param email query string true "User email"
// @Success 200 {object} UserResponse
// @Failure 500 {object} ProblemDetails
// @Router /users/find [get]
func (h *UserHandler) FindUser(c echo.Context) error {
	user, found, err := h.userService.FindUserByNameAndEmail(c.QueryParam("name"), c.QueryParam("email"))
	if err != nil {
		return NewServiceError(c, err, "Failed to find user")
	}
	if !found {
		return c.JSON(http.StatusOK, MessageResponse{Message: UserNotFoundMessage})
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}
