package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/canberkoguz/socialgraph/internal/dto"
	"github.com/canberkoguz/socialgraph/internal/middleware"
	"github.com/canberkoguz/socialgraph/internal/pagination"
	"github.com/canberkoguz/socialgraph/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.users.CreateUser(c.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrReferralCycle) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user uuid",
		})
	}

	user, err := h.users.GetByUUID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to retrieve user",
		})
	}

	return c.JSON(user)
}

func (h *UserHandler) GetUserByEmail(c *fiber.Ctx) error {
	user, err := h.users.GetByEmail(c.Context(), c.Params("email"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to retrieve user",
		})
	}

	return c.JSON(user)
}

func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user uuid",
		})
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.users.UpdateUser(c.Context(), id, &req)
	return h.respondMutation(c, user, err)
}

func (h *UserHandler) PatchUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user uuid",
		})
	}

	var req dto.PatchUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.users.PatchUser(c.Context(), id, &req)
	return h.respondMutation(c, user, err)
}

func (h *UserHandler) respondMutation(c *fiber.Ctx, user interface{}, err error) error {
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "Email already in use",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update user",
		})
	}
	return c.JSON(user)
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user uuid",
		})
	}

	caller, err := middleware.AuthenticatedUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	if caller != id {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "You can only delete your own account",
		})
	}

	if err := h.users.DeleteUser(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete user",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	args, err := parsePageArgs(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	filter, err := parseListFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	conn, err := h.users.ListUsers(c.Context(), filter, args)
	if err != nil {
		return respondConnectionError(c, err)
	}
	return c.JSON(conn)
}

// parsePageArgs reads relay-style paging arguments off the query
// string. Validation of the combination happens in the paginator.
func parsePageArgs(c *fiber.Ctx) (pagination.Args, error) {
	var args pagination.Args
	if raw := c.Query("first"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return args, fmt.Errorf("%w: first must be an integer", pagination.ErrInvalidPaginationArgs)
		}
		args.First = &n
	}
	if raw := c.Query("last"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return args, fmt.Errorf("%w: last must be an integer", pagination.ErrInvalidPaginationArgs)
		}
		args.Last = &n
	}
	if raw := c.Query("after"); raw != "" {
		args.After = &raw
	}
	if raw := c.Query("before"); raw != "" {
		args.Before = &raw
	}
	return args, nil
}

func parseListFilter(c *fiber.Ctx) (services.ListFilter, error) {
	var f services.ListFilter
	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return f, errors.New("is_active must be a boolean")
		}
		f.IsActive = &active
	}
	if raw := c.Query("name_contains"); raw != "" {
		f.NameContains = &raw
	}
	if raw := c.Query("email_contains"); raw != "" {
		f.EmailContains = &raw
	}
	if raw := c.Query("q"); raw != "" {
		f.Search = &raw
	}
	if raw := c.Query("created_after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, errors.New("created_after must be an RFC3339 timestamp")
		}
		f.CreatedAfter = &t
	}
	if raw := c.Query("created_before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, errors.New("created_before must be an RFC3339 timestamp")
		}
		f.CreatedBefore = &t
	}
	return f, nil
}

// respondConnectionError distinguishes client-input paging errors from
// backend failures for every connection endpoint.
func respondConnectionError(c *fiber.Ctx, err error) error {
	if errors.Is(err, pagination.ErrInvalidCursor) || errors.Is(err, pagination.ErrInvalidPaginationArgs) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	if errors.Is(err, services.ErrUserNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "User not found",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
