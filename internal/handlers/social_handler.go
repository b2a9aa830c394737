package handlers

import (
	"errors"

	"github.com/canberkoguz/socialgraph/internal/dto"
	"github.com/canberkoguz/socialgraph/internal/models"
	"github.com/canberkoguz/socialgraph/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SocialHandler exposes the friendship and referral relations of a
// user as paginated connections plus the write endpoints around them.
type SocialHandler struct {
	users       *services.UserService
	friendships *services.FriendshipService
	relations   *services.RelationsService
}

func NewSocialHandler(users *services.UserService, friendships *services.FriendshipService, relations *services.RelationsService) *SocialHandler {
	return &SocialHandler{users: users, friendships: friendships, relations: relations}
}

func (h *SocialHandler) loadUser(c *fiber.Ctx, param string) (*models.User, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user uuid",
		})
	}
	user, err := h.users.GetByUUID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to retrieve user",
		})
	}
	return user, nil
}

func (h *SocialHandler) ListFriends(c *fiber.Ctx) error {
	user, err := h.loadUser(c, "uuid")
	if user == nil {
		return err
	}

	args, err := parsePageArgs(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	conn, err := h.relations.Friends(c.Context(), user, args)
	if err != nil {
		return respondConnectionError(c, err)
	}
	return c.JSON(conn)
}

func (h *SocialHandler) ListReferredUsers(c *fiber.Ctx) error {
	user, err := h.loadUser(c, "uuid")
	if user == nil {
		return err
	}

	args, err := parsePageArgs(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	conn, err := h.relations.ReferredUsers(c.Context(), user, args)
	if err != nil {
		return respondConnectionError(c, err)
	}
	return c.JSON(conn)
}

func (h *SocialHandler) GetReferrer(c *fiber.Ctx) error {
	user, err := h.loadUser(c, "uuid")
	if user == nil {
		return err
	}

	referrer, err := h.relations.Referrer(c.Context(), user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to resolve referrer",
		})
	}
	if referrer == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "User has no referrer",
		})
	}
	return c.JSON(referrer)
}

func (h *SocialHandler) ReferralStats(c *fiber.Ctx) error {
	user, err := h.loadUser(c, "uuid")
	if user == nil {
		return err
	}

	total, err := h.relations.ReferralStats(c.Context(), user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute referral stats",
		})
	}
	return c.JSON(dto.ReferralStatsResponse{
		TotalReferrals: total,
		ReferralCode:   user.ReferralCode,
	})
}

func (h *SocialHandler) LinkReferral(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user uuid",
		})
	}

	var req dto.LinkReferralRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.users.LinkReferral(c.Context(), id, req.ReferralCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		case errors.Is(err, services.ErrReferralCodeInvalid),
			errors.Is(err, services.ErrReferralAlreadySet),
			errors.Is(err, services.ErrReferralCycle):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to link referral",
			})
		}
	}

	return c.JSON(user)
}

func (h *SocialHandler) AddFriend(c *fiber.Ctx) error {
	a, errA := uuid.Parse(c.Params("uuid"))
	b, errB := uuid.Parse(c.Params("other"))
	if errA != nil || errB != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user uuid",
		})
	}

	if err := h.friendships.AddFriend(c.Context(), a, b); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "One or both users not found",
			})
		case errors.Is(err, services.ErrSelfFriendship):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrAlreadyFriends):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to create friendship",
			})
		}
	}

	return c.SendStatus(fiber.StatusCreated)
}

func (h *SocialHandler) RemoveFriend(c *fiber.Ctx) error {
	a, errA := uuid.Parse(c.Params("uuid"))
	b, errB := uuid.Parse(c.Params("other"))
	if errA != nil || errB != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user uuid",
		})
	}

	if err := h.friendships.RemoveFriend(c.Context(), a, b); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "One or both users not found",
			})
		case errors.Is(err, services.ErrNotFriends):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Friendship not found",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to remove friendship",
			})
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SocialHandler) FriendshipStatus(c *fiber.Ctx) error {
	a, errA := uuid.Parse(c.Params("uuid"))
	b, errB := uuid.Parse(c.Params("other"))
	if errA != nil || errB != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user uuid",
		})
	}

	areFriends, err := h.friendships.AreFriends(c.Context(), a, b)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to check friendship",
		})
	}

	return c.JSON(dto.FriendshipStatusResponse{AreFriends: areFriends})
}

func (h *SocialHandler) MutualFriends(c *fiber.Ctx) error {
	a, errA := uuid.Parse(c.Params("uuid"))
	b, errB := uuid.Parse(c.Params("other"))
	if errA != nil || errB != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user uuid",
		})
	}

	args, err := parsePageArgs(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	conn, err := h.friendships.MutualFriends(c.Context(), a, b, args)
	if err != nil {
		return respondConnectionError(c, err)
	}
	return c.JSON(conn)
}
