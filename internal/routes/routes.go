package routes

import (
	"time"

	"github.com/canberkoguz/socialgraph/internal/config"
	"github.com/canberkoguz/socialgraph/internal/handlers"
	"github.com/canberkoguz/socialgraph/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	socialHandler *handlers.SocialHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", userHandler.CreateUser)
	auth.Post("/login", authHandler.Login)

	// Users — reads are public, mutations require a JWT
	users := api.Group("/users")
	users.Get("/", userHandler.ListUsers)
	users.Get("/email/:email", userHandler.GetUserByEmail)
	users.Get("/:uuid", userHandler.GetUser)
	users.Put("/:uuid", middleware.JWTProtected(cfg), userHandler.UpdateUser)
	users.Patch("/:uuid", middleware.JWTProtected(cfg), userHandler.PatchUser)
	users.Delete("/:uuid", middleware.JWTProtected(cfg), userHandler.DeleteUser)

	// Friendship relation
	users.Get("/:uuid/friends", socialHandler.ListFriends)
	users.Get("/:uuid/friends/:other/status", socialHandler.FriendshipStatus)
	users.Get("/:uuid/friends/:other/mutual", socialHandler.MutualFriends)
	users.Post("/:uuid/friends/:other", middleware.JWTProtected(cfg), socialHandler.AddFriend)
	users.Delete("/:uuid/friends/:other", middleware.JWTProtected(cfg), socialHandler.RemoveFriend)

	// Referral relation
	users.Post("/:uuid/referrer", middleware.JWTProtected(cfg), socialHandler.LinkReferral)
	users.Get("/:uuid/referrals", socialHandler.ListReferredUsers)
	users.Get("/:uuid/referrals/stats", socialHandler.ReferralStats)
	users.Get("/:uuid/referrer", socialHandler.GetReferrer)
}
