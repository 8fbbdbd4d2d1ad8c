package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mindsettle/therapy-app/controllers"
)

// SetupAuthRoutes configures all auth related routes
func SetupAuthRoutes(app *fiber.App, auth *controllers.AuthController) {
	group := app.Group("/auth")
	group.Post("/register", auth.Register)
	group.Post("/login", auth.Login)
}
