package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mindsettle/therapy-app/controllers"
	"github.com/mindsettle/therapy-app/middleware"
	"github.com/mindsettle/therapy-app/models"
)

// SetupAvailabilityRoutes configures all availability related routes
func SetupAvailabilityRoutes(app *fiber.App, availability *controllers.AvailabilityController) {
	group := app.Group("/availability")
	group.Post("/", middleware.Protected(), middleware.RequireRole(models.RoleTherapist), availability.Reconcile)
	group.Get("/:therapistId", availability.GetForTherapist)
	group.Delete("/:id", middleware.Protected(), availability.Deactivate)
}
