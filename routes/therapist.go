package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mindsettle/therapy-app/controllers"
	"github.com/mindsettle/therapy-app/middleware"
	"github.com/mindsettle/therapy-app/models"
)

// SetupTherapistRoutes configures therapist search, profile and admin
// approval routes
func SetupTherapistRoutes(app *fiber.App, therapist *controllers.TherapistController) {
	group := app.Group("/therapists")
	group.Get("/search-name", therapist.SearchName)
	group.Patch("/profile", middleware.Protected(), middleware.RequireRole(models.RoleTherapist), therapist.UpdateProfile)
	group.Post("/profile/picture", middleware.Protected(), middleware.RequireRole(models.RoleTherapist), therapist.UploadProfilePicture)

	admin := app.Group("/admin/therapists", middleware.Protected(), middleware.RequireRole(models.RoleAdmin))
	admin.Get("/pending", therapist.ListPending)
	admin.Patch("/:id/status", therapist.SetStatus)
}
