package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mindsettle/therapy-app/controllers"
	"github.com/mindsettle/therapy-app/middleware"
	"github.com/mindsettle/therapy-app/models"
)

// SetupBookingRoutes configures all booking related routes
func SetupBookingRoutes(app *fiber.App, booking *controllers.BookingController) {
	group := app.Group("/bookings")
	group.Post("/", middleware.Protected(), middleware.RequireRole(models.RoleCustomer), booking.Create)
	group.Patch("/:id/status", middleware.Protected(), booking.UpdateStatus)
	group.Get("/therapist/:id/booked-slots", booking.BookedSlots)
}
