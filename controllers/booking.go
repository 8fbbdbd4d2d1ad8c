package controllers

import (
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mindsettle/therapy-app/models"
	"github.com/mindsettle/therapy-app/services"
	"github.com/mindsettle/therapy-app/utils"
	"gorm.io/gorm"
)

type BookingController struct {
	svc *services.BookingService
	db  *gorm.DB
}

func NewBookingController(svc *services.BookingService, db *gorm.DB) *BookingController {
	return &BookingController{svc: svc, db: db}
}

// Create reserves a slot for the authenticated customer. The
// confirmation mail goes out after the reservation committed and never
// affects the response.
func (ct *BookingController) Create(c *fiber.Ctx) error {
	customerID := c.Locals("userID").(uint)

	var input services.ReservationInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	booking, err := ct.svc.Reserve(c.Context(), customerID, input)
	if err != nil {
		return utils.JSONError(c, err)
	}

	go ct.sendConfirmationEmails(booking)

	return c.Status(fiber.StatusCreated).JSON(booking)
}

// UpdateStatus moves a booking along its lifecycle. Customers may
// cancel their own booking; therapists confirm, cancel, or complete.
func (ct *BookingController) UpdateStatus(c *fiber.Ctx) error {
	bookingID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid booking id",
		})
	}

	type statusInput struct {
		Status string `json:"status"`
	}
	input := new(statusInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	next, err := models.ParseBookingStatus(input.Status)
	if err != nil {
		return utils.JSONError(c, utils.InvalidInput(err.Error()))
	}

	userID := c.Locals("userID").(uint)
	role := c.Locals("role").(string)

	booking, err := ct.svc.UpdateStatus(c.Context(), uint(bookingID), userID, role, next)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(booking)
}

// BookedSlots lists occupied start times for a therapist on one date.
// Public, so booking pages can grey out taken times.
func (ct *BookingController) BookedSlots(c *fiber.Ctx) error {
	therapistID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid therapist id",
		})
	}

	times, err := ct.svc.BookedStartTimes(c.Context(), uint(therapistID), c.Query("date"))
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(fiber.Map{"booked_start_times": times})
}

func (ct *BookingController) sendConfirmationEmails(booking *models.Booking) {
	var customer, therapist models.User
	if err := ct.db.First(&customer, booking.CustomerID).Error; err != nil {
		log.Printf("booking %d: failed to load customer for email: %v", booking.ID, err)
		return
	}
	if err := ct.db.First(&therapist, booking.TherapistID).Error; err != nil {
		log.Printf("booking %d: failed to load therapist for email: %v", booking.ID, err)
		return
	}

	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your session has been booked.</p>
		<ul>
			<li><strong>Therapist:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Time:</strong> %s - %s</li>
			<li><strong>Status:</strong> %s</li>
		</ul>
		<p>Your therapist will confirm shortly.</p>
	`, customer.Name, therapist.Name, booking.Date, booking.StartTime, booking.EndTime, booking.Status)
	if err := utils.SendEmail(customer.Email, "Session Booked", body); err != nil {
		log.Printf("booking %d: failed to send customer email: %v", booking.ID, err)
	}

	body = fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have a new session request.</p>
		<ul>
			<li><strong>Customer:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Time:</strong> %s - %s</li>
		</ul>
		<p>Please confirm or decline it.</p>
	`, therapist.Name, customer.Name, booking.Date, booking.StartTime, booking.EndTime)
	if err := utils.SendEmail(therapist.Email, "New Session Request", body); err != nil {
		log.Printf("booking %d: failed to send therapist email: %v", booking.ID, err)
	}
}
