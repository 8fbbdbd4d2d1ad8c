package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mindsettle/therapy-app/models"
	"github.com/mindsettle/therapy-app/services"
	"github.com/mindsettle/therapy-app/utils"
)

type AvailabilityController struct {
	svc *services.AvailabilityService
}

func NewAvailabilityController(svc *services.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{svc: svc}
}

// Reconcile replaces the authenticated therapist's weekly schedule with
// the submitted one. Slots still held by bookings stay active and come
// back as warnings next to the refreshed list.
func (ct *AvailabilityController) Reconcile(c *fiber.Ctx) error {
	therapistID := c.Locals("userID").(uint)

	var desired []services.SlotInput
	if err := c.BodyParser(&desired); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	result, err := ct.svc.Reconcile(c.Context(), therapistID, desired)
	if err != nil {
		return utils.JSONError(c, err)
	}
	if result.Warnings == nil {
		result.Warnings = []string{}
	}
	return c.JSON(result)
}

// GetForTherapist returns a therapist's active slots grouped into
// weekday and weekend. Public.
func (ct *AvailabilityController) GetForTherapist(c *fiber.Ctx) error {
	therapistID, err := strconv.ParseUint(c.Params("therapistId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid therapist id",
		})
	}

	grouped, err := ct.svc.ListForTherapist(c.Context(), uint(therapistID))
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(grouped)
}

// Deactivate flips a slot inactive for its owner or an admin.
func (ct *AvailabilityController) Deactivate(c *fiber.Ctx) error {
	slotID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid slot id",
		})
	}

	userID := c.Locals("userID").(uint)
	role := c.Locals("role").(string)

	err = ct.svc.Deactivate(c.Context(), uint(slotID), userID, role == models.RoleAdmin)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
