package controllers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mindsettle/therapy-app/models"
	"github.com/mindsettle/therapy-app/services"
	"github.com/mindsettle/therapy-app/utils"
)

type TherapistController struct {
	svc    *services.TherapistService
	search *services.SearchService
}

func NewTherapistController(svc *services.TherapistService, search *services.SearchService) *TherapistController {
	return &TherapistController{svc: svc, search: search}
}

// SearchName serves typeahead over the derived name index. Public.
func (ct *TherapistController) SearchName(c *fiber.Ctx) error {
	docs, err := ct.search.SearchTherapists(c.Context(), c.Query("name"))
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(fiber.Map{
		"therapists": docs,
		"count":      len(docs),
	})
}

// ListPending returns therapists awaiting approval. Admin only.
func (ct *TherapistController) ListPending(c *fiber.Ctx) error {
	therapists, err := ct.svc.ListPending(c.Context())
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(therapists)
}

// SetStatus applies an admin status decision (approve, suspend,
// deactivate) and queues the matching index change.
func (ct *TherapistController) SetStatus(c *fiber.Ctx) error {
	therapistID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid therapist id",
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
	status, err := models.ParseUserStatus(input.Status)
	if err != nil {
		return utils.JSONError(c, utils.InvalidInput(err.Error()))
	}

	therapist, err := ct.svc.SetStatus(c.Context(), uint(therapistID), status)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(therapist)
}

// UpdateProfile lets the authenticated therapist change their display
// name and session fee.
func (ct *TherapistController) UpdateProfile(c *fiber.Ctx) error {
	therapistID := c.Locals("userID").(uint)

	var input services.ProfileUpdate
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	therapist, err := ct.svc.UpdateProfile(c.Context(), therapistID, input)
	if err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(therapist)
}

// UploadProfilePicture pushes the avatar to Cloudinary and stores the
// returned URL.
func (ct *TherapistController) UploadProfilePicture(c *fiber.Ctx) error {
	therapistID := c.Locals("userID").(uint)

	fileHeader, err := c.FormFile("picture")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Missing picture file",
			Error:   err.Error(),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to open picture file",
			Error:   err.Error(),
		})
	}
	defer file.Close()

	url, err := utils.UploadProfilePicture(file, fmt.Sprintf("therapist_%d", therapistID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to upload picture",
			Error:   err.Error(),
		})
	}

	if err := ct.svc.SetProfilePicture(c.Context(), therapistID, url); err != nil {
		return utils.JSONError(c, err)
	}
	return c.JSON(fiber.Map{"profile_picture": url})
}
