package handlers

import (
	"strings"
	"unicode/utf8"

	"libris/internal/core/domain"
	"libris/internal/core/services"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	maxTitleLength    = 500
	maxLanguageLength = 50
	maxISBNLength     = 20
	maxBarcodeLength  = 100
	minPublishYear    = 1000
	maxPublishYear    = 2100
	defaultLanguage   = "English"
)

// CatalogHandler handles material and copy endpoints
type CatalogHandler struct {
	catalog services.Catalog
	log     logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog services.Catalog, log logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

// CreateMaterialRequest represents a new catalog entry
type CreateMaterialRequest struct {
	Title           string  `json:"title"`
	Subtitle        *string `json:"subtitle,omitempty"`
	MaterialType    string  `json:"material_type" example:"Book"`
	ISBN            *string `json:"isbn,omitempty"`
	PublicationYear int     `json:"publication_year" example:"1965"`
	PublisherID     *int64  `json:"publisher_id,omitempty"`
	Language        string  `json:"language,omitempty" example:"English"`
	Pages           *int    `json:"pages,omitempty"`
	Description     *string `json:"description,omitempty"`
	TotalCopies     int     `json:"total_copies"`
}

// UpdateMaterialRequest represents a material update body
type UpdateMaterialRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Language    *string `json:"language,omitempty"`
}

// AddCopyRequest represents a new physical copy
type AddCopyRequest struct {
	Barcode          string  `json:"barcode"`
	BranchID         int64   `json:"branch_id"`
	AcquisitionPrice float64 `json:"acquisition_price"`
}

// CreateMaterial adds a catalog entry
// @Summary Create material
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateMaterialRequest true "Material data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /materials [post]
func (h *CatalogHandler) CreateMaterial(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req CreateMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := services.MaterialInput{
		Title:           strings.TrimSpace(req.Title),
		Subtitle:        req.Subtitle,
		Type:            domain.MaterialType(req.MaterialType),
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		PublisherID:     req.PublisherID,
		Language:        strings.TrimSpace(req.Language),
		Pages:           req.Pages,
		Description:     req.Description,
		TotalCopies:     req.TotalCopies,
	}
	if input.Language == "" {
		input.Language = defaultLanguage
	}

	switch {
	case input.Title == "" || utf8.RuneCountInString(input.Title) > maxTitleLength:
		return response.BadRequest(c, "title must be between 1 and 500 characters")
	case !input.Type.Valid():
		return response.BadRequest(c, "Unknown material_type")
	case input.PublicationYear < minPublishYear || input.PublicationYear > maxPublishYear:
		return response.BadRequest(c, "publication_year must be between 1000 and 2100")
	case input.TotalCopies < 0:
		return response.BadRequest(c, "total_copies cannot be negative")
	case utf8.RuneCountInString(input.Language) > maxLanguageLength:
		return response.BadRequest(c, "language must be at most 50 characters")
	case input.ISBN != nil && len(*input.ISBN) > maxISBNLength:
		return response.BadRequest(c, "isbn must be at most 20 characters")
	case input.Pages != nil && *input.Pages <= 0:
		return response.BadRequest(c, "pages must be greater than zero")
	case input.PublisherID != nil && *input.PublisherID <= 0:
		return response.BadRequest(c, "publisher_id must be greater than zero")
	}

	materialID, err := h.catalog.AddMaterial(c.UserContext(), auth, input)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Created(c, "Material created", fiber.Map{"material_id": materialID})
}

// GetMaterial reads a catalog entry
// @Summary Get material
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /materials/{id} [get]
func (h *CatalogHandler) GetMaterial(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	materialID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	material, err := h.catalog.GetMaterial(c.UserContext(), auth, materialID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Material retrieved", material)
}

// UpdateMaterial changes a material's descriptive fields
// @Summary Update material
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Param body body UpdateMaterialRequest true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /materials/{id} [put]
func (h *CatalogHandler) UpdateMaterial(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	materialID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req UpdateMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Title == nil && req.Description == nil && req.Language == nil {
		return response.BadRequest(c, "Nothing to update")
	}
	if req.Title != nil {
		if n := utf8.RuneCountInString(strings.TrimSpace(*req.Title)); n == 0 || n > maxTitleLength {
			return response.BadRequest(c, "title must be between 1 and 500 characters")
		}
	}
	if req.Language != nil {
		if n := utf8.RuneCountInString(strings.TrimSpace(*req.Language)); n == 0 || n > maxLanguageLength {
			return response.BadRequest(c, "language must be between 1 and 50 characters")
		}
	}

	update := services.MaterialUpdate{Title: req.Title, Description: req.Description, Language: req.Language}
	if err := h.catalog.UpdateMaterial(c.UserContext(), auth, materialID, update); err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Material updated", fiber.Map{"material_id": materialID})
}

// DeleteMaterial withdraws a material
// @Summary Delete material
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Param body body StaffRequest false "Acting staff"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /materials/{id} [delete]
func (h *CatalogHandler) DeleteMaterial(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	materialID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req StaffRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}
	staffID, err := actingStaffID(auth, req.StaffID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.catalog.DeleteMaterial(c.UserContext(), auth, materialID, staffID); err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Material deleted", fiber.Map{"material_id": materialID})
}

// AddCopy registers a physical copy of a material
// @Summary Add copy
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Param body body AddCopyRequest true "Copy data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /materials/{id}/copies [post]
func (h *CatalogHandler) AddCopy(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	materialID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req AddCopyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Barcode = strings.TrimSpace(req.Barcode)
	if req.Barcode == "" || utf8.RuneCountInString(req.Barcode) > maxBarcodeLength {
		return response.BadRequest(c, "barcode must be between 1 and 100 characters")
	}
	if err := requirePositive(idField("branch_id", req.BranchID)); err != nil {
		return respondError(c, h.log, err)
	}
	if req.AcquisitionPrice < 0 {
		return response.BadRequest(c, "acquisition_price cannot be negative")
	}

	copyID, err := h.catalog.AddCopy(c.UserContext(), auth, materialID, services.CopyInput{
		Barcode:          req.Barcode,
		BranchID:         req.BranchID,
		AcquisitionPrice: req.AcquisitionPrice,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Created(c, "Copy added", fiber.Map{"material_id": materialID, "copy_id": copyID})
}
