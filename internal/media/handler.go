package media

import (
	"errors"
	"strings"

	"github.com/Kyz7/dashboard/internal/auth"
	"github.com/Kyz7/dashboard/internal/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxBulkItems = 100

type Handler struct {
	svc         *Service
	log         *zap.Logger
	storageMode string
}

func NewHandler(svc *Service, log *zap.Logger, storageMode string) *Handler {
	return &Handler{svc: svc, log: log, storageMode: storageMode}
}

// RespondError maps media errors onto the JSON error envelope.
func RespondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var verr *ValidationError
	var serr *StoreError
	switch {
	case errors.As(err, &verr):
		return response.Error(c, fiber.StatusBadRequest, verr.Code, verr.Message, nil)
	case errors.Is(err, ErrNotFound):
		return response.NotFound(c, "Media")
	case errors.Is(err, ErrForbidden):
		return response.Forbidden(c, "You do not have permission to modify this file")
	case errors.Is(err, ErrPickerClosed):
		return response.Conflict(c, err.Error())
	case errors.As(err, &serr):
		log.Error("Media store error", zap.String("op", serr.Op), zap.Error(serr.Err))
		return response.Error(c, fiber.StatusInternalServerError, "STORE_ERROR", err.Error(), nil)
	default:
		log.Error("Media request failed", zap.Error(err))
		return response.InternalError(c, "Internal server error")
	}
}

func (h *Handler) List(c *fiber.Ctx) error {
	t, err := ParseType(c.Query("type"))
	if err != nil {
		return RespondError(c, h.log, err)
	}

	listing, err := h.svc.List(c.UserContext(), Query{
		Path:   c.Query("path"),
		Type:   t,
		Search: c.Query("search"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", defaultLimit),
	})
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.OK(c, listingBody(listing))
}

func listingBody(l *Listing) fiber.Map {
	return fiber.Map{
		"files":       NewFileViews(l.Files),
		"folders":     l.Folders,
		"breadcrumbs": l.Breadcrumbs,
		"pagination":  response.CalculatePagination(l.Page, l.Limit, l.Total),
	}
}

func (h *Handler) Folders(c *fiber.Ctx) error {
	t, err := ParseType(c.Query("type"))
	if err != nil {
		return RespondError(c, h.log, err)
	}
	p := c.Query("path", "/")
	return response.OK(c, fiber.Map{
		"path":        p,
		"folders":     h.svc.Resolver().Folders(p, t),
		"breadcrumbs": Breadcrumbs(p, h.svc.Resolver().Catalogue()),
	})
}

// Picker is the read-only listing used by other editors to choose a file.
func (h *Handler) Picker(c *fiber.Ctx) error {
	if c.Query("type") == "" {
		return response.Error(c, fiber.StatusBadRequest, CodeMissingField, "type is required", nil)
	}
	t, err := ParseType(c.Query("type"))
	if err != nil {
		return RespondError(c, h.log, err)
	}

	picker := NewPicker(t, c.Query("path", "/"))
	listing, err := h.svc.List(c.UserContext(), picker.Query(c.Query("search"), c.QueryInt("page", 1), c.QueryInt("limit", defaultLimit)))
	if err != nil {
		return RespondError(c, h.log, err)
	}

	body := listingBody(listing)
	body["type"] = picker.Type
	body["path"] = picker.Path()
	return response.OK(c, body)
}

func (h *Handler) Stats(c *fiber.Ctx) error {
	stats, err := h.svc.Stats(c.UserContext())
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.OK(c, fiber.Map{"stats": stats, "storageMode": h.storageMode})
}

func (h *Handler) Upload(c *fiber.Ctx) error {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, CodeMissingField, "file is required", nil)
	}
	file, f, err := FromFormFile(fh)
	if err != nil {
		return response.BadRequest(c, "Unable to read uploaded file", nil)
	}
	defer f.Close()

	rec, err := h.svc.Upload(c.UserContext(), uploadInput(file, p, c))
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.OK(c, fiber.Map{"file": NewFileView(rec)})
}

func uploadInput(file FileInput, p auth.Principal, c *fiber.Ctx) UploadInput {
	return UploadInput{
		FileInput:   file,
		Category:    c.FormValue("category"),
		Subcategory: c.FormValue("subcategory"),
		Alt:         c.FormValue("alt"),
		Principal:   p,
	}
}

func (h *Handler) BulkUpload(c *fiber.Ctx) error {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return response.BadRequest(c, "Invalid multipart form", nil)
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return response.Error(c, fiber.StatusBadRequest, CodeMissingField, "files is required", nil)
	}
	if len(headers) > maxBulkItems {
		return response.BadRequest(c, "Too many files", fiber.Map{"max": maxBulkItems})
	}

	inputs := make([]UploadInput, 0, len(headers))
	for _, fh := range headers {
		file, f, err := FromFormFile(fh)
		if err != nil {
			return response.BadRequest(c, "Unable to read uploaded file "+fh.Filename, nil)
		}
		defer f.Close()
		inputs = append(inputs, uploadInput(file, p, c))
	}

	results := h.svc.BulkUpload(c.UserContext(), inputs)
	uploaded := 0
	for _, r := range results {
		if r.Success {
			uploaded++
		}
	}
	return response.OK(c, fiber.Map{
		"results":  results,
		"uploaded": uploaded,
		"failed":   len(results) - uploaded,
	})
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100"`
}

func (h *Handler) BulkDelete(c *fiber.Ctx) error {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req bulkDeleteRequest
	if err := response.ParseAndValidate(c, &req); err != nil {
		return nil
	}

	selection := NewBrowser("", "")
	selection.SelectAll(req.IDs)
	ids := selection.Selection()
	if len(ids) == 0 {
		return response.Error(c, fiber.StatusBadRequest, CodeMissingField, "ids is required", nil)
	}

	results := h.svc.BulkDelete(c.UserContext(), p, ids)
	deleted := 0
	for _, r := range results {
		if r.Success {
			deleted++
		}
	}
	return response.OK(c, fiber.Map{
		"results": results,
		"deleted": deleted,
		"failed":  len(results) - deleted,
	})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	rec, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.OK(c, fiber.Map{"file": NewFileView(rec)})
}

type updateRequest struct {
	Alt *string `json:"alt" validate:"required,max=255"`
}

func (h *Handler) Update(c *fiber.Ctx) error {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req updateRequest
	if err := response.ParseAndValidate(c, &req); err != nil {
		return nil
	}

	rec, err := h.svc.UpdateAlt(c.UserContext(), p, c.Params("id"), *req.Alt)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.OK(c, fiber.Map{"file": NewFileView(rec)})
}

type moveRequest struct {
	NewPath string `json:"newPath" validate:"required,max=255"`
}

func (h *Handler) Move(c *fiber.Ctx) error {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req moveRequest
	if err := response.ParseAndValidate(c, &req); err != nil {
		return nil
	}

	rec, err := h.svc.Move(c.UserContext(), p, c.Params("id"), strings.TrimSpace(req.NewPath))
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.OK(c, fiber.Map{"file": NewFileView(rec)})
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	res, err := h.svc.Delete(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.OK(c, fiber.Map{"id": res.ID, "cleanup": res.Cleanup})
}
