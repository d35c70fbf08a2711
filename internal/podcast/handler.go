package podcast

import (
	"errors"

	"github.com/Kyz7/dashboard/internal/auth"
	"github.com/Kyz7/dashboard/internal/media"
	"github.com/Kyz7/dashboard/internal/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrNotFound) {
		return response.NotFound(c, "Podcast")
	}
	return media.RespondError(c, h.log, err)
}

func podcastID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) Create(c *fiber.Ctx) error {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}
	var in Input
	if err := response.ParseAndValidate(c, &in); err != nil {
		return nil
	}

	podcast, err := h.svc.Create(c.UserContext(), in, p.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Created(c, fiber.Map{"podcast": podcast})
}

func (h *Handler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	podcasts, total, err := h.svc.List(c.UserContext(), page, limit)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, fiber.Map{
		"podcasts":   podcasts,
		"pagination": response.CalculatePagination(page, limit, total),
	})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	id, ok := podcastID(c)
	if !ok {
		return response.BadRequest(c, "Invalid podcast ID", nil)
	}
	podcast, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, fiber.Map{"podcast": podcast})
}

func (h *Handler) Update(c *fiber.Ctx) error {
	id, ok := podcastID(c)
	if !ok {
		return response.BadRequest(c, "Invalid podcast ID", nil)
	}
	var in Input
	if err := response.ParseAndValidate(c, &in); err != nil {
		return nil
	}

	podcast, err := h.svc.Update(c.UserContext(), id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, fiber.Map{"podcast": podcast})
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	id, ok := podcastID(c)
	if !ok {
		return response.BadRequest(c, "Invalid podcast ID", nil)
	}
	cleanup, err := h.svc.Delete(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, fiber.Map{"id": id, "cleanup": cleanup})
}

func (h *Handler) UploadAudio(c *fiber.Ctx) error {
	id, ok := podcastID(c)
	if !ok {
		return response.BadRequest(c, "Invalid podcast ID", nil)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, media.CodeMissingField, "file is required", nil)
	}
	file, f, err := media.FromFormFile(fh)
	if err != nil {
		return response.BadRequest(c, "Unable to read uploaded file", nil)
	}
	defer f.Close()

	res, err := h.svc.ReplaceAudio(c.UserContext(), id, file)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, fiber.Map{"url": res.URL, "cleanup": res.Cleanup})
}

type attachRequest struct {
	MediaID string `json:"mediaId" validate:"required"`
}

func (h *Handler) AttachAudio(c *fiber.Ctx) error {
	id, ok := podcastID(c)
	if !ok {
		return response.BadRequest(c, "Invalid podcast ID", nil)
	}
	var req attachRequest
	if err := response.ParseAndValidate(c, &req); err != nil {
		return nil
	}

	podcast, cleanup, err := h.svc.AttachAudio(c.UserContext(), id, req.MediaID)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, fiber.Map{"podcast": podcast, "cleanup": cleanup})
}
