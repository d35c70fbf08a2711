package about

import (
	"errors"

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
	if errors.Is(err, ErrMemberNotFound) {
		return response.NotFound(c, "Team member")
	}
	return media.RespondError(c, h.log, err)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	page, err := h.svc.Get(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, fiber.Map{"about": page})
}

type updateRequest struct {
	Title string `json:"title" validate:"required,max=255"`
	Body  string `json:"body"`
}

func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := response.ParseAndValidate(c, &req); err != nil {
		return nil
	}

	page, err := h.svc.UpdateText(c.UserContext(), req.Title, req.Body)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, fiber.Map{"about": page})
}

type memberRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Position string `json:"position" validate:"max=255"`
}

func (h *Handler) AddMember(c *fiber.Ctx) error {
	var req memberRequest
	if err := response.ParseAndValidate(c, &req); err != nil {
		return nil
	}

	page, err := h.svc.AddMember(c.UserContext(), req.Name, req.Position)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Created(c, fiber.Map{"about": page})
}

func (h *Handler) RemoveMember(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return response.BadRequest(c, "Invalid team member index", nil)
	}

	page, cleanup, err := h.svc.RemoveMember(c.UserContext(), index)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, fiber.Map{"about": page, "cleanup": cleanup})
}

func (h *Handler) UploadMainImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, media.CodeMissingField, "file is required", nil)
	}
	file, f, err := media.FromFormFile(fh)
	if err != nil {
		return response.BadRequest(c, "Unable to read uploaded file", nil)
	}
	defer f.Close()

	res, err := h.svc.ReplaceMainImage(c.UserContext(), file)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, fiber.Map{"url": res.URL, "cleanup": res.Cleanup})
}

func (h *Handler) UploadMemberPhoto(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return response.BadRequest(c, "Invalid team member index", nil)
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

	res, err := h.svc.ReplaceMemberPhoto(c.UserContext(), index, file)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, fiber.Map{"url": res.URL, "cleanup": res.Cleanup})
}

type attachRequest struct {
	MediaID string `json:"mediaId" validate:"required"`
}

func (h *Handler) AttachMemberPhoto(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return response.BadRequest(c, "Invalid team member index", nil)
	}
	var req attachRequest
	if err := response.ParseAndValidate(c, &req); err != nil {
		return nil
	}

	page, cleanup, err := h.svc.AttachMemberPhoto(c.UserContext(), index, req.MediaID)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, fiber.Map{"about": page, "cleanup": cleanup})
}
