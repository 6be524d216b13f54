package controller

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/tigernone/corpusqa/internal/dto"
	"github.com/tigernone/corpusqa/internal/pkg/serverutils"
	"github.com/tigernone/corpusqa/internal/service"
)

type ICorpusController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Replace(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type corpusController struct {
	service service.IIngestService
}

func NewCorpusController(service service.IIngestService) ICorpusController {
	return &corpusController{service: service}
}

func (c *corpusController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/corpus/v1")
	h.Post("/upload", c.Upload)
	h.Post("/replace", c.Replace)
	h.Delete("/", c.Clear)
	h.Get("/stats", c.Stats)
}

func (c *corpusController) Upload(ctx *fiber.Ctx) error {
	return c.ingest(ctx, false)
}

// Replace swaps the whole corpus: previous documents, sentences, and every
// open session are dropped before the new text is indexed.
func (c *corpusController) Replace(ctx *fiber.Ctx) error {
	return c.ingest(ctx, true)
}

// Clear drops the whole corpus along with every open session.
func (c *corpusController) Clear(ctx *fiber.Ctx) error {
	if err := c.service.Clear(ctx.Context()); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear corpus", nil))
}

func (c *corpusController) ingest(ctx *fiber.Ctx, replace bool) error {
	req, err := parseCorpusRequest(ctx)
	if err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Upload(ctx.Context(), req, replace)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload corpus", res))
}

// parseCorpusRequest accepts either a JSON body or a multipart form with the
// corpus as a .txt file upload under "file".
func parseCorpusRequest(ctx *fiber.Ctx) (dto.UploadCorpusRequest, error) {
	var req dto.UploadCorpusRequest

	fh, err := ctx.FormFile("file")
	if err != nil {
		return req, ctx.BodyParser(&req)
	}

	f, err := fh.Open()
	if err != nil {
		return req, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return req, err
	}

	req.Name = ctx.FormValue("name", fh.Filename)
	req.Text = string(data)
	req.Mode = ctx.FormValue("mode", "auto")
	return req, nil
}

func (c *corpusController) Stats(ctx *fiber.Ctx) error {
	res, err := c.service.Stats(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get corpus stats", res))
}
