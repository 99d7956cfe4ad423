// Package handler exposes the intake service over HTTP.
package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"

	"github.com/rise-and-shine/filedepot/filestore"
	"github.com/rise-and-shine/filedepot/http/server/forward"
	"github.com/rise-and-shine/filedepot/intake"
	"github.com/rise-and-shine/filedepot/val"
)

// Form fields of the upload request.
const (
	formFile        = "file"
	formFileID      = "uuid"
	formGroup       = "group"
	formMediaType   = "media_type"
	formDescription = "description"
	formCreator     = "creator"
	formCreatorName = "creator_name"
	formLicense     = "license"
	formCapturedAt  = "captured_at"
	formVersion     = "version"
)

// Handler serves the intake routes.
type Handler struct {
	svc *intake.Service
}

// New creates a Handler backed by svc.
func New(svc *intake.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the routes on r.
func (h *Handler) Register(r fiber.Router) {
	r.Post("/", h.upload)
	r.Get("/download/:group/:file", h.download)
	r.Get("/metadata/:group", h.metadata)
	r.Get("/files/:group", forward.ToUseCase(h.svc.ListFiles))
	r.Get("/health", forward.ToUseCase(h.svc.Health))
}

func (h *Handler) upload(c *fiber.Ctx) error {
	fh, err := c.FormFile(formFile)
	if err != nil {
		return errx.New(
			"no file provided",
			errx.WithType(errx.T_Validation),
			errx.WithCode(val.CodeValidationFailed),
			errx.WithFields(errx.M{formFile: "is required"}),
		)
	}

	version, err := formInt(c, formVersion)
	if err != nil {
		return errx.Wrap(err)
	}

	content, err := fh.Open()
	if err != nil {
		return errx.Wrap(err)
	}
	defer content.Close()

	group := c.FormValue(formGroup)
	if group == "" {
		group = c.FormValue(formMediaType)
	}

	res, err := h.svc.Upload(c.UserContext(), &intake.UploadInput{
		Content:      content,
		OriginalName: fh.Filename,
		Size:         fh.Size,
		ContentType:  fh.Header.Get(fiber.HeaderContentType),
		FileID:       strings.TrimSpace(c.FormValue(formFileID)),
		Group:        strings.TrimSpace(group),
		Description:  c.FormValue(formDescription),
		CreatorID:    c.FormValue(formCreator),
		CreatorName:  c.FormValue(formCreatorName),
		License:      c.FormValue(formLicense),
		CapturedAt:   c.FormValue(formCapturedAt),
		Version:      version,
	})
	if err != nil {
		return errx.Wrap(err)
	}

	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *Handler) download(c *fiber.Ctx) error {
	in := &intake.DownloadInput{}
	if err := c.ParamsParser(in); err != nil {
		return errx.Wrap(err, errx.WithType(errx.T_Validation))
	}

	// The body is streamed after the handler returns, past the request timeout.
	f, err := h.svc.Download(context.WithoutCancel(c.UserContext()), in)
	if err != nil {
		return errx.Wrap(err)
	}

	contentType := f.Info.ContentType
	if contentType == "" {
		contentType = filestore.ContentTypeOctetStream
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", in.File))

	return c.SendStream(f.Content, int(f.Info.Size))
}

func (h *Handler) metadata(c *fiber.Ctx) error {
	in := &intake.MetadataInput{}
	if err := c.ParamsParser(in); err != nil {
		return errx.Wrap(err, errx.WithType(errx.T_Validation))
	}

	doc, err := h.svc.Metadata(c.UserContext(), in)
	if err != nil {
		return errx.Wrap(err)
	}

	c.Set(fiber.HeaderContentType, filestore.ContentTypeJSONLD)
	return c.Send(doc)
}

func formInt(c *fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.FormValue(key))
	if raw == "" {
		return 0, nil
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0, errx.New(
			"form value must be an integer",
			errx.WithType(errx.T_Validation),
			errx.WithCode(val.CodeValidationFailed),
			errx.WithFields(errx.M{key: "must be an integer"}),
		)
	}
	return n, nil
}
