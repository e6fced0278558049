package handler

import (
	"github.com/gofiber/fiber/v2"

	"docvault/internal/http/middleware"
	"docvault/internal/model"
	"docvault/internal/service"
)

func caller(c *fiber.Ctx) (model.Identity, error) {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return model.Identity{}, fiber.ErrUnauthorized
	}
	return who, nil
}

// ListDocuments returns the caller's documents, newest first, without content.
//
// @Summary List documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Success 200 {array} documentView
// @Failure 500 {object} errorPayload
// @Router /documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who, err := caller(c)
		if err != nil {
			return err
		}
		docs, err := svc.List(c.UserContext(), who)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(newDocumentViews(docs))
	}
}

// UploadDocument stores the multipart field "file" as a new document.
//
// @Summary Upload a document
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "document"
// @Success 201 {object} documentView
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Router /documents [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who, err := caller(c)
		if err != nil {
			return err
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := svc.Upload(c.UserContext(), who, service.FileUpload{
			Name:     fh.Filename,
			MimeType: fh.Header.Get(fiber.HeaderContentType),
			Size:     fh.Size,
			Content:  f,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(newDocumentView(*doc, false))
	}
}

// DocumentStats returns count, total size and the most recent uploads of the caller.
//
// @Summary Document statistics
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} statsView
// @Router /documents/stats [get]
func DocumentStats(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who, err := caller(c)
		if err != nil {
			return err
		}
		st, err := svc.Stats(c.UserContext(), who)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(newStatsView(st))
	}
}

// GetDocument returns one document including its data URL content.
//
// @Summary Preview a document
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "document id"
// @Success 200 {object} documentView
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who, err := caller(c)
		if err != nil {
			return err
		}
		doc, err := svc.Preview(c.UserContext(), who, c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(newDocumentView(*doc, true))
	}
}

// DownloadDocument streams the decoded bytes as an attachment.
//
// @Summary Download a document
// @Tags documents
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "document id"
// @Success 200 {file} file
// @Failure 404 {object} errorPayload
// @Router /documents/{id}/download [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who, err := caller(c)
		if err != nil {
			return err
		}
		dl, err := svc.Download(c.UserContext(), who, c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Attachment(dl.Name)
		c.Set(fiber.HeaderContentType, dl.MimeType)
		return c.Send(dl.Data)
	}
}

// RenameDocument changes a document's name.
//
// @Summary Rename a document
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "document id"
// @Param body body renameRequest true "new name"
// @Success 200 {object} documentView
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /documents/{id} [patch]
func RenameDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who, err := caller(c)
		if err != nil {
			return err
		}
		var req renameRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := svc.Rename(c.UserContext(), who, c.Params("id"), req.Name)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(newDocumentView(*doc, false))
	}
}

// DeleteDocument removes a document.
//
// @Summary Delete a document
// @Tags documents
// @Security BearerAuth
// @Param id path string true "document id"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who, err := caller(c)
		if err != nil {
			return err
		}
		if _, err := svc.Delete(c.UserContext(), who, c.Params("id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
