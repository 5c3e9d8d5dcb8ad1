package handler

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pod-grading-api/internal/service"
	"github.com/noah-isme/pod-grading-api/internal/utils"
)

const maxImportBytes = 2 << 20

// TransferHandler wires CSV import, CSV export and JSON backup routes.
type TransferHandler struct {
	transfer service.TransferService
	backup   service.BackupService
	logger   zerolog.Logger
}

// NewTransferHandler constructs the handler.
func NewTransferHandler(transfer service.TransferService, backup service.BackupService, logger zerolog.Logger) *TransferHandler {
	return &TransferHandler{
		transfer: transfer,
		backup:   backup,
		logger:   logger.With().Str("component", "transfer_handler").Logger(),
	}
}

// Register binds the import and export routes under the API root.
func (h *TransferHandler) Register(router fiber.Router, guards Guards) {
	router.Post("/import/pods", guards.throttled(guards.teacher(h.importPods))...)
	router.Get("/export/pods.csv", h.exportPods)
	router.Get("/export/grades.csv", h.exportGrades)
	router.Get("/export/backup.json", h.exportBackup)
	router.Post("/export/backup", guards.teacher(h.uploadBackup))
}

// importPods accepts either a multipart "file" field or a raw CSV body.
func (h *TransferHandler) importPods(c *fiber.Ctx) error {
	data, err := h.readUpload(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if len(data) > maxImportBytes {
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "upload too large")
	}

	summary, err := h.transfer.ImportPods(requestContext(c), data)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "pod assignments imported", summary)
}

func (h *TransferHandler) readUpload(c *fiber.Ctx) ([]byte, error) {
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		return append([]byte(nil), c.Body()...), nil
	}

	header, err := c.FormFile("file")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, maxImportBytes+1))
}

func (h *TransferHandler) exportPods(c *fiber.Ctx) error {
	data, err := h.transfer.ExportPods()
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return sendAttachment(c, "pods.csv", "text/csv; charset=utf-8", data)
}

func (h *TransferHandler) exportGrades(c *fiber.Ctx) error {
	period, err := parseOptionalPeriod(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	data, err := h.transfer.ExportGrades(period)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return sendAttachment(c, "grades.csv", "text/csv; charset=utf-8", data)
}

func (h *TransferHandler) exportBackup(c *fiber.Ctx) error {
	data, err := h.backup.Export()
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return sendAttachment(c, "backup.json", fiber.MIMEApplicationJSONCharsetUTF8, data)
}

func (h *TransferHandler) uploadBackup(c *fiber.Ctx) error {
	result, err := h.backup.Upload(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "backup uploaded", result)
}

func sendAttachment(c *fiber.Ctx, filename, contentType string, data []byte) error {
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, contentType)
	return c.Status(fiber.StatusOK).Send(data)
}
