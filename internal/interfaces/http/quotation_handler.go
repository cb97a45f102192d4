package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chabs-app/chabs-api/internal/application/dto"
	"github.com/chabs-app/chabs-api/internal/application/usecase"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
)

// quotationView cotización con el nombre del cliente resuelto.
type quotationView struct {
	*entity.Quotation
	CustomerName string `json:"customer_name"`
}

// QuotationHandler maneja las peticiones HTTP para Quotation (protegido).
type QuotationHandler struct {
	uc        *usecase.QuotationUseCase
	customers *usecase.CustomerUseCase
	pdf       *usecase.QuotationPDFUseCase
}

// NewQuotationHandler construye el handler.
func NewQuotationHandler(uc *usecase.QuotationUseCase, customers *usecase.CustomerUseCase, pdf *usecase.QuotationPDFUseCase) *QuotationHandler {
	return &QuotationHandler{uc: uc, customers: customers, pdf: pdf}
}

func (h *QuotationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateQuotationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.view(out))
}

func (h *QuotationHandler) List(c *fiber.Ctx) error {
	quotations, err := h.uc.List()
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]quotationView, 0, len(quotations))
	for _, q := range quotations {
		out = append(out, h.view(q))
	}
	return c.JSON(out)
}

func (h *QuotationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cotización no encontrada"})
	}
	return c.JSON(h.view(out))
}

func (h *QuotationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateQuotationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Params("id"), in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(h.view(out))
}

// ChangeStatus aplica una transición del flujo draft -> sent -> accepted|rejected.
func (h *QuotationHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.ChangeStatus(c.Params("id"), in.Status)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(h.view(out))
}

// DownloadPDF descarga la representación gráfica de la cotización.
func (h *QuotationHandler) DownloadPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.pdf.DownloadQuotationPDF(c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

func (h *QuotationHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Params("id")); err != nil {
		return respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// view resuelve el nombre del cliente; huérfano -> marcador.
func (h *QuotationHandler) view(q *entity.Quotation) quotationView {
	name := deletedCustomerName
	if customer, err := h.customers.GetByID(q.CustomerID); err == nil && customer != nil {
		name = customer.Name
	}
	return quotationView{Quotation: q, CustomerName: name}
}
