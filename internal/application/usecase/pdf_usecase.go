package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/domain/repository"
)

// QuotationLinePDF línea de cotización resuelta para la representación gráfica.
type QuotationLinePDF struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// QuotationPDFGenerator puerto hacia el generador de PDF.
type QuotationPDFGenerator interface {
	GenerateQuotationPDF(q *entity.Quotation, customer *entity.Customer, lines []QuotationLinePDF) ([]byte, error)
}

// QuotationPDFUseCase genera la representación gráfica (PDF) de una cotización.
type QuotationPDFUseCase struct {
	quotations repository.Repository[*entity.Quotation]
	customers  repository.Repository[*entity.Customer]
	products   repository.Repository[*entity.Product]
	generator  QuotationPDFGenerator
}

// NewQuotationPDFUseCase construye el caso de uso inyectando sus dependencias.
func NewQuotationPDFUseCase(
	quotations repository.Repository[*entity.Quotation],
	customers repository.Repository[*entity.Customer],
	products repository.Repository[*entity.Product],
	generator QuotationPDFGenerator,
) *QuotationPDFUseCase {
	return &QuotationPDFUseCase{
		quotations: quotations,
		customers:  customers,
		products:   products,
		generator:  generator,
	}
}

// DownloadQuotationPDF arma los datos de la cotización y genera el PDF.
// Referencias huérfanas (cliente o producto eliminado) se resuelven con un
// marcador, nunca con error.
func (uc *QuotationPDFUseCase) DownloadQuotationPDF(id string) (pdfBytes []byte, filename string, err error) {
	quotation, err := uc.quotations.GetByID(id)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener cotización: %w", err)
	}
	if quotation == nil {
		return nil, "", domain.ErrNotFound
	}

	customer, err := uc.customers.GetByID(quotation.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener cliente: %w", err)
	}
	if customer == nil {
		customer = &entity.Customer{ID: quotation.CustomerID, Name: "Cliente eliminado"}
	}

	lines := make([]QuotationLinePDF, 0, len(quotation.Items))
	for _, li := range quotation.Items {
		description := "Producto eliminado"
		product, err := uc.products.GetByID(li.ProductID)
		if err != nil {
			return nil, "", fmt.Errorf("pdf: obtener producto: %w", err)
		}
		if product != nil {
			description = product.Name
		}
		lines = append(lines, QuotationLinePDF{
			Description: description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Subtotal:    li.Subtotal(),
		})
	}

	pdfBytes, err = uc.generator.GenerateQuotationPDF(quotation, customer, lines)
	if err != nil {
		return nil, "", err
	}
	filename = fmt.Sprintf("cotizacion_%s.pdf", quotation.QuoteNumber)
	return pdfBytes, filename, nil
}
