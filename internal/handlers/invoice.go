package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ushuru-digital/app-tsp/internal/models"
	"github.com/ushuru-digital/app-tsp/internal/services"
	"go.opentelemetry.io/otel"
)

// CreateInvoice godoc
// @Summary Create an eTIMS invoice
// @Description Issues an invoice; line totals are recomputed server-side from taxable amount and quantity.
// @Tags invoicing
// @Accept json
// @Produce json
// @Param request body models.InvoiceRequest true "Invoice details"
// @Success 201 {object} models.Invoice
// @Failure 400 {object} ErrorResponse
// @Router /invoices [post]
func CreateInvoice(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "CreateInvoice")
	defer span.End()

	var req models.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if services.InvoiceServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "invoice service unavailable"})
		return
	}

	invoice, err := services.InvoiceServiceInstance.Create(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// ListInvoices godoc
// @Summary List invoices
// @Description Lists invoices issued by a phone number, newest first.
// @Tags invoicing
// @Produce json
// @Param msisdn query string true "Phone number"
// @Success 200 {array} models.Invoice
// @Failure 400 {object} ErrorResponse
// @Router /invoices [get]
func ListInvoices(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ListInvoices")
	defer span.End()

	msisdn := c.Query("msisdn")
	if msisdn == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "msisdn query parameter is required"})
		return
	}

	if services.InvoiceServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "invoice service unavailable"})
		return
	}

	invoices, err := services.InvoiceServiceInstance.List(ctx, msisdn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// CreateCreditNote godoc
// @Summary Create a credit note
// @Description Issues a credit note against an existing invoice; the credited total may not exceed the original.
// @Tags invoicing
// @Accept json
// @Produce json
// @Param request body models.CreditNoteRequest true "Credit note details"
// @Success 201 {object} models.CreditNote
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Original invoice not found"
// @Router /credit-notes [post]
func CreateCreditNote(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "CreateCreditNote")
	defer span.End()

	var req models.CreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if services.InvoiceServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "invoice service unavailable"})
		return
	}

	note, err := services.InvoiceServiceInstance.CreateCreditNote(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}
