package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ushuru-digital/app-tsp/internal/config"
	"github.com/ushuru-digital/app-tsp/internal/logging"
	"github.com/ushuru-digital/app-tsp/internal/models"
	"github.com/ushuru-digital/app-tsp/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Global invoice service instance
var InvoiceServiceInstance *InvoiceService

// InvoiceService issues eTIMS invoices and credit notes. Line totals are
// recomputed server-side; client-supplied totals are ignored.
type InvoiceService struct {
	invoices    *mongo.Collection
	creditNotes *mongo.Collection
	logger      *logging.SafeLogger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(database *mongo.Database, invoiceCollection, creditNoteCollection string, logger *logging.SafeLogger) *InvoiceService {
	return &InvoiceService{
		invoices:    database.Collection(invoiceCollection),
		creditNotes: database.Collection(creditNoteCollection),
		logger:      logger,
	}
}

// InitInvoiceService initializes the global invoice service instance
func InitInvoiceService() {
	InvoiceServiceInstance = NewInvoiceService(
		config.MongoDB,
		config.AppConfig.InvoiceCollection,
		config.AppConfig.CreditNoteCollection,
		logging.Logger.Named("invoice_service"),
	)
}

// Create issues a new invoice
func (s *InvoiceService) Create(ctx context.Context, req models.InvoiceRequest) (*models.Invoice, error) {
	msisdn, err := utils.NormalizeMSISDN(req.Msisdn)
	if err != nil {
		return nil, models.ErrInvalidMSISDN
	}
	if !utils.ValidatePIN(req.Pin) {
		return nil, models.ErrInvalidPIN
	}
	if len(req.Items) == 0 {
		return nil, models.Validationf("invoice requires at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, models.Validationf("item %q has a non-positive quantity", item.ItemName)
		}
		if item.TaxableAmount.IsNegative() {
			return nil, models.Validationf("item %q has a negative amount", item.ItemName)
		}
	}

	items, total := models.NormalizeItems(req.Items)
	invoice := &models.Invoice{
		ID:           uuid.NewString(),
		Msisdn:       msisdn,
		Pin:          req.Pin,
		CustomerName: req.CustomerName,
		CustomerPin:  req.CustomerPin,
		Items:        items,
		TotalAmount:  total,
		CreatedAt:    time.Now(),
	}

	if _, err := s.invoices.InsertOne(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to store invoice: %w", err)
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", invoice.ID),
		zap.Int("items", len(items)),
		zap.String("total", total.StringFixed(2)))
	return invoice, nil
}

// List returns invoices issued by a phone number, newest first
func (s *InvoiceService) List(ctx context.Context, msisdn string) ([]models.Invoice, error) {
	normalized, err := utils.NormalizeMSISDN(msisdn)
	if err != nil {
		return nil, models.ErrInvalidMSISDN
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.invoices.Find(ctx, bson.M{"msisdn": normalized}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer cursor.Close(ctx)

	invoices := []models.Invoice{}
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("failed to decode invoices: %w", err)
	}
	return invoices, nil
}

// CreateCreditNote issues a credit note against an existing invoice. The
// original invoice must exist and belong to the same PIN.
func (s *InvoiceService) CreateCreditNote(ctx context.Context, req models.CreditNoteRequest) (*models.CreditNote, error) {
	msisdn, err := utils.NormalizeMSISDN(req.Msisdn)
	if err != nil {
		return nil, models.ErrInvalidMSISDN
	}
	if !utils.ValidatePIN(req.Pin) {
		return nil, models.ErrInvalidPIN
	}
	if len(req.Items) == 0 {
		return nil, models.Validationf("credit note requires at least one item")
	}

	var original models.Invoice
	err = s.invoices.FindOne(ctx, bson.M{"_id": req.OriginalInvoiceID, "pin": req.Pin}).Decode(&original)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load original invoice: %w", err)
	}

	items, total := models.NormalizeItems(req.Items)
	if total.GreaterThan(original.TotalAmount) {
		return nil, models.Validationf("credit note total %s exceeds original invoice total %s",
			total.StringFixed(2), original.TotalAmount.StringFixed(2))
	}

	note := &models.CreditNote{
		ID:                uuid.NewString(),
		Msisdn:            msisdn,
		Pin:               req.Pin,
		OriginalInvoiceID: original.ID,
		Reason:            req.Reason,
		Items:             items,
		TotalAmount:       total,
		CreatedAt:         time.Now(),
	}

	if _, err := s.creditNotes.InsertOne(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to store credit note: %w", err)
	}

	s.logger.Info("credit note created",
		zap.String("credit_note_id", note.ID),
		zap.String("original_invoice_id", original.ID))
	return note, nil
}
