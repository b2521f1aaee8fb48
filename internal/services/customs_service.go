package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ushuru-digital/app-tsp/internal/config"
	"github.com/ushuru-digital/app-tsp/internal/gateway"
	"github.com/ushuru-digital/app-tsp/internal/logging"
	"github.com/ushuru-digital/app-tsp/internal/models"
	"github.com/ushuru-digital/app-tsp/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Global customs service instance
var CustomsServiceInstance *CustomsService

// CustomsLookupGateway is the customs reference API surface the service uses
type CustomsLookupGateway interface {
	HSCategories(ctx context.Context, hsCode string) ([]models.HSCategory, error)
	CashValue(ctx context.Context, currency string, amount decimal.Decimal) (*models.CashValue, error)
}

// CustomsService records traveller declarations support data and proxies
// HS-code and currency lookups.
type CustomsService struct {
	countries *mongo.Collection
	items     *mongo.Collection
	gateway   CustomsLookupGateway
	logger    *logging.SafeLogger
}

// NewCustomsService creates a new customs service
func NewCustomsService(database *mongo.Database, countriesCollection, itemsCollection string, gw CustomsLookupGateway, logger *logging.SafeLogger) *CustomsService {
	return &CustomsService{
		countries: database.Collection(countriesCollection),
		items:     database.Collection(itemsCollection),
		gateway:   gw,
		logger:    logger,
	}
}

// InitCustomsService initializes the global customs service instance
func InitCustomsService(gw CustomsLookupGateway) {
	CustomsServiceInstance = NewCustomsService(
		config.MongoDB,
		config.AppConfig.VisitedCountriesCollection,
		config.AppConfig.SavedItemCollection,
		gw,
		logging.Logger.Named("customs_service"),
	)
}

// AddCountries merges countries into the traveller's visited set. The
// merge is a set union done with $addToSet so repeated submissions never
// produce duplicates.
func (s *CustomsService) AddCountries(ctx context.Context, req models.CountriesRequest) (*models.VisitedCountries, error) {
	msisdn, err := utils.NormalizeMSISDN(req.Msisdn)
	if err != nil {
		return nil, models.ErrInvalidMSISDN
	}

	countries := make([]string, 0, len(req.Countries))
	for _, c := range req.Countries {
		c = strings.TrimSpace(c)
		if c != "" {
			countries = append(countries, c)
		}
	}
	if len(countries) == 0 {
		return nil, models.Validationf("at least one country is required")
	}

	update := bson.M{
		"$addToSet":    bson.M{"countries": bson.M{"$each": countries}},
		"$set":         bson.M{"updated_at": time.Now()},
		"$setOnInsert": bson.M{"msisdn": msisdn},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var record models.VisitedCountries
	if err := s.countries.FindOneAndUpdate(ctx, bson.M{"msisdn": msisdn}, update, opts).Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to update visited countries: %w", err)
	}

	s.logger.Debug("visited countries updated",
		zap.Int("added", len(countries)),
		zap.Int("total", len(record.Countries)))
	return &record, nil
}

// GetCountries returns the traveller's visited-country set
func (s *CustomsService) GetCountries(ctx context.Context, msisdn string) (*models.VisitedCountries, error) {
	normalized, err := utils.NormalizeMSISDN(msisdn)
	if err != nil {
		return nil, models.ErrInvalidMSISDN
	}

	var record models.VisitedCountries
	err = s.countries.FindOne(ctx, bson.M{"msisdn": normalized}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return &models.VisitedCountries{Msisdn: normalized, Countries: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load visited countries: %w", err)
	}
	return &record, nil
}

// SaveItem saves a customs item for a later declaration. If an HS code is
// given the category is resolved via the customs reference API; a lookup
// failure does not block the save.
func (s *CustomsService) SaveItem(ctx context.Context, req models.SavedItemRequest) (*models.SavedItem, error) {
	msisdn, err := utils.NormalizeMSISDN(req.Msisdn)
	if err != nil {
		return nil, models.ErrInvalidMSISDN
	}
	if req.Value.IsNegative() {
		return nil, models.ErrInvalidAmount
	}

	item := &models.SavedItem{
		ID:        uuid.NewString(),
		Msisdn:    msisdn,
		ItemName:  req.ItemName,
		HSCode:    req.HSCode,
		Value:     req.Value,
		Currency:  strings.ToUpper(req.Currency),
		CreatedAt: time.Now(),
	}

	if req.HSCode != "" && s.gateway != nil {
		categories, err := s.gateway.HSCategories(ctx, req.HSCode)
		if err != nil {
			s.logger.Warn("HS category lookup failed", zap.String("hs_code", req.HSCode), zap.Error(err))
		} else if len(categories) > 0 {
			item.Category = categories[0].Description
		}
	}

	if _, err := s.items.InsertOne(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to store item: %w", err)
	}
	return item, nil
}

// ListItems returns the traveller's saved items, newest first
func (s *CustomsService) ListItems(ctx context.Context, msisdn string) ([]models.SavedItem, error) {
	normalized, err := utils.NormalizeMSISDN(msisdn)
	if err != nil {
		return nil, models.ErrInvalidMSISDN
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.items.Find(ctx, bson.M{"msisdn": normalized}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.SavedItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}

// HSCategories proxies an HS-code category lookup
func (s *CustomsService) HSCategories(ctx context.Context, hsCode string) ([]models.HSCategory, error) {
	if strings.TrimSpace(hsCode) == "" {
		return nil, models.Validationf("hs code is required")
	}
	return s.gateway.HSCategories(ctx, hsCode)
}

// CashValue proxies a currency conversion lookup
func (s *CustomsService) CashValue(ctx context.Context, currency string, amount decimal.Decimal) (*models.CashValue, error) {
	if strings.TrimSpace(currency) == "" {
		return nil, models.Validationf("currency is required")
	}
	if amount.IsNegative() {
		return nil, models.ErrInvalidAmount
	}
	return s.gateway.CashValue(ctx, currency, amount)
}

var _ CustomsLookupGateway = (*gateway.CustomsClient)(nil)
