package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/ushuru-digital/app-tsp/internal/models"
	"github.com/ushuru-digital/app-tsp/internal/services"
	"go.opentelemetry.io/otel"
)

// AddCountries godoc
// @Summary Record visited countries
// @Description Merges countries into the traveller's visited set; repeated submissions never create duplicates.
// @Tags customs
// @Accept json
// @Produce json
// @Param request body models.CountriesRequest true "Countries"
// @Success 200 {object} models.VisitedCountries
// @Failure 400 {object} ErrorResponse
// @Router /customs/countries [post]
func AddCountries(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "AddCountries")
	defer span.End()

	var req models.CountriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if services.CustomsServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "customs service unavailable"})
		return
	}

	record, err := services.CustomsServiceInstance.AddCountries(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetCountries godoc
// @Summary Visited countries
// @Description Returns the traveller's visited-country set.
// @Tags customs
// @Produce json
// @Param msisdn path string true "Phone number"
// @Success 200 {object} models.VisitedCountries
// @Failure 400 {object} ErrorResponse
// @Router /customs/countries/{msisdn} [get]
func GetCountries(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "GetCountries")
	defer span.End()

	if services.CustomsServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "customs service unavailable"})
		return
	}

	record, err := services.CustomsServiceInstance.GetCountries(ctx, c.Param("msisdn"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// SaveItem godoc
// @Summary Save a customs item
// @Description Saves an item for a later declaration, resolving its HS category when a code is given.
// @Tags customs
// @Accept json
// @Produce json
// @Param request body models.SavedItemRequest true "Item details"
// @Success 201 {object} models.SavedItem
// @Failure 400 {object} ErrorResponse
// @Router /customs/items [post]
func SaveItem(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "SaveItem")
	defer span.End()

	var req models.SavedItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if services.CustomsServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "customs service unavailable"})
		return
	}

	item, err := services.CustomsServiceInstance.SaveItem(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// ListItems godoc
// @Summary Saved customs items
// @Description Lists the traveller's saved items, newest first.
// @Tags customs
// @Produce json
// @Param msisdn path string true "Phone number"
// @Success 200 {array} models.SavedItem
// @Failure 400 {object} ErrorResponse
// @Router /customs/items/{msisdn} [get]
func ListItems(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ListItems")
	defer span.End()

	if services.CustomsServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "customs service unavailable"})
		return
	}

	items, err := services.CustomsServiceInstance.ListItems(ctx, c.Param("msisdn"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetHSCategories godoc
// @Summary HS-code category lookup
// @Description Proxies a tariff category lookup for an HS code prefix.
// @Tags customs
// @Produce json
// @Param hs query string true "HS code or prefix"
// @Success 200 {array} models.HSCategory
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /customs/categories [get]
func GetHSCategories(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "GetHSCategories")
	defer span.End()

	hsCode := c.Query("hs")
	if hsCode == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "hs query parameter is required"})
		return
	}

	if services.CustomsServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "customs service unavailable"})
		return
	}

	categories, err := services.CustomsServiceInstance.HSCategories(ctx, hsCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCashValue godoc
// @Summary Currency conversion
// @Description Converts a foreign-currency amount to local currency at the customs reference rate.
// @Tags customs
// @Produce json
// @Param currency query string true "ISO currency code"
// @Param amount query string true "Amount in the foreign currency"
// @Success 200 {object} models.CashValue
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /customs/cash-value [get]
func GetCashValue(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "GetCashValue")
	defer span.End()

	currency := c.Query("currency")
	if currency == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "currency query parameter is required"})
		return
	}
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "amount must be a valid number"})
		return
	}

	if services.CustomsServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "customs service unavailable"})
		return
	}

	value, err := services.CustomsServiceInstance.CashValue(ctx, currency, amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, value)
}
