package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jsivak/soleplug-backend/api/responses"
	"github.com/jsivak/soleplug-backend/api/validators"
	pricingsvc "github.com/jsivak/soleplug-backend/internal/pricing"
	pkgerrors "github.com/jsivak/soleplug-backend/pkg/errors"
	"github.com/jsivak/soleplug-backend/pkg/logger"
)

type priceCheckRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Size      string          `json:"size" validate:"required"`
	Price     decimal.Decimal `json:"price"`
}

// PriceCheck classifies an asking price against the lowest live market price
// for the same product and size.
func PriceCheck(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var payload priceCheckRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		result, err := svc.CheckPrice(r.Context(), pricingsvc.CheckParams{
			ProductID: productID,
			Size:      payload.Size,
			Price:     payload.Price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
