package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/jsivak/soleplug-backend/api/responses"
	"github.com/jsivak/soleplug-backend/api/validators"
	feesvc "github.com/jsivak/soleplug-backend/internal/fees"
	pkgerrors "github.com/jsivak/soleplug-backend/pkg/errors"
	"github.com/jsivak/soleplug-backend/pkg/logger"
)

// AdminFeesGet returns the fee schedule currently applied to payouts.
func AdminFeesGet(svc feesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fees service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Current(r.Context()))
	}
}

type updateFeesRequest struct {
	FeePercent decimal.Decimal `json:"fee_percent"`
	FeeFixed   decimal.Decimal `json:"fee_fixed"`
}

// AdminFeesUpdate replaces the stored fee schedule.
func AdminFeesUpdate(svc feesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fees service unavailable"))
			return
		}

		var payload updateFeesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		schedule, err := svc.Update(r.Context(), payload.FeePercent, payload.FeeFixed)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, schedule)
	}
}

// AdminFeesClearCache drops the cached schedule so the next payout read hits
// the store.
func AdminFeesClearCache(svc feesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fees service unavailable"))
			return
		}
		svc.ClearCache()
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}
