package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jsivak/soleplug-backend/api/middleware"
	"github.com/jsivak/soleplug-backend/api/responses"
	"github.com/jsivak/soleplug-backend/api/validators"
	salesvc "github.com/jsivak/soleplug-backend/internal/sales"
	"github.com/jsivak/soleplug-backend/pkg/enums"
	pkgerrors "github.com/jsivak/soleplug-backend/pkg/errors"
	"github.com/jsivak/soleplug-backend/pkg/logger"
	"github.com/jsivak/soleplug-backend/pkg/pagination"
)

type convertListingRequest struct {
	ExternalID string `json:"external_id" validate:"required"`
}

// AdminConvertListing accepts a listing on behalf of the marketplace and
// turns it into a sale.
func AdminConvertListing(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := parseIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload convertListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.ConvertListingToSale(r.Context(), salesvc.ConvertParams{
			ListingID:  listingID,
			ExternalID: payload.ExternalID,
			Actor:      actorFromContext(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

type transitionSaleRequest struct {
	Status     *string `json:"status,omitempty"`
	ExternalID *string `json:"external_id,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// AdminSaleTransition updates a sale's status, external reference or notes.
func AdminSaleTransition(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saleID, err := parseIDParam(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transitionSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := salesvc.TransitionParams{
			SaleID:     saleID,
			ExternalID: payload.ExternalID,
			Notes:      payload.Notes,
			Actor:      actorFromContext(r),
		}
		if payload.Status != nil {
			status, err := enums.ParseSaleStatus(*payload.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown sale status"))
				return
			}
			params.NewStatus = &status
		}

		sale, err := svc.Transition(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// SaleDetail returns one sale. Sellers can only read their own.
func SaleDetail(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saleID, err := parseIDParam(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Get(r.Context(), saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if middleware.RoleFromContext(r.Context()) != string(enums.MemberRoleAdmin) {
			userID, err := requireUserID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if sale.UserID != userID {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "not your sale"))
				return
			}
		}
		responses.WriteSuccess(w, sale)
	}
}

// SaleHistory returns a sale's status audit trail, oldest first.
func SaleHistory(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saleID, err := parseIDParam(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Get(r.Context(), saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if middleware.RoleFromContext(r.Context()) != string(enums.MemberRoleAdmin) {
			userID, err := requireUserID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if sale.UserID != userID {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "not your sale"))
				return
			}
		}

		history, err := svc.History(r.Context(), saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

// MySales returns the authenticated seller's sales.
func MySales(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := saleListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListMine(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminSales returns every sale, optionally filtered by status.
func AdminSales(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := saleListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListAll(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func saleListParams(r *http.Request) (salesvc.ListParams, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return salesvc.ListParams{}, err
	}
	params := salesvc.ListParams{
		Limit:  limit,
		Cursor: validators.QueryString(r, "cursor"),
	}
	if raw := validators.QueryString(r, "status"); raw != "" {
		status, err := enums.ParseSaleStatus(raw)
		if err != nil {
			return salesvc.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown sale status")
		}
		params.Status = &status
	}
	return params, nil
}

func actorFromContext(r *http.Request) salesvc.Actor {
	actor := salesvc.Actor{}
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			actor.UserID = id
		}
	}
	actor.Role = enums.MemberRole(middleware.RoleFromContext(r.Context()))
	return actor
}
