package controllers

import (
	"net/http"

	"github.com/velumart/velumart-backend/api/responses"
	"github.com/velumart/velumart-backend/api/validators"
	"github.com/velumart/velumart-backend/internal/procurement"
	"github.com/velumart/velumart-backend/pkg/config"
	"github.com/velumart/velumart-backend/pkg/logger"
	"github.com/velumart/velumart-backend/pkg/storage"
)

const procurementImageField = "procurement_product_image"

// CreateProcurement registers a procurement request from a multipart form,
// storing the optional product image before the service runs.
func CreateProcurement(svc procurement.Service, store *storage.Store, uploads config.UploadsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := validators.ParseMultipart(r, uploads.MaxUploadMB); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := procurement.CreateInput{
			Type:                 validators.FormString(r, "type"),
			VendorName:           validators.FormStringPtr(r, "vendor_name"),
			Items:                validators.FormString(r, "items"),
			Category:             validators.FormString(r, "category"),
			OrderDate:            validators.FormString(r, "order_date"),
			ExpectedDeliveryDate: validators.FormString(r, "expected_delivery_date"),
			Notes:                validators.FormString(r, "notes"),
		}

		var err error
		if input.VendorID, err = validators.FormInt64Ptr(r, "vendor_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Unit, err = validators.FormDecimal(r, "unit"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Price, err = validators.FormDecimal(r, "price"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.CGST, err = validators.FormDecimal(r, "cgst"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.SGST, err = validators.FormDecimal(r, "sgst"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.DeliveryFee, err = validators.FormDecimal(r, "delivery_fee"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if input.ProductImage, err = saveUpload(r, store, uploads.ProcurementImageDir, procurementImageField); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := validators.ValidateStruct(&input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		p, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "Procurement created successfully", p)
	}
}

// UpdateProcurement applies a partial multipart update to a procurement.
func UpdateProcurement(svc procurement.Service, store *storage.Store, uploads config.UploadsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := validators.ParseMultipart(r, uploads.MaxUploadMB); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := procurement.UpdateInput{
			Status:               validators.FormStringPtr(r, "status"),
			VendorName:           validators.FormStringPtr(r, "vendor_name"),
			Items:                validators.FormStringPtr(r, "items"),
			Category:             validators.FormStringPtr(r, "category"),
			OrderDate:            validators.FormStringPtr(r, "order_date"),
			ExpectedDeliveryDate: validators.FormStringPtr(r, "expected_delivery_date"),
			ActualDeliveryDate:   validators.FormStringPtr(r, "actual_delivery_date"),
			Notes:                validators.FormStringPtr(r, "notes"),
			NegotiationType:      validators.FormStringPtr(r, "negotiation_type"),
		}

		if input.VendorID, err = validators.FormInt64Ptr(r, "vendor_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.DriverID, err = validators.FormInt64Ptr(r, "driver_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Unit, err = validators.FormDecimalPtr(r, "unit"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Price, err = validators.FormDecimalPtr(r, "price"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.CGST, err = validators.FormDecimalPtr(r, "cgst"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.SGST, err = validators.FormDecimalPtr(r, "sgst"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.DeliveryFee, err = validators.FormDecimalPtr(r, "delivery_fee"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if input.ProductImage, err = saveUpload(r, store, uploads.ProcurementImageDir, procurementImageField); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := validators.ValidateStruct(&input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		p, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Procurement updated successfully", p)
	}
}

// ListProcurements returns every procurement, newest first.
func ListProcurements(svc procurement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// GetProcurement returns one procurement with vendor and driver summaries.
func GetProcurement(svc procurement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		p, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, p)
	}
}
