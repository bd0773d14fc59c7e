package controllers

import (
	"net/http"

	"github.com/velumart/velumart-backend/api/responses"
	"github.com/velumart/velumart-backend/api/validators"
	"github.com/velumart/velumart-backend/internal/deliveries"
	"github.com/velumart/velumart-backend/pkg/config"
	"github.com/velumart/velumart-backend/pkg/logger"
	"github.com/velumart/velumart-backend/pkg/storage"
)

const deliveryImageField = "delivery_image"

// CreateDelivery assigns a driver a new delivery from a JSON body.
func CreateDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input deliveries.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		d, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "Delivery created successfully", deliveries.Format(*d))
	}
}

// ListDeliveries returns every delivery, newest first.
func ListDeliveries(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deliveries.FormatAll(rows))
	}
}

// GetDelivery returns one delivery by its id.
func GetDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		d, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deliveries.Format(*d))
	}
}

// GetDeliveryByReference resolves a delivery by order id first, then by
// procurement id.
func GetDeliveryByReference(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refID, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		d, err := svc.GetByReference(r.Context(), refID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deliveries.Format(*d))
	}
}

// UpdateDelivery applies a partial multipart update: proof image, status,
// schedule and charges.
func UpdateDelivery(svc deliveries.Service, store *storage.Store, uploads config.UploadsConfig, logg *logger.Logger) http.HandlerFunc {
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

		input := deliveries.UpdateInput{
			Status:   validators.FormStringPtr(r, "status"),
			Date:     validators.FormStringPtr(r, "date"),
			TimeSlot: validators.FormStringPtr(r, "time_slot"),
		}
		if input.Charges, err = validators.FormDecimalPtr(r, "charges"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Image, err = saveUpload(r, store, uploads.DeliveryImageDir, deliveryImageField); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := validators.ValidateStruct(&input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		d, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Delivery updated successfully", deliveries.Format(*d))
	}
}

// MarkDelivered records the proof image and cascades the parent order or
// procurement. The path id is the order id when status is Delivered,
// otherwise the procurement id.
func MarkDelivered(svc deliveries.Service, store *storage.Store, uploads config.UploadsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refID, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := validators.ParseMultipart(r, uploads.MaxUploadMB); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		image, err := saveUpload(r, store, uploads.DeliveryImageDir, deliveryImageField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		imagePath := ""
		if image != nil {
			imagePath = *image
		}

		d, err := svc.MarkDelivered(r.Context(), refID, validators.FormString(r, "status"), imagePath)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Delivery marked as delivered", deliveries.Format(*d))
	}
}

// MarkCompleted closes the delivery leg with a proof image, without
// touching the parent workflow.
func MarkCompleted(svc deliveries.Service, store *storage.Store, uploads config.UploadsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refID, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := validators.ParseMultipart(r, uploads.MaxUploadMB); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		image, err := saveUpload(r, store, uploads.DeliveryImageDir, deliveryImageField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		imagePath := ""
		if image != nil {
			imagePath = *image
		}

		d, err := svc.MarkCompleted(r.Context(), refID, imagePath)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Delivery marked as completed", deliveries.Format(*d))
	}
}

// MarkPaid settles a batch of deliveries and reports how many rows flipped.
func MarkPaid(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input deliveries.MarkPaidInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.MarkPaid(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Deliveries marked as paid", map[string]any{"updatedCount": count})
	}
}

// DeleteDelivery removes a delivery.
func DeleteDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Delivery deleted successfully", nil)
	}
}
