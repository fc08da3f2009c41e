package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	b, err := json.Marshal(body)
	if err != nil {
		log.WithError(err).Error("failed to encode response")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = io.WriteString(w, string(b)); err != nil {
		log.WithField("err", err).Error("write response status")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"method":    r.Method,
			"url":       r.URL.Path,
			"requestId": requestIDFrom(r.Context()),
		}).Error("request failed")
		message = "internal server error"
	}
	writeMessage(w, status, message)
}

func statusFor(err error) int {
	var validationErr *model.ValidationError
	var stockErr *model.StockError
	switch {
	case errors.As(err, &validationErr), errors.As(err, &stockErr):
		return http.StatusBadRequest
	case oneOf(err,
		model.ErrProductNotFound, model.ErrOrderNotFound, model.ErrCartItemNotFound,
		model.ErrWishlistItemNotFound, model.ErrUserNotFound, model.ErrCategoryNotFound,
		model.ErrDealNotFound, model.ErrNoDealsInCategory, model.ErrSlideNotFound,
		model.ErrBannerNotFound, model.ErrReelNotFound, model.ErrCampaignNotFound,
		model.ErrReviewNotFound):
		return http.StatusNotFound
	case oneOf(err,
		model.ErrEmailTaken, model.ErrProductCodeTaken, model.ErrCategoryNameTaken,
		model.ErrDealCodeTaken, model.ErrActiveDiscountCodeExists, model.ErrReviewAlreadyExists,
		model.ErrCampaignAlreadySent, model.ErrCategoryHasChildren):
		return http.StatusConflict
	case oneOf(err, model.ErrInvalidCredentials, model.ErrUnauthorized):
		return http.StatusUnauthorized
	case oneOf(err, model.ErrForbidden, model.ErrNotAdmin):
		return http.StatusForbidden
	case errors.Is(err, model.ErrDealExpired):
		return http.StatusGone
	case oneOf(err,
		model.ErrInsufficientStock, model.ErrSizeRequired, model.ErrInvalidSize,
		model.ErrOrderIsEmpty, model.ErrInvalidOrderStatus, model.ErrOwnerRequired,
		model.ErrStockLimitReached, model.ErrDiscountCodeNotFound, model.ErrDiscountCodeUsed,
		model.ErrDiscountCodeExpired, model.ErrEventTypeRequired, model.ErrCategoryNotTopLevel,
		model.ErrInvalidSubcategories, model.ErrInvalidProductImages, model.ErrBannerMediaRequired,
		model.ErrNoRecipients, model.ErrInvalidOTP, model.ErrInvalidResetToken,
		model.ErrPendingUserNotFound, service.ErrPasswordTooShort):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func oneOf(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// decodeJSON reads the body into dst and runs struct validation.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewValidationError("request body is required")
		}
		return model.NewValidationError("invalid request body: %s", err.Error())
	}
	return validateStruct(dst)
}

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return model.NewValidationError("%s", err.Error())
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(fe))
	}
	return model.NewValidationError("%s", strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func parseObjectID(raw, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, model.NewValidationError("invalid %s", name)
	}
	return id, nil
}

func parseObjectIDs(raw []string, name string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := parseObjectID(s, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func hexIDs(ids []primitive.ObjectID) []string {
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		result = append(result, id.Hex())
	}
	return result
}

func optionalHex(id primitive.ObjectID) string {
	if id.IsZero() {
		return ""
	}
	return id.Hex()
}
