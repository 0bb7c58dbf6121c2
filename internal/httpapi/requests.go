package httpapi

import (
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/nikolayk812/spicecart/internal/domain"
	"github.com/shopspring/decimal"
	"io"
	"net/http"
	"reflect"
	"strings"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

type productRequest struct {
	ID            int64           `json:"id" validate:"required,gt=0"`
	Name          string          `json:"name" validate:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" validate:"gte=0"`
	ImageURL      string          `json:"image_url" validate:"omitempty,url"`
	ImageURLs     []string        `json:"image_urls" validate:"omitempty,dive,url"`
	Weight        string          `json:"weight"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	CategoryID    int64           `json:"category_id"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     string          `json:"created_at"`
}

type addItemRequest struct {
	Product  productRequest `json:"product"`
	Quantity int            `json:"quantity" validate:"omitempty,min=1,max=99"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

func (r productRequest) toDomain() domain.Product {
	return domain.Product{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		ImageURL:      r.ImageURL,
		ImageURLs:     r.ImageURLs,
		Weight:        r.Weight,
		StockQuantity: r.StockQuantity,
		CategoryID:    r.CategoryID,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
	}
}

// requestError carries field-level validation messages back to the client.
type requestError struct {
	message string
	details map[string]string
}

func (e *requestError) Error() string {
	return e.message
}

func decodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return &requestError{message: "invalid request body", details: map[string]string{"body": err.Error()}}
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *requestError {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &requestError{message: "validation failed", details: map[string]string{"body": err.Error()}}
	}
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldPath(fieldErr)] = validationMessage(fieldErr)
	}
	return &requestError{message: "validation failed", details: details}
}

// fieldPath drops the root struct name, e.g. "product.id".
func fieldPath(fe validator.FieldError) string {
	parts := strings.SplitN(fe.Namespace(), ".", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "url":
		return "must be a valid url"
	}
	return "is invalid"
}
