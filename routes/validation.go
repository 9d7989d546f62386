package routes

import (
	"reflect"
	"strconv"
	"strings"

	"storefront/apperrors"
	"storefront/pagination"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("notblank", validators.NotBlank)
	// report json field names, not Go ones
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// normalizer is implemented by requests that tidy their fields before
// they are validated.
type normalizer interface {
	normalize()
}

// parseBody decodes the JSON body into dst, normalizes and validates it.
func (h *Handler) parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.New(fiber.StatusBadRequest, "Failed to parse request body", err)
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	if err := h.validate.Struct(dst); err != nil {
		return apperrors.FromValidator(err)
	}
	return nil
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.Field(name, capitalize(name)+" must be a valid UUID")
	}
	return id, nil
}

func parseOptionalUUID(field, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.Field(field, capitalize(field)+" must be a valid UUID")
	}
	return &id, nil
}

// parsePageQuery reads page, limit, sort and sortBy. An absent sortBy
// falls back to defaultSortBy.
func parsePageQuery(c *fiber.Ctx, columns pagination.Columns, defaultSortBy string) (pagination.Request, error) {
	q := pagination.Query{
		Sort:   pagination.Direction(c.Query("sort")),
		SortBy: c.Query("sortBy", defaultSortBy),
	}

	fields := map[string]string{}
	for key, dst := range map[string]**int{"page": &q.Page, "limit": &q.Limit} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields[key] = capitalize(key) + " must be a number"
			continue
		}
		*dst = &n
	}
	if len(fields) > 0 {
		return pagination.Request{}, apperrors.Validation(fields)
	}

	return pagination.Normalize(q, columns)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
