package noteservice

import (
	"fmt"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

var (
	knownField = validation.In(toAny(models.FieldNames())...).Error("is not a note category")
	knownMedia = validation.In(toAny(models.MediaTypes)...).Error("is not a known media type")
)

// validateFields checks that every key names a category and that the media
// type, when given, is one of the enumerated values.
func validateFields(fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if err := validation.Validate(k, validation.Required, knownField); err != nil {
			return fmt.Errorf("%w: field %q %v", apperr.ErrInvalidNote, k, err)
		}
	}
	if media, ok := fields[models.FieldMediaType]; ok {
		return validateMedia(media)
	}
	return nil
}

func validateMedia(media string) error {
	if err := validation.Validate(media, knownMedia); err != nil {
		return fmt.Errorf("%w: media_type %q %v", apperr.ErrInvalidNote, media, err)
	}
	return nil
}
