package validation

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
)

// RequiredID rejects the nil UUID. validation.Required cannot, since a UUID is a
// fixed-size array whose SQL value is never empty.
var RequiredID = validation.By(func(value interface{}) error {
	id, ok := value.(uuid.UUID)
	if !ok {
		return validation.NewError("validation_id_type", "must be a UUID")
	}
	if id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
})
