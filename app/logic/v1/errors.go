package v1

import (
	"database/sql"
	"net/http"

	"github.com/quka-ai/quka-iot/pkg/errors"
	"github.com/quka-ai/quka-iot/pkg/fields"
	"github.com/quka-ai/quka-iot/pkg/i18n"
)

// fieldsError maps field policy failures onto api errors.
func fieldsError(trace string, err error) error {
	switch {
	case errors.Is(err, fields.ErrFieldNotFound):
		return errors.New(trace, i18n.ERROR_FIELD_NOT_FOUND, err).Code(http.StatusNotFound)
	case errors.Is(err, fields.ErrInvalidName):
		return errors.New(trace, i18n.ERROR_FIELD_INVALID_NAME, err).Code(http.StatusBadRequest)
	case errors.Is(err, fields.ErrFieldExist):
		return errors.New(trace, i18n.ERROR_FIELD_EXIST, err).Code(http.StatusBadRequest)
	case errors.Is(err, fields.ErrEmptyFields):
		return errors.New(trace, i18n.ERROR_CHANNEL_FIELDS_REQUIRED, err).Code(http.StatusBadRequest)
	case errors.Is(err, fields.ErrNoValidFields):
		return errors.New(trace, i18n.ERROR_NO_VALID_FIELDS, err).Code(http.StatusBadRequest)
	case errors.Is(err, fields.ErrNotScalar):
		return errors.New(trace, i18n.ERROR_FIELD_NOT_SCALAR, err).Code(http.StatusBadRequest)
	}
	return errors.Trace(trace, err)
}

func channelStoreError(trace string, err error) error {
	if err == sql.ErrNoRows {
		return errors.New(trace, i18n.ERROR_CHANNEL_NOT_FOUND, nil).Code(http.StatusNotFound)
	}
	return errors.New(trace, i18n.ERROR_INTERNAL, err)
}
