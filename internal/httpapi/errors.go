package httpapi

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/saw4405/splat-replay/internal/apperr"
)

// mapError converts an apperr.Error (or any plain error) into the
// huma.StatusError matching apperr.Kind.HTTPStatus, so every handler in
// this package can return application errors unchanged and let one place
// decide the wire status code.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	kind := apperr.KindOf(err)
	return huma.NewError(kind.HTTPStatus(), err.Error(), err)
}
