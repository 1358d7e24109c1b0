package httputil

import (
	"net/http"

	"github.com/lesechos/accounts/internal/logging"
	"github.com/lesechos/accounts/internal/service"
)

var errorTitles = map[service.Kind]string{
	service.KindBadRequest:   "Bad Request",
	service.KindUnauthorized: "Unauthorized",
	service.KindForbidden:    "Forbidden",
	service.KindNotFound:     "Resource Not Found",
}

// WriteServiceError maps err onto a JSON:API error response. Internal
// errors are logged with their cause and answered with a generic message.
func WriteServiceError(w http.ResponseWriter, r *http.Request, log *logging.Logger, err error) {
	se := service.AsError(err)
	if se.Kind == service.KindInternal {
		log.ErrorContext(r.Context(), "request failed",
			logging.Method(r.Method),
			logging.Path(r.URL.Path),
			logging.Error(se.Err),
		)
		WriteJSONAPIInternalError(w)
		return
	}
	WriteJSONAPIError(w, se.Kind.HTTPStatus(), se.Kind.String(), errorTitles[se.Kind], se.Message)
}
