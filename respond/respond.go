package respond

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"smart-notes/apperr"
)

type Message struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Error writes err as {"message": ...}. Server errors are logged with their
// cause and answered with a generic message.
func Error(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindServer {
		log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("request failed")
	}
	JSON(w, e.Kind.Status(), Message{Message: e.Message})
}
