package handlers

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/logging"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/repositories"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 10 << 20

// errInvalidBody marks a request body that is not valid JSON.
var errInvalidBody = errors.New("invalid request body")

// errorResponse maps err to a status code and client message.
func errorResponse(err error) (int, string) {
	var (
		notFound   *models.NotFoundError
		duplicate  *models.DuplicateKeyError
		validation *models.ValidationError
	)

	switch {
	case errors.Is(err, models.ErrInvalidID):
		return http.StatusNotFound, "Resource not found"
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.As(err, &duplicate):
		return http.StatusBadRequest, "A record with this " + duplicate.Field + " already exists"
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Error()
	case errors.Is(err, models.ErrAlreadyAssigned):
		return http.StatusBadRequest, "Collaborator is already on this project"
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, models.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, models.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, "Not authorized to access this route"
	case repositories.IsUnavailable(err), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Service temporarily unavailable"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// writeError logs err and writes the matching error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorResponse(err)

	entry := logging.Logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.Errorf("Event ID: REQUEST_FAILED, Description: %v", err)
	} else {
		entry.Warnf("Event ID: REQUEST_REJECTED, Description: %v", err)
	}

	utils.WriteError(w, status, message)
}

// decodeJSON decodes the request body into dst. An empty body leaves dst
// untouched. A malformed id anywhere in the body is models.ErrInvalidID.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var syntax *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var tooLarge *http.MaxBytesError
	var field *models.FieldError
	switch {
	case errors.Is(err, models.ErrInvalidID), isObjectIDError(err):
		return models.ErrInvalidID
	case errors.As(err, &field):
		return errInvalidBodyf("%s", field.Error())
	case errors.As(err, &syntax):
		return errInvalidBodyf("malformed JSON at position %d", syntax.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return errInvalidBodyf("malformed JSON")
	case errors.As(err, &typeErr):
		return errInvalidBodyf("%s has an invalid type", typeErr.Field)
	case errors.As(err, &tooLarge):
		return errInvalidBodyf("body must not exceed %d bytes", tooLarge.Limit)
	}
	logging.Logger.Debugf("Event ID: BODY_DECODE_FAILED, Description: %v", err)
	return errInvalidBodyf("body could not be decoded")
}

// isObjectIDError matches the errors primitive.ObjectID returns for
// embedded ids such as subtask and attachment _id.
func isObjectIDError(err error) bool {
	var invalidByte hex.InvalidByteError
	if errors.As(err, &invalidByte) || errors.Is(err, hex.ErrLength) {
		return true
	}
	return strings.Contains(err.Error(), "ObjectID")
}

func errInvalidBodyf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalidBody, fmt.Sprintf(format, args...))
}
