package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"

	"github.com/pkg/errors"
)

func getCorrelationId(request *http.Request) string {
	if correlationId := request.Header.Get(internal.HeaderCorrelationId); correlationId != "" {
		return correlationId
	}
	return internal.GenerateId()
}

func idFromPath(pathVariables map[string]string) (int64, error) {
	id, err := strconv.ParseInt(pathVariables[data.PathId], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(data.ErrInvalidRequest, "invalid employee id: %q",
			pathVariables[data.PathId])
	}
	return id, nil
}

func decodeBody(request *http.Request, v any) error {
	body, err := io.ReadAll(request.Body)
	defer request.Body.Close()
	if err != nil {
		return errors.Wrap(data.ErrInvalidRequest, err.Error())
	}
	//KIM: json decodes null into the zero value without complaint
	if string(bytes.TrimSpace(body)) == "null" {
		return errors.Wrap(data.ErrInvalidRequest, "request body is null")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(data.ErrInvalidRequest, err.Error())
	}
	return nil
}

// errorResponse maps an error to its status code and the message that's safe
// to hand to the caller.
func errorResponse(err error) (int, string) {
	switch {
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	case errors.Is(err, data.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, data.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, data.ErrMutationDisabled):
		return http.StatusForbidden, data.ErrMutationDisabled.Error()
	case errors.Is(err, data.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, data.ErrStorageUnavailable.Error()
	}
}

func handleResponse(writer http.ResponseWriter, err error, items ...any) {
	var bytes []byte

	if err != nil {
		statusCode, message := errorResponse(err)
		if bytes, err = json.Marshal(&data.Error{Error: message}); err != nil {
			fmt.Printf("error handling response: %s\n", err)
			return
		}
		writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		writer.WriteHeader(statusCode)
		if _, err := writer.Write(bytes); err != nil {
			fmt.Printf("error handling response: %s\n", err)
		}
		return
	}
	if len(items) == 0 || items[0] == nil {
		writer.WriteHeader(http.StatusNoContent)
		return
	}
	switch item := items[0].(type) {
	default:
		if bytes, err = json.Marshal(item); err != nil {
			handleResponse(writer, err)
			return
		}
		writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	case string:
		bytes = []byte(item)
		writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	if _, err := writer.Write(bytes); err != nil {
		fmt.Printf("error handling response: %s\n", err)
	}
}

// envBool sets v when key is present and not empty
func envBool(envs map[string]string, key string, v *bool) error {
	s := envs[key]
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return errors.Wrapf(err, "%s: %q", key, s)
	}
	*v = b
	return nil
}

// envList sets v to the comma separated values of key when not empty
func envList(envs map[string]string, key string, v *[]string) {
	if s := envs[key]; s != "" {
		*v = strings.Split(s, ",")
	}
}
