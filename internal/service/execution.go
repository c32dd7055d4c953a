package service

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/antonio-alexander/go-employee-directory/internal"
	"github.com/antonio-alexander/go-employee-directory/internal/data"
)

func idFromPath(pathVariables map[string]string) string {
	return pathVariables[data.PathId]
}

func getCorrelationId(request *http.Request) string {
	if correlationId := request.Header.Get("Correlation-Id"); correlationId != "" {
		return correlationId
	}
	return internal.GenerateId()
}

// statusFromError maps the tagged user-facing failures to 400 and
// everything else to 500.
func statusFromError(err error) int {
	switch data.KindOf(err) {
	case data.KindFileFormat, data.KindInvalidField,
		data.KindDuplicateData, data.KindBadInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func handleResponse(writer http.ResponseWriter, err error, statusCode int, items ...interface{}) {
	var bytes []byte

	if err == nil {
		switch {
		default:
			bytes, err = json.Marshal(items[0])
		case len(items) <= 0 || items[0] == nil:
			writer.WriteHeader(http.StatusNoContent)
			return
		}
	}
	if err != nil {
		var e struct {
			Error string `json:"error"`
		}

		writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		writer.WriteHeader(statusFromError(err))
		e.Error = err.Error()
		bytes, err = json.Marshal(&e)
		if err != nil {
			fmt.Printf("error handling response: %s\n", err)
			return
		}
		if _, err := writer.Write(bytes); err != nil {
			fmt.Printf("error handling response: %s\n", err)
		}
		return
	}
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	if _, err := writer.Write(bytes); err != nil {
		fmt.Printf("error handling response: %s\n", err)
	}
}
