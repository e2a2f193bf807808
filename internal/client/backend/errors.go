package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is returned for every failed backend call. Message is the text the
// service produced and is meant to be shown to the user as-is.
type Error struct {
	// Status is the HTTP status, or 0 when the request never got a response.
	Status int
	// Code is the service's machine-readable error code, if any.
	Code string
	// Message is the human-readable reason.
	Message string
	// Err is the underlying transport or decoding error, if any.
	Err error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// errorBody covers the error shapes of the auth service and the REST table API.
type errorBody struct {
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	ErrorDescription string          `json:"error_description"`
	Error            string          `json:"error"`
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
}

func parseError(resp *http.Response) *Error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	e := &Error{Status: resp.StatusCode}

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		for _, m := range []string{body.Msg, body.Message, body.ErrorDescription, body.Error} {
			if m != "" {
				e.Message = m
				break
			}
		}
		e.Code = body.ErrorCode
		if e.Code == "" && len(body.Code) > 0 {
			e.Code = strings.Trim(string(body.Code), `"`)
		}
	}
	if e.Message == "" {
		if text := strings.TrimSpace(string(data)); text != "" {
			e.Message = text
		} else {
			e.Message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
	}
	return e
}

func transportError(err error) *Error {
	return &Error{Message: err.Error(), Err: err}
}
