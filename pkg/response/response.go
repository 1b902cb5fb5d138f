package response

import "trainingdesk/internal/apperr"

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"` // "success" or "error"
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Kind       apperr.Kind `json:"kind,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError builds the error response for a service failure along with its
// HTTP status. Internal causes never reach the body.
func FromError(err error) (int, Response) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	res := Error(status, apperr.Message(err))
	res.Kind = kind
	return status, res
}
