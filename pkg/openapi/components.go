package openapi

import (
	"maps"
	"net/http"
)

// Shared error responses keyed by status code.
var errorResponses = map[int]string{
	http.StatusBadRequest:          "BadRequest",
	http.StatusNotFound:            "NotFound",
	http.StatusConflict:            "Conflict",
	http.StatusPreconditionFailed:  "PreconditionFailed",
	http.StatusBadGateway:          "BadGateway",
	http.StatusInternalServerError: "InternalError",
}

// NewComponents creates Components holding the Error schema and one
// response per shared error status.
func NewComponents() *Components {
	c := &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type:     "object",
				Required: []string{"error"},
				Properties: map[string]*Schema{
					"error": {Type: "string", Description: "Error message"},
				},
			},
		},
		Responses: make(map[string]*Response, len(errorResponses)),
	}
	for status, name := range errorResponses {
		c.Responses[name] = ResponseJSON(http.StatusText(status), "Error")
	}
	return c
}

// AddSchemas merges schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// ErrorResponses returns component references for the given statuses,
// ready to merge into an Operation's Responses.
func ErrorResponses(statuses ...int) map[int]*Response {
	out := make(map[int]*Response, len(statuses))
	for _, s := range statuses {
		if name, ok := errorResponses[s]; ok {
			out[s] = ResponseRef(name)
		}
	}
	return out
}
