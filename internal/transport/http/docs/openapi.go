// Package docs serves a hand-maintained OpenAPI 3 description of the HTTP API.
package docs

import (
	"encoding/json"
	"net/http"
)

type Document struct {
	OpenAPI    string                          `json:"openapi"`
	Info       Info                            `json:"info"`
	Paths      map[string]map[string]Operation `json:"paths"`
	Components Components                      `json:"components"`
}

type Info struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

type Operation struct {
	Summary     string                `json:"summary"`
	OperationID string                `json:"operationId"`
	Tags        []string              `json:"tags"`
	Security    []map[string][]string `json:"security,omitempty"`
	Parameters  []Parameter           `json:"parameters,omitempty"`
	Responses   map[string]Response   `json:"responses"`
}

type Parameter struct {
	Name     string            `json:"name"`
	In       string            `json:"in"`
	Required bool              `json:"required"`
	Schema   map[string]string `json:"schema"`
}

type Response struct {
	Description string `json:"description"`
}

type Components struct {
	SecuritySchemes map[string]map[string]string `json:"securitySchemes"`
}

var bearer = []map[string][]string{{"BearerAuth": {}}}

func pathParam(name string) Parameter {
	return Parameter{Name: name, In: "path", Required: true, Schema: map[string]string{"type": "string"}}
}

func queryParam(name string, required bool) Parameter {
	return Parameter{Name: name, In: "query", Required: required, Schema: map[string]string{"type": "string"}}
}

func responses(codes ...string) map[string]Response {
	desc := map[string]string{
		"200": "OK", "201": "Created", "400": "Bad request",
		"401": "Missing or invalid credentials", "403": "Forbidden",
		"404": "Not found", "409": "Conflict", "422": "Validation failed",
		"502": "Email dispatch failed", "503": "Dependency unavailable",
	}
	out := make(map[string]Response, len(codes))
	for _, c := range codes {
		out[c] = Response{Description: desc[c]}
	}
	return out
}

// Spec returns the API description.
func Spec() Document {
	id := []Parameter{pathParam("id")}
	return Document{
		OpenAPI: "3.0.3",
		Info: Info{
			Title:       "User Service API",
			Description: "User registration, login, profile management and password reset",
			Version:     "1.0.0",
		},
		Paths: map[string]map[string]Operation{
			"/healthz": {"get": {Summary: "Liveness", OperationID: "healthz", Tags: []string{"Health"}, Responses: responses("200")}},
			"/readyz":  {"get": {Summary: "Readiness", OperationID: "readyz", Tags: []string{"Health"}, Responses: responses("200", "503")}},

			"/api/register": {"post": {Summary: "Register a user", OperationID: "register", Tags: []string{"Auth"},
				Responses: responses("201", "400", "409", "422")}},
			"/api/login": {"post": {Summary: "Log in", OperationID: "login", Tags: []string{"Auth"},
				Responses: responses("200", "400", "401", "422")}},
			"/api/request-password-reset": {"post": {Summary: "Email a password reset link", OperationID: "requestPasswordReset", Tags: []string{"Auth"},
				Responses: responses("200", "400", "404", "422", "502")}},
			"/api/reset-password": {"put": {Summary: "Redeem a password reset token", OperationID: "resetPassword", Tags: []string{"Auth"},
				Parameters: []Parameter{queryParam("token", true)},
				Responses:  responses("200", "400", "401", "422")}},

			"/api/getusers": {"get": {Summary: "List users", OperationID: "getUsers", Tags: []string{"Users"}, Security: bearer,
				Parameters: []Parameter{queryParam("search", false), queryParam("startDate", false), queryParam("endDate", false)},
				Responses:  responses("200", "401")}},
			"/api/{id}": {"get": {Summary: "Get a user", OperationID: "getUser", Tags: []string{"Users"}, Security: bearer,
				Parameters: id, Responses: responses("200", "400", "401", "404")}},
			"/api/update/{id}": {"put": {Summary: "Update a profile", OperationID: "updateUser", Tags: []string{"Users"}, Security: bearer,
				Parameters: id, Responses: responses("200", "400", "401", "403", "404", "422")}},
			"/api/delete/{id}": {"delete": {Summary: "Delete a user", OperationID: "deleteUser", Tags: []string{"Users"}, Security: bearer,
				Parameters: id, Responses: responses("200", "400", "401", "404")}},
			"/api/change-password/{id}": {"put": {Summary: "Change password", OperationID: "changePassword", Tags: []string{"Users"}, Security: bearer,
				Parameters: id, Responses: responses("200", "400", "401", "404", "422")}},
		},
		Components: Components{
			SecuritySchemes: map[string]map[string]string{
				"BearerAuth": {"type": "http", "scheme": "bearer", "bearerFormat": "JWT"},
			},
		},
	}
}

// Handler serves Spec as JSON. The document is encoded once.
func Handler() http.Handler {
	body, err := json.Marshal(Spec())
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			http.Error(w, "openapi unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})
}
