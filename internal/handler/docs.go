package handler

import (
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"
)

const (
	apiTitle       = "Mergington High School API"
	apiDescription = "API for viewing and signing up for extracurricular activities at Mergington High School"
	apiVersion     = "0.1.0"
)

type openAPIDocument struct {
	OpenAPI    string                     `json:"openapi" yaml:"openapi"`
	Info       openAPIInfo                `json:"info" yaml:"info"`
	Paths      map[string]openAPIPathItem `json:"paths" yaml:"paths"`
	Components map[string]map[string]any  `json:"components" yaml:"components"`
}

type openAPIInfo struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Version     string `json:"version" yaml:"version"`
}

type openAPIPathItem map[string]openAPIOperation

type openAPIOperation struct {
	Summary     string                     `json:"summary" yaml:"summary"`
	OperationID string                     `json:"operationId" yaml:"operationId"`
	Parameters  []openAPIParameter         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Responses   map[string]openAPIResponse `json:"responses" yaml:"responses"`
}

type openAPIParameter struct {
	Name     string         `json:"name" yaml:"name"`
	In       string         `json:"in" yaml:"in"`
	Required bool           `json:"required" yaml:"required"`
	Schema   map[string]any `json:"schema" yaml:"schema"`
}

type openAPIResponse struct {
	Description string         `json:"description" yaml:"description"`
	Content     map[string]any `json:"content,omitempty" yaml:"content,omitempty"`
}

func jsonBody(ref string) map[string]any {
	return map[string]any{
		"application/json": map[string]any{
			"schema": map[string]any{"$ref": "#/components/schemas/" + ref},
		},
	}
}

func stringParam(name, in string) openAPIParameter {
	return openAPIParameter{Name: name, In: in, Required: true, Schema: map[string]any{"type": "string"}}
}

// apiDocument describes the activities API as an OpenAPI 3 document.
func apiDocument() openAPIDocument {
	message := openAPIResponse{Description: "Successful Response", Content: jsonBody("Message")}
	errResp := func(desc string) openAPIResponse {
		return openAPIResponse{Description: desc, Content: jsonBody("Error")}
	}

	return openAPIDocument{
		OpenAPI: "3.1.0",
		Info: openAPIInfo{
			Title:       apiTitle,
			Description: apiDescription,
			Version:     apiVersion,
		},
		Paths: map[string]openAPIPathItem{
			"/activities": {
				"get": {
					Summary:     "Get Activities",
					OperationID: "get_activities_activities_get",
					Responses: map[string]openAPIResponse{
						"200": {Description: "Successful Response", Content: jsonBody("Activities")},
					},
				},
			},
			"/activities/{activity_name}/signup": {
				"post": {
					Summary:     "Signup For Activity",
					OperationID: "signup_for_activity_activities__activity_name__signup_post",
					Parameters: []openAPIParameter{
						stringParam("activity_name", "path"),
						stringParam("email", "query"),
					},
					Responses: map[string]openAPIResponse{
						"200": message,
						"400": errResp("Student already signed up or activity full"),
						"404": errResp("Activity not found"),
						"422": errResp("Validation Error"),
					},
				},
			},
			"/activities/{activity_name}/participants/{email}": {
				"delete": {
					Summary:     "Unregister From Activity",
					OperationID: "unregister_from_activity_activities__activity_name__participants__email__delete",
					Parameters: []openAPIParameter{
						stringParam("activity_name", "path"),
						stringParam("email", "path"),
					},
					Responses: map[string]openAPIResponse{
						"200": message,
						"400": errResp("Student not registered"),
						"404": errResp("Activity not found"),
					},
				},
			},
		},
		Components: map[string]map[string]any{
			"schemas": {
				"Activity": map[string]any{
					"type":     "object",
					"required": []string{"description", "schedule", "max_participants", "participants"},
					"properties": map[string]any{
						"description":      map[string]any{"type": "string"},
						"schedule":         map[string]any{"type": "string"},
						"max_participants": map[string]any{"type": "integer", "minimum": 1},
						"participants":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
				},
				"Activities": map[string]any{
					"type":                 "object",
					"additionalProperties": map[string]any{"$ref": "#/components/schemas/Activity"},
				},
				"Message": map[string]any{
					"type":       "object",
					"properties": map[string]any{"message": map[string]any{"type": "string"}},
				},
				"Error": map[string]any{
					"type":       "object",
					"properties": map[string]any{"detail": map[string]any{"type": "string"}},
				},
			},
		},
	}
}

// OpenAPIJSON handles GET /openapi.json
func OpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apiDocument())
}

// OpenAPIYAML handles GET /openapi.yaml
func OpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	out, err := yaml.Marshal(apiDocument())
	if err != nil {
		writeError(w, http.StatusInternalServerError, detailInternal)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

const swaggerPage = `<!DOCTYPE html>
<html>
<head>
<title>%[1]s - Swagger UI</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({url: "/openapi.json", dom_id: "#swagger-ui"});
</script>
</body>
</html>
`

const redocPage = `<!DOCTYPE html>
<html>
<head>
<title>%[1]s - ReDoc</title>
</head>
<body>
<redoc spec-url="/openapi.json"></redoc>
<script src="https://cdn.jsdelivr.net/npm/redoc@2/bundles/redoc.standalone.js"></script>
</body>
</html>
`

func htmlPage(tmpl string) http.HandlerFunc {
	body := fmt.Sprintf(tmpl, apiTitle)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}

// SwaggerUI handles GET /docs
var SwaggerUI = htmlPage(swaggerPage)

// ReDoc handles GET /redoc
var ReDoc = htmlPage(redocPage)
