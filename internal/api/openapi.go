package api

import (
	"net/http"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/version"
)

// handleOpenAPISpec returns the OpenAPI specification
func (s *Server) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	spec := GenerateOpenAPISpec()
	WriteJSON(w, spec, http.StatusOK)
}

// GenerateOpenAPISpec generates the OpenAPI specification for the API
func GenerateOpenAPISpec() map[string]interface{} {
	return map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "modeldocs HTTP API",
			"version":     version.Version,
			"description": "Browse a harmonized LinkML data model: classes, slots, enums, types and study variables",
		},
		"servers": []map[string]interface{}{
			{
				"url":         "http://localhost:8377",
				"description": "Local development server",
			},
		},
		"paths": map[string]interface{}{
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Simple liveness check for load balancers",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Server is healthy",
						},
					},
				},
			},
			"/ready": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Readiness check",
					"description": "Checks that the database answers and a model is loaded or loadable",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Server is ready",
						},
						"503": map[string]interface{}{
							"description": "Server is not ready",
						},
					},
				},
			},
			"/status": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Model status",
					"description": "Reports the loaded model, element counts and index storage",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Status report",
						},
					},
				},
			},
			"/schema/tree": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Class inheritance tree",
					"description": "Returns the class forest, or the subtree under one class",
					"parameters": []map[string]interface{}{
						{
							"name":        "root",
							"in":          "query",
							"description": "Class name to root the tree at",
							"schema": map[string]interface{}{
								"type": "string",
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Inheritance tree",
						},
						"404": map[string]interface{}{
							"description": "Root class not found",
						},
					},
				},
			},
			"/schema/flat": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Flattened hierarchy",
					"description": "Returns the class hierarchy as a pre-order list with depths",
					"parameters": []map[string]interface{}{
						{
							"name":        "root",
							"in":          "query",
							"description": "Class name to start from",
							"schema": map[string]interface{}{
								"type": "string",
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Flattened rows",
						},
						"404": map[string]interface{}{
							"description": "Root class not found",
						},
					},
				},
			},
			"/elements": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List elements",
					"description": "Lists elements of one kind, or all kinds",
					"parameters": []map[string]interface{}{
						{
							"name":        "kind",
							"in":          "query",
							"description": "Element kind: classes, slots, enums, types or variables",
							"schema": map[string]interface{}{
								"type": "string",
							},
						},
						{
							"name":        "limit",
							"in":          "query",
							"description": "Maximum number of rows",
							"schema": map[string]interface{}{
								"type": "integer",
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Element rows",
						},
						"400": map[string]interface{}{
							"description": "Unknown element kind",
						},
					},
				},
			},
			"/element/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Element detail",
					"description": "Resolves a name or kind:id reference and returns the detail view",
					"parameters": []map[string]interface{}{
						{
							"name":        "id",
							"in":          "path",
							"required":    true,
							"description": "Element reference, e.g. Specimen or enum:SpecimenTypeEnum",
							"schema": map[string]interface{}{
								"type": "string",
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Element detail",
						},
						"404": map[string]interface{}{
							"description": "Element not found",
						},
					},
				},
			},
			"/usage/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Element usage",
					"description": "Lists every place an element is referenced",
					"parameters": []map[string]interface{}{
						{
							"name":        "id",
							"in":          "path",
							"required":    true,
							"description": "Element reference",
							"schema": map[string]interface{}{
								"type": "string",
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Usage list",
						},
						"404": map[string]interface{}{
							"description": "Element not found",
						},
					},
				},
			},
			"/search": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Search elements",
					"description": "Searches element names and descriptions",
					"parameters": []map[string]interface{}{
						{
							"name":        "q",
							"in":          "query",
							"required":    true,
							"description": "Search query",
							"schema": map[string]interface{}{
								"type": "string",
							},
						},
						{
							"name":        "kinds",
							"in":          "query",
							"description": "Comma-separated list of element kinds",
							"schema": map[string]interface{}{
								"type": "string",
							},
						},
						{
							"name":        "limit",
							"in":          "query",
							"description": "Maximum number of hits",
							"schema": map[string]interface{}{
								"type": "integer",
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Ranked hits",
						},
						"400": map[string]interface{}{
							"description": "Missing query or unknown kind",
						},
					},
				},
			},
			"/variables": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Harmonized variables",
					"description": "Lists study variables, optionally those mapped to one class",
					"parameters": []map[string]interface{}{
						{
							"name":        "class",
							"in":          "query",
							"description": "Class name to filter by",
							"schema": map[string]interface{}{
								"type": "string",
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Variable rows",
						},
						"404": map[string]interface{}{
							"description": "Class not found",
						},
					},
				},
			},
			"/report": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Data-quality report",
					"description": "Returns structural findings from model validation",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Findings and counts",
						},
					},
				},
			},
			"/reload": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Reload the model",
					"description": "Rebuilds the model from source files, bypassing the snapshot tier. Requires a bearer token.",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Model reloaded",
						},
						"401": map[string]interface{}{
							"description": "Missing or invalid token",
						},
						"403": map[string]interface{}{
							"description": "No token has been issued",
						},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Exposes request, model and search metrics in Prometheus format",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Metrics in text exposition format",
						},
					},
				},
			},
		},
	}
}
