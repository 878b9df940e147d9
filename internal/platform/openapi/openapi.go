package openapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Resource describes one CRUD collection mounted under /api.
type Resource struct {
	Tag        string
	Path       string
	Request    map[string]interface{}
	View       map[string]interface{}
	Ref        map[string]interface{}
	ListParams []map[string]interface{}
	// Paths holds extra path items keyed by path relative to /api.
	Paths map[string]interface{}
}

// Generator builds an OpenAPI 3.0 document for the registered resources.
type Generator struct {
	title     string
	version   string
	baseURL   string
	resources []Resource
}

func NewGenerator(title, version, baseURL string, resources ...Resource) *Generator {
	return &Generator{title: title, version: version, baseURL: baseURL, resources: resources}
}

// GenerateSpec produces the OpenAPI 3.0 document as a map.
func (g *Generator) GenerateSpec() map[string]interface{} {
	paths := make(map[string]interface{})
	schemas := map[string]interface{}{
		"Error": errorSchema(),
	}

	for _, res := range g.resources {
		name := schemaName(res.Tag)
		schemas[name+"Request"] = res.Request
		schemas[name] = res.View
		schemas[name+"Ref"] = res.Ref
		schemas[name+"Page"] = pageSchema("#/components/schemas/" + name)

		idParam := []map[string]interface{}{
			{"name": "id", "in": "path", "required": true, "schema": map[string]string{"type": "string", "format": "uuid"}},
		}
		listParams := append([]map[string]interface{}{
			{"name": "page", "in": "query", "schema": map[string]interface{}{"type": "integer", "minimum": 0, "default": 0}},
			{"name": "size", "in": "query", "schema": map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 100, "default": 10}},
		}, res.ListParams...)

		paths["/api"+res.Path] = map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "List " + res.Tag,
				"operationId": "list" + name,
				"tags":        []string{res.Tag},
				"parameters":  listParams,
				"responses": map[string]interface{}{
					"200": jsonResponse("Page of results", "#/components/schemas/"+name+"Page"),
				},
			},
			"post": map[string]interface{}{
				"summary":     "Create " + res.Tag,
				"operationId": "create" + name,
				"tags":        []string{res.Tag},
				"requestBody": requestBody("#/components/schemas/" + name + "Request"),
				"responses": map[string]interface{}{
					"201": envelopeResponse("Created", "#/components/schemas/"+name+"Ref"),
					"400": errorResponse("Invalid input"),
					"404": errorResponse("Referenced entity not found"),
					"409": errorResponse("Conflict"),
				},
			},
		}
		paths["/api"+res.Path+"/{id}"] = map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "Read " + res.Tag,
				"operationId": "read" + name,
				"tags":        []string{res.Tag},
				"parameters":  idParam,
				"responses": map[string]interface{}{
					"200": envelopeResponse("Found", "#/components/schemas/"+name),
					"404": errorResponse("Not found"),
				},
			},
			"put": map[string]interface{}{
				"summary":     "Update " + res.Tag,
				"operationId": "update" + name,
				"tags":        []string{res.Tag},
				"parameters":  idParam,
				"requestBody": requestBody("#/components/schemas/" + name + "Request"),
				"responses": map[string]interface{}{
					"200": envelopeResponse("Updated", "#/components/schemas/"+name+"Ref"),
					"400": errorResponse("Invalid input"),
					"404": errorResponse("Not found"),
					"409": errorResponse("Conflict"),
				},
			},
			"delete": map[string]interface{}{
				"summary":     "Delete " + res.Tag,
				"operationId": "delete" + name,
				"tags":        []string{res.Tag},
				"parameters":  idParam,
				"responses": map[string]interface{}{
					"200": envelopeResponse("Deleted", "#/components/schemas/"+name+"Ref"),
					"404": errorResponse("Not found"),
				},
			},
		}
		for path, item := range res.Paths {
			paths["/api"+path] = item
		}
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":   g.title,
			"version": g.version,
		},
		"servers": []map[string]string{
			{"url": g.baseURL},
		},
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": schemas,
		},
	}
}

func schemaName(tag string) string {
	return strings.ReplaceAll(tag, " ", "")
}

func requestBody(schemaRef string) map[string]interface{} {
	return map[string]interface{}{
		"required": true,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]interface{}{"$ref": schemaRef},
			},
		},
	}
}

func jsonResponse(description, schemaRef string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]interface{}{"$ref": schemaRef},
			},
		},
	}
}

// envelopeResponse wraps content in the {message, content} envelope.
func envelopeResponse(description, schemaRef string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"message": map[string]string{"type": "string"},
						"content": map[string]string{"$ref": schemaRef},
					},
				},
			},
		},
	}
}

// EnvelopeResponse is exported for resources that describe extra paths.
func EnvelopeResponse(description string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"content": schema,
					},
				},
			},
		},
	}
}

// ErrorResponse describes a response carrying the error body.
func ErrorResponse(description string) map[string]interface{} {
	return errorResponse(description)
}

func errorResponse(description string) map[string]interface{} {
	return jsonResponse(description, "#/components/schemas/Error")
}

func errorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"timestamp":    map[string]string{"type": "string", "format": "date-time"},
			"status":       map[string]string{"type": "integer"},
			"error":        map[string]string{"type": "string"},
			"message":      map[string]string{"type": "string"},
			"request_path": map[string]string{"type": "string"},
		},
	}
}

func pageSchema(itemRef string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"content":        map[string]interface{}{"type": "array", "items": map[string]string{"$ref": itemRef}},
			"page":           map[string]string{"type": "integer"},
			"size":           map[string]string{"type": "integer"},
			"total_elements": map[string]string{"type": "integer"},
			"total_pages":    map[string]string{"type": "integer"},
			"first":          map[string]string{"type": "boolean"},
			"last":           map[string]string{"type": "boolean"},
			"empty":          map[string]string{"type": "boolean"},
		},
	}
}

// Object is a shorthand for an object schema.
func Object(required []string, props map[string]interface{}) map[string]interface{} {
	s := map[string]interface{}{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// ── Swagger UI ──────────────────────────────────────────────────────────

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Health Manager API - Swagger UI</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" >
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "/api/openapi.json",
      dom_id: '#swagger-ui',
      deepLinking: true,
      presets: [SwaggerUIBundle.presets.apis],
      layout: "BaseLayout"
    })
  </script>
</body>
</html>`

// docsCSP replaces the API-wide policy on the docs page, which loads its
// assets from unpkg.
const docsCSP = "default-src 'none'; script-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"style-src 'self' 'unsafe-inline' https://unpkg.com; img-src 'self' data: https://unpkg.com; " +
	"connect-src 'self'; frame-ancestors 'none'"

// RegisterRoutes registers the OpenAPI endpoints.
func (g *Generator) RegisterRoutes(apiGroup *echo.Group) {
	spec := g.GenerateSpec()
	apiGroup.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, spec)
	})
	apiGroup.GET("/docs", func(c echo.Context) error {
		c.Response().Header().Set("Content-Security-Policy", docsCSP)
		return c.HTML(http.StatusOK, swaggerUIHTML)
	})
}
