package healthproblem

import "github.com/healthmanager/healthmanager/internal/platform/openapi"

// APIDoc describes the /health-problems routes for the OpenAPI document.
func APIDoc() openapi.Resource {
	severity := map[string]interface{}{"type": "integer", "enum": []int{int(SeverityLow), int(SeverityHigh)}}
	id := map[string]string{"type": "string", "format": "uuid"}

	return openapi.Resource{
		Tag:  "Health Problem",
		Path: "/health-problems",
		Request: openapi.Object([]string{"problem_name", "severity"}, map[string]interface{}{
			"customer_id":  map[string]string{"type": "string", "format": "uuid", "description": "Required on create, ignored on update"},
			"problem_name": map[string]interface{}{"type": "string", "minLength": NameMinLen, "maxLength": NameMaxLen},
			"severity":     severity,
		}),
		View: openapi.Object(nil, map[string]interface{}{
			"id":           id,
			"customer_id":  id,
			"problem_name": map[string]string{"type": "string"},
			"severity":     severity,
		}),
		Ref: openapi.Object([]string{"id"}, map[string]interface{}{
			"id":           id,
			"problem_name": map[string]string{"type": "string"},
		}),
		Paths: map[string]interface{}{
			"/customers/{id}/health-problems": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List the health problems a customer owns",
					"operationId": "listHealthProblemsByCustomer",
					"tags":        []string{"Health Problem"},
					"parameters": []map[string]interface{}{
						{"name": "id", "in": "path", "required": true, "schema": id},
					},
					"responses": map[string]interface{}{
						"200": openapi.EnvelopeResponse("Owned problems", map[string]interface{}{
							"type":  "array",
							"items": map[string]string{"$ref": "#/components/schemas/HealthProblem"},
						}),
						"404": openapi.ErrorResponse("Customer not found"),
					},
				},
			},
		},
	}
}
