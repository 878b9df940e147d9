package customer

import (
	"github.com/healthmanager/healthmanager/internal/domain/healthproblem"
	"github.com/healthmanager/healthmanager/internal/platform/openapi"
)

// APIDoc describes the /customers routes for the OpenAPI document.
func APIDoc() openapi.Resource {
	sex := map[string]interface{}{
		"type": "string",
		"enum": []string{string(SexNotKnow), string(SexMale), string(SexFemale), string(SexNotApplicable)},
	}
	date := map[string]string{"type": "string", "format": "date"}
	name := map[string]interface{}{"type": "string", "minLength": NameMinLen, "maxLength": NameMaxLen}

	return openapi.Resource{
		Tag:  "Customer",
		Path: "/customers",
		Request: openapi.Object([]string{"full_name", "date_birth", "sex"}, map[string]interface{}{
			"full_name":  name,
			"date_birth": date,
			"sex":        sex,
		}),
		View: openapi.Object(nil, map[string]interface{}{
			"id":         map[string]string{"type": "string", "format": "uuid"},
			"full_name":  map[string]string{"type": "string"},
			"date_birth": date,
			"sex":        sex,
			"score":      map[string]interface{}{"type": "number", "minimum": 0, "maximum": 99.99},
			"health_problems": map[string]interface{}{
				"type":  "array",
				"items": healthproblem.APIDoc().View,
			},
		}),
		Ref: openapi.Object([]string{"id"}, map[string]interface{}{
			"id":        map[string]string{"type": "string", "format": "uuid"},
			"full_name": map[string]string{"type": "string"},
		}),
		ListParams: []map[string]interface{}{
			{"name": "full_name", "in": "query", "description": "Case-insensitive substring filter", "schema": map[string]string{"type": "string"}},
		},
	}
}
