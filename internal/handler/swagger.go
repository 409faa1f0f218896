package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/finwise-app/finwise-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

// openAPI3Spec represents an OpenAPI 3.0 spec structure
type openAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []openAPIServer        `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

type openAPIServer struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// rewriteRefs recursively rewrites $ref from #/definitions/ to
// #/components/schemas/ so the Swagger 2.0 doc swag generates can be served
// as OpenAPI 3.0
func rewriteRefs(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if key == "$ref" {
				if ref, ok := value.(string); ok {
					result[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
					continue
				}
			}
			result[key] = rewriteRefs(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = rewriteRefs(item)
		}
		return result
	default:
		return data
	}
}

// ServeOpenAPISpec serves the generated API spec converted to OpenAPI 3.0
func ServeOpenAPISpec(c echo.Context) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to read swagger doc"})
	}

	var swagger2 map[string]interface{}
	if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to parse swagger doc"})
	}

	info, _ := swagger2["info"].(map[string]interface{})
	paths, _ := swagger2["paths"].(map[string]interface{})

	components := make(map[string]interface{})
	if secDefs, ok := swagger2["securityDefinitions"].(map[string]interface{}); ok {
		components["securitySchemes"] = secDefs
	}
	if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
		components["schemas"] = rewriteRefs(definitions)
	}

	spec := openAPI3Spec{
		OpenAPI: "3.0.3",
		Info:    info,
		Servers: []openAPIServer{
			{URL: "http://localhost:8080", Description: "Local Development"},
		},
		Paths:      rewriteRefs(paths).(map[string]interface{}),
		Components: components,
	}

	return c.JSON(http.StatusOK, spec)
}
