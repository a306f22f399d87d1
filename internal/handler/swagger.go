package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/budgettracker/tracker-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec is the OpenAPI 3.0 document served at /openapi.json
type OpenAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Server is an OpenAPI 3.0 server entry
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

const (
	swagger2RefPrefix = "#/definitions/"
	openAPI3RefPrefix = "#/components/schemas/"
)

// rewriteRefs points every $ref at components/schemas
func rewriteRefs(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				result[key] = strings.Replace(ref, swagger2RefPrefix, openAPI3RefPrefix, 1)
				continue
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

// convertPaths converts every operation of every path
func convertPaths(paths map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(paths))
	for path, item := range paths {
		methods, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		converted := make(map[string]interface{}, len(methods))
		for method, op := range methods {
			if operation, ok := op.(map[string]interface{}); ok {
				converted[method] = convertOperation(operation)
			}
		}
		result[path] = converted
	}
	return result
}

// convertOperation moves the JSON body parameter into requestBody and wraps
// the type fields of the remaining parameters in a schema
func convertOperation(op map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(op))
	for key, value := range op {
		switch key {
		case "parameters", "consumes", "produces":
		case "responses":
			result[key] = convertResponses(value)
		default:
			result[key] = rewriteRefs(value)
		}
	}

	params, _ := op["parameters"].([]interface{})
	converted := make([]interface{}, 0, len(params))
	for _, p := range params {
		param, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		if param["in"] == "body" {
			result["requestBody"] = requestBody(param)
			continue
		}
		converted = append(converted, convertParameter(param))
	}
	if len(converted) > 0 {
		result["parameters"] = converted
	}
	return result
}

func requestBody(param map[string]interface{}) map[string]interface{} {
	body := map[string]interface{}{
		"content": map[string]interface{}{
			echo.MIMEApplicationJSON: map[string]interface{}{"schema": rewriteRefs(param["schema"])},
		},
	}
	if required, ok := param["required"]; ok {
		body["required"] = required
	}
	if description, ok := param["description"]; ok {
		body["description"] = description
	}
	return body
}

// convertParameter converts a path or query parameter
func convertParameter(param map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			result[field] = val
		}
	}

	schema := make(map[string]interface{})
	for _, field := range []string{"type", "format", "minimum", "default"} {
		if val, ok := param[field]; ok {
			schema[field] = val
		}
	}
	if len(schema) > 0 {
		result["schema"] = schema
	}
	return result
}

// convertResponses wraps response schemas in a JSON content entry
func convertResponses(value interface{}) interface{} {
	responses, ok := value.(map[string]interface{})
	if !ok {
		return value
	}
	result := make(map[string]interface{}, len(responses))
	for status, r := range responses {
		response, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		converted := map[string]interface{}{"description": response["description"]}
		if schema, ok := response["schema"]; ok {
			converted["content"] = map[string]interface{}{
				echo.MIMEApplicationJSON: map[string]interface{}{"schema": rewriteRefs(schema)},
			}
		}
		result[status] = converted
	}
	return result
}

// ServeOpenAPI3Spec serves the generated Swagger 2.0 doc converted to OpenAPI 3.0
func ServeOpenAPI3Spec(c echo.Context) error {
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
	if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
		components["schemas"] = rewriteRefs(definitions)
	}

	host, _ := swagger2["host"].(string)
	if host == "" {
		host = c.Request().Host
	}
	basePath, _ := swagger2["basePath"].(string)

	return c.JSON(http.StatusOK, OpenAPI3Spec{
		OpenAPI:    "3.0.3",
		Info:       info,
		Servers:    []Server{{URL: c.Scheme() + "://" + host + basePath, Description: "This server"}},
		Paths:      convertPaths(paths),
		Components: components,
	})
}
