// Package Swagger go-employees
//
// An API to create, read, replace, patch and delete employees.
//
//   Schemes: http, https
//   Version: 1.0
//   Host: localhost:8080
//   BasePath:/
//
//   Consumes:
//   - application/json
//
//   Produces:
//   - application/json
//
// swagger:meta
package swagger

import (
	_ "embed"
	"net/http"

	"github.com/antonio-alexander/go-employees/internal/data"

	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

//go:embed swagger.json
var swaggerTemplate string

// SwaggerInfo is the document served at /swagger/doc.json
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "go-employees",
	Description:      "An API to create, read, replace, patch and delete employees.",
	InfoInstanceName: swag.Name,
	SwaggerTemplate:  swaggerTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Handler serves the swagger ui and the document it reads from
func Handler() http.Handler {
	return httpSwagger.Handler(httpSwagger.URL(data.RouteSwaggerDocument))
}
