package http

import (
	"net/http"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/njprem/Todo_APP_BackEnd/internal/util"
)

// RegisterSwagger serves the YAML API description as JSON at
// /swagger/doc.json and the Swagger UI under /swagger.
func RegisterSwagger(e *echo.Echo, spec []byte) error {
	jsonSpec, err := yaml.YAMLToJSON(spec)
	if err != nil {
		return err
	}
	e.GET("/swagger/doc.json", func(c echo.Context) error {
		if len(jsonSpec) == 0 {
			return c.JSON(http.StatusNotFound, util.Error("api description not available"))
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, jsonSpec)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	return nil
}
