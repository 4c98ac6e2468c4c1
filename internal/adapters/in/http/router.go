package http

import (
	"fmt"
	"net/http"

	"fulfillment/internal/api"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Register mounts the API, its OpenAPI document and the swagger UI on e.
// Requests to API routes are validated against the document before they
// reach the server.
func Register(e *echo.Echo, server *Server) error {
	doc, err := api.GetSwagger()
	if err != nil {
		return err
	}

	validator, err := OpenAPIValidator(doc)
	if err != nil {
		return err
	}

	v1 := e.Group("/api/v1", validator)
	api.RegisterHandlers(v1, server)

	e.GET("/openapi.json", func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, api.RawSpec())
	})

	api.RegisterSwagger()
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return nil
}

// OpenAPIValidator rejects requests that do not match doc with 400. Requests
// to paths the document does not describe pass through untouched.
func OpenAPIValidator(doc *openapi3.T) (echo.MiddlewareFunc, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("building OpenAPI router: %w", err)
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			route, pathParams, findErr := router.FindRoute(req)
			if findErr != nil {
				return next(c)
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if validationErr := openapi3filter.ValidateRequest(req.Context(), input); validationErr != nil {
				return c.JSON(http.StatusBadRequest, api.Error{
					Code:    http.StatusBadRequest,
					Message: validationErr.Error(),
				})
			}

			return next(c)
		}
	}, nil
}
