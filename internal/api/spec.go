package api

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

//go:embed openapi.json
var rawSpec []byte

// RawSpec returns the OpenAPI document as served on /openapi.json.
func RawSpec() []byte {
	out := make([]byte, len(rawSpec))
	copy(out, rawSpec)
	return out
}

// GetSwagger parses and validates the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("error loading OpenAPI document: %w", err)
	}
	if err = doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	return doc, nil
}

type swaggerDoc struct{}

func (swaggerDoc) ReadDoc() string {
	return string(rawSpec)
}

// RegisterSwagger makes the document available to the swagger UI handler.
func RegisterSwagger() {
	if _, err := swag.ReadDoc(swag.Name); err == nil {
		return
	}
	swag.Register(swag.Name, swaggerDoc{})
}
