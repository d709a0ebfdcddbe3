package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

// DefaultOpenAPIPath is relative to the working directory of the dashboard.
const DefaultOpenAPIPath = "api/openapi.yaml"

var swaggerUI = template.Must(template.New("swagger").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}} {{.Version}}</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body style="margin:0">
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: '/docs/openapi.json', dom_id: '#swagger-ui', deepLinking: true});
  </script>
</body>
</html>`))

// apiDoc is the OpenAPI document, validated and rendered once at startup.
type apiDoc struct {
	yaml []byte
	json []byte
	page []byte
}

func loadAPIDoc(path string) (*apiDoc, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := openapi3.NewLoader().LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	js, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}

	var page bytes.Buffer
	if err := swaggerUI.Execute(&page, doc.Info); err != nil {
		return nil, fmt.Errorf("render docs page: %w", err)
	}
	return &apiDoc{yaml: raw, json: js, page: page.Bytes()}, nil
}

// SetupDocs serves Swagger UI at /docs and the API document at
// /docs/openapi.yaml and /docs/openapi.json. A missing or invalid document
// is logged and the routes answer 404.
func SetupDocs(app *fiber.App, path string) {
	if path == "" {
		path = DefaultOpenAPIPath
	}
	doc, err := loadAPIDoc(path)
	if err != nil {
		slog.Warn("api docs disabled", "error", err)
	}

	serve := func(contentType string, body func(*apiDoc) []byte) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if doc == nil {
				return newError(c, fiber.StatusNotFound, "not_found", "api document not available")
			}
			c.Set(fiber.HeaderContentType, contentType)
			return c.Send(body(doc))
		}
	}

	app.Get("/docs", serve(fiber.MIMETextHTMLCharsetUTF8, func(d *apiDoc) []byte { return d.page }))
	app.Get("/docs/openapi.yaml", serve("application/yaml", func(d *apiDoc) []byte { return d.yaml }))
	app.Get("/docs/openapi.json", serve(fiber.MIMEApplicationJSON, func(d *apiDoc) []byte { return d.json }))
}
