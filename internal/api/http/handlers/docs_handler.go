package handlers

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// WelcomeText is served on the root path.
const WelcomeText = `Welcome!. Please go to <a href="/api-docs">docs</a> to see the API description`

// DocsHandler serves the root page and the API description.
type DocsHandler struct {
	document []byte
}

// NewDocsHandler converts the embedded OpenAPI YAML to JSON once.
func NewDocsHandler() (*DocsHandler, error) {
	doc, err := yamlToJSON(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("load api document: %w", err)
	}
	return &DocsHandler{document: doc}, nil
}

// Root GET /.
func (h *DocsHandler) Root(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.SendString(WelcomeText)
}

// APIDocs GET /api-docs.
func (h *DocsHandler) APIDocs(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(h.document)
}

func yamlToJSON(src []byte) ([]byte, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
