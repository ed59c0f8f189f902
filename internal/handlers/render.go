package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"organicindia/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages are the renderable views; each is parsed together with the
// shared layout.
var pages = []string{
	"index",
	"register",
	"login",
	"vendor_dashboard",
	"supplier_dashboard",
	"add_material",
	"place_order",
	"orders",
}

// Renderer holds the parsed template cache. Templates are embedded and
// parsed once at startup; html/template's contextual auto-escaping
// covers everything echoed back to users, including free-form order
// status strings.
type Renderer struct {
	cache map[string]*template.Template
}

// NewRenderer parses every page template against the shared layout.
func NewRenderer() (*Renderer, error) {
	cache := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		cache[page] = tmpl
	}
	return &Renderer{cache: cache}, nil
}

// Render executes a page into the response, attaching the pending
// notice and the authenticated actor (when present) to the template
// data.
func (r *Renderer) Render(c *fiber.Ctx, status int, page string, data fiber.Map) error {
	tmpl, ok := r.cache[page]
	if !ok {
		return fmt.Errorf("unknown template %s", page)
	}

	if data == nil {
		data = fiber.Map{}
	}
	// A notice passed explicitly (form redisplay in the same request)
	// wins over one queued in the cookie from a previous redirect.
	if _, ok := data["Notice"]; !ok {
		data["Notice"] = middleware.PopNotice(c)
	}
	data["Username"] = middleware.ActorName(c)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}
