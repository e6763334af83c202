package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sonicalchemist/api/internal/catalog"
	"github.com/sonicalchemist/api/internal/composer"
	"github.com/sonicalchemist/api/internal/logger"
	"github.com/sonicalchemist/api/internal/model"
	"github.com/sonicalchemist/api/internal/schema"
	"github.com/sonicalchemist/api/internal/web"
	"github.com/sonicalchemist/api/pkg/response"
)

// SessionCookie carries the composer session id.
const SessionCookie = "sonicalchemist_session"

const sessionExpiredMessage = "Your composer session has expired. Please try again."

type ComposerHandler struct {
	registry *composer.Registry
	renderer *web.Renderer
	catalog  *catalog.Catalog
}

func NewComposerHandler(registry *composer.Registry, renderer *web.Renderer, cat *catalog.Catalog) *ComposerHandler {
	return &ComposerHandler{
		registry: registry,
		renderer: renderer,
		catalog:  cat,
	}
}

// Page handles GET /
func (h *ComposerHandler) Page(c *fiber.Ctx) error {
	s := h.session(c)
	return h.render(c, fiber.StatusOK, s, web.ComposerPage{})
}

// State handles GET /api/composer/state
func (h *ComposerHandler) State(c *fiber.Ctx) error {
	s := h.session(c)
	return response.OK(c, s.Controller.State())
}

// Submit handles POST /compose
func (h *ComposerHandler) Submit(c *fiber.Ctx) error {
	s := h.session(c)
	asJSON := wantsJSON(c)

	form := model.DefaultComposerForm()
	if err := c.BodyParser(&form); err != nil {
		if asJSON {
			return response.ValidationError(c, "Invalid request body", nil)
		}
		return h.render(c, fiber.StatusBadRequest, s, web.ComposerPage{Notice: "Invalid form submission."})
	}

	state, err := s.Controller.Submit(c.UserContext(), form)
	switch {
	case err == nil:
		if asJSON {
			return response.OK(c, state)
		}
		return h.render(c, fiber.StatusOK, s, web.ComposerPage{State: state})

	case isValidationError(err):
		verr, _ := schema.AsValidationError(err)
		if asJSON {
			return response.ValidationError(c, "Validation failed", verr.Details())
		}
		state.Form = form
		return h.render(c, fiber.StatusBadRequest, s, web.ComposerPage{State: state, FieldErrors: verr.Details()})

	case errors.Is(err, composer.ErrBusy), errors.Is(err, composer.ErrSuperseded):
		if asJSON {
			return response.Conflict(c, err.Error())
		}
		return h.render(c, fiber.StatusConflict, s, web.ComposerPage{State: state, Notice: capitalize(err.Error()) + "."})

	case errors.Is(err, composer.ErrClosed):
		if asJSON {
			return response.Conflict(c, sessionExpiredMessage)
		}
		return c.Redirect("/", fiber.StatusSeeOther)

	default:
		logger.Error("Composer submit failed", err, logger.WithContext(c).With(logger.Fields{"session_id": s.ID}))
		return response.ServiceError(c, "Internal server error")
	}
}

// Export handles POST /compose/export/:format
func (h *ComposerHandler) Export(c *fiber.Ctx) error {
	s := h.session(c)
	asJSON := wantsJSON(c)

	format, ok := parseExportFormat(c.Params("format"))
	if !ok {
		return response.ValidationError(c, "Unsupported export format", map[string]string{
			"format": "Format must be mp3 or wav.",
		})
	}

	notice, err := s.Controller.Export(format)
	if err != nil {
		if asJSON {
			return response.Conflict(c, capitalize(err.Error())+".")
		}
		return h.render(c, fiber.StatusConflict, s, web.ComposerPage{Notice: capitalize(err.Error()) + "."})
	}

	if asJSON {
		// the notice also went to the session sink; JSON callers get it inline
		s.Toasts.Drain()
		return response.OK(c, fiber.Map{"format": format, "message": notice})
	}
	return h.render(c, fiber.StatusOK, s, web.ComposerPage{})
}

// session returns the caller's composer session, issuing a cookie for new ones.
func (h *ComposerHandler) session(c *fiber.Ctx) *composer.Session {
	current := c.Cookies(SessionCookie)
	s := h.registry.GetOrCreate(current)
	if s.ID != current {
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    s.ID,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return s
}

func (h *ComposerHandler) render(c *fiber.Ctx, status int, s *composer.Session, page web.ComposerPage) error {
	page.SessionID = s.ID
	page.Catalog = h.catalog
	if page.State.Status == "" {
		page.State = s.Controller.State()
	}
	page.Toasts = s.Toasts.Drain()

	c.Status(status)
	c.Type("html", "utf-8")
	if err := h.renderer.Composer(c, page); err != nil {
		logger.Error("Failed to render composer page", err, logger.WithContext(c))
		return response.ServiceError(c, "Failed to render page")
	}
	return nil
}

func wantsJSON(c *fiber.Ctx) bool {
	return c.Is("json") || c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

func parseExportFormat(raw string) (model.ExportFormat, bool) {
	format := model.ExportFormat(strings.ToLower(raw))
	for _, f := range model.ValidExportFormats {
		if f == format {
			return f, true
		}
	}
	return "", false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
