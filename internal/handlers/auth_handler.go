package handlers

import (
	"errors"
	"log"

	"organicindia/internal/middleware"
	"organicindia/internal/models"
	"organicindia/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler serves the public pages: landing, registration, login,
// logout.
type AuthHandler struct {
	authService *services.AuthService
	renderer    *Renderer
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, renderer *Renderer) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		renderer:    renderer,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the public routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleIndex)
	router.Get("/register", h.HandleRegisterForm)
	router.Post("/register", h.HandleRegister)
	router.Get("/login", h.HandleLoginForm)
	router.Post("/login", h.HandleLogin)
	router.Get("/logout", h.HandleLogout)
}

// HandleIndex renders the landing page.
func (h *AuthHandler) HandleIndex(c *fiber.Ctx) error {
	return h.renderer.Render(c, fiber.StatusOK, "index", fiber.Map{
		"Title": "Welcome",
	})
}

// RegisterForm is the registration form payload.
type RegisterForm struct {
	Username string `form:"username" validate:"required,min=3,max=100"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
	UserType string `form:"user_type" validate:"required,oneof=vendor supplier"`
	Phone    string `form:"phone" validate:"required"`
	City     string `form:"city" validate:"required"`
	Area     string `form:"area" validate:"required"`
}

// HandleRegisterForm renders the registration form.
func (h *AuthHandler) HandleRegisterForm(c *fiber.Ctx) error {
	return h.renderer.Render(c, fiber.StatusOK, "register", fiber.Map{
		"Title": "Register",
		"Form":  RegisterForm{},
	})
}

// HandleRegister handles new user registration. Duplicate usernames and
// emails each get their own notice; the form is redisplayed with the
// submitted values.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var form RegisterForm
	if err := c.BodyParser(&form); err != nil {
		log.Printf("Error parsing register form: %v", err)
		middleware.SetNotice(c, middleware.NoticeError, "Invalid form submission")
		return c.Redirect("/register", fiber.StatusSeeOther)
	}

	if err := h.validate.Struct(form); err != nil {
		return h.renderer.Render(c, fiber.StatusBadRequest, "register", fiber.Map{
			"Title":  "Register",
			"Form":   form,
			"Notice": &middleware.Notice{Type: middleware.NoticeError, Message: "All fields are required"},
		})
	}

	user := &models.User{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		UserType: form.UserType,
		Phone:    form.Phone,
		City:     form.City,
		Area:     form.Area,
	}

	if err := h.authService.RegisterUser(user); err != nil {
		log.Printf("Error registering user %s: %v", form.Username, err)
		message := "Could not complete registration"
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			message = "Username already exists"
		case errors.Is(err, services.ErrEmailTaken):
			message = "Email already registered"
		}
		return h.renderer.Render(c, fiber.StatusConflict, "register", fiber.Map{
			"Title":  "Register",
			"Form":   form,
			"Notice": &middleware.Notice{Type: middleware.NoticeError, Message: message},
		})
	}

	middleware.SetNotice(c, middleware.NoticeSuccess, "Registration successful! Please login.")
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// HandleLoginForm renders the login form.
func (h *AuthHandler) HandleLoginForm(c *fiber.Ctx) error {
	return h.renderer.Render(c, fiber.StatusOK, "login", fiber.Map{
		"Title": "Login",
	})
}

// HandleLogin authenticates the user, establishes the session cookie,
// and redirects to the dashboard matching the user's role.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	user, token, err := h.authService.LoginUser(username, password)
	if err != nil {
		log.Printf("Login failed for %s: %v", username, err)
		return h.renderer.Render(c, fiber.StatusUnauthorized, "login", fiber.Map{
			"Title":  "Login",
			"Notice": &middleware.Notice{Type: middleware.NoticeError, Message: "Invalid username or password"},
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
	})

	if user.UserType == models.RoleVendor {
		return c.Redirect("/vendor/dashboard", fiber.StatusSeeOther)
	}
	return c.Redirect("/supplier/dashboard", fiber.StatusSeeOther)
}

// HandleLogout clears the session cookie and redirects home.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.SessionCookie)
	middleware.SetNotice(c, middleware.NoticeInfo, "You have been logged out")
	return c.Redirect("/", fiber.StatusSeeOther)
}
