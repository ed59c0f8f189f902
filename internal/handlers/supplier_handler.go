package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"organicindia/internal/middleware"
	"organicindia/internal/models"
	"organicindia/internal/repositories"
	"organicindia/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// SupplierHandler serves the supplier-facing pages: dashboard, material
// creation, the supplier's order list, and order status updates.
type SupplierHandler struct {
	catalogService *services.CatalogService
	orderService   *services.OrderService
	renderer       *Renderer
	validate       *validator.Validate
}

// NewSupplierHandler creates a new SupplierHandler.
func NewSupplierHandler(catalogService *services.CatalogService, orderService *services.OrderService, renderer *Renderer) *SupplierHandler {
	return &SupplierHandler{
		catalogService: catalogService,
		orderService:   orderService,
		renderer:       renderer,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the supplier routes. The router is expected
// to be gated by middleware.RequireRole for the supplier role. The
// status update route lives at the top level of the URL space and is
// registered separately in main.
func (h *SupplierHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard", h.HandleDashboard)
	router.Get("/add_material", h.HandleAddMaterialForm)
	router.Post("/add_material", h.HandleAddMaterial)
	router.Get("/orders", h.HandleOrders)
}

// HandleDashboard renders the supplier's materials in any availability
// state, plus every order referencing them.
func (h *SupplierHandler) HandleDashboard(c *fiber.Ctx) error {
	supplierID := middleware.ActorID(c)

	materials, err := h.catalogService.SupplierMaterials(supplierID)
	if err != nil {
		log.Printf("Error listing supplier materials: %v", err)
		return fiber.ErrInternalServerError
	}
	orders, err := h.orderService.SupplierOrders(supplierID)
	if err != nil {
		log.Printf("Error listing supplier orders: %v", err)
		return fiber.ErrInternalServerError
	}

	return h.renderer.Render(c, fiber.StatusOK, "supplier_dashboard", fiber.Map{
		"Title":     "Supplier dashboard",
		"Materials": materials,
		"Orders":    orders,
	})
}

// MaterialForm is the add-material form payload. Price and stock arrive
// as strings and are parsed explicitly so malformed numbers become a
// notice instead of a failed request.
type MaterialForm struct {
	Name          string `form:"name" validate:"required,min=3,max=100"`
	Category      string `form:"category" validate:"required,max=100"`
	Description   string `form:"description" validate:"omitempty,max=500"`
	PricePerUnit  string `form:"price_per_unit" validate:"required"`
	Unit          string `form:"unit" validate:"required,max=30"`
	StockQuantity string `form:"stock_quantity" validate:"required"`
}

// HandleAddMaterialForm renders the add-material form.
func (h *SupplierHandler) HandleAddMaterialForm(c *fiber.Ctx) error {
	return h.renderer.Render(c, fiber.StatusOK, "add_material", fiber.Map{
		"Title": "Add material",
		"Form":  MaterialForm{},
	})
}

// HandleAddMaterial creates a material owned by the authenticated
// supplier, stamping city and area from the supplier's profile.
func (h *SupplierHandler) HandleAddMaterial(c *fiber.Ctx) error {
	var form MaterialForm
	if err := c.BodyParser(&form); err != nil {
		log.Printf("Error parsing material form: %v", err)
		middleware.SetNotice(c, middleware.NoticeError, "Invalid form submission")
		return c.Redirect("/supplier/add_material", fiber.StatusSeeOther)
	}

	redisplay := func(message string) error {
		return h.renderer.Render(c, fiber.StatusBadRequest, "add_material", fiber.Map{
			"Title":  "Add material",
			"Form":   form,
			"Notice": &middleware.Notice{Type: middleware.NoticeError, Message: message},
		})
	}

	if err := h.validate.Struct(form); err != nil {
		return redisplay("All fields except description are required")
	}
	price, err := strconv.ParseFloat(form.PricePerUnit, 64)
	if err != nil || price <= 0 {
		return redisplay("Price per unit must be a positive number")
	}
	stock, err := strconv.Atoi(form.StockQuantity)
	if err != nil || stock < 0 {
		return redisplay("Stock quantity must be a non-negative whole number")
	}

	material := &models.Material{
		Name:          form.Name,
		Category:      form.Category,
		Description:   form.Description,
		PricePerUnit:  price,
		Unit:          form.Unit,
		StockQuantity: stock,
	}
	if err := h.catalogService.AddMaterial(middleware.ActorID(c), material); err != nil {
		log.Printf("Error adding material: %v", err)
		return fiber.ErrInternalServerError
	}

	middleware.SetNotice(c, middleware.NoticeSuccess, "Material added successfully!")
	return c.Redirect("/supplier/dashboard", fiber.StatusSeeOther)
}

// HandleOrders renders orders on the supplier's materials, newest first.
func (h *SupplierHandler) HandleOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.SupplierOrders(middleware.ActorID(c))
	if err != nil {
		log.Printf("Error listing supplier orders: %v", err)
		return fiber.ErrInternalServerError
	}

	return h.renderer.Render(c, fiber.StatusOK, "orders", fiber.Map{
		"Title":      "Orders",
		"Orders":     orders,
		"ViewerRole": "supplier",
	})
}

// HandleUpdateOrderStatus overwrites an order's status with the literal
// path segment. The order must reference a material owned by the
// authenticated supplier; the notice echoing the status is rendered
// through html/template, which escapes it.
func (h *SupplierHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("order_id")
	status := c.Params("status")

	err := h.orderService.UpdateOrderStatus(middleware.ActorID(c), orderID, status)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fiber.ErrNotFound
		}
		if errors.Is(err, services.ErrNotOrderOwner) {
			middleware.SetNotice(c, middleware.NoticeError, "Access denied")
			return c.Redirect("/supplier/dashboard", fiber.StatusSeeOther)
		}
		log.Printf("Error updating status of order %s: %v", orderID, err)
		return fiber.ErrInternalServerError
	}

	middleware.SetNotice(c, middleware.NoticeSuccess, fmt.Sprintf("Order status updated to %s", status))
	return c.Redirect("/supplier/orders", fiber.StatusSeeOther)
}
