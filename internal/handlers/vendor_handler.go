package handlers

import (
	"errors"
	"log"
	"strconv"

	"organicindia/internal/middleware"
	"organicindia/internal/repositories"
	"organicindia/internal/services"

	"github.com/gofiber/fiber/v2"
)

// VendorHandler serves the vendor-facing pages: the browsable catalog,
// order placement, and the vendor's order list.
type VendorHandler struct {
	catalogService *services.CatalogService
	orderService   *services.OrderService
	renderer       *Renderer
}

// NewVendorHandler creates a new VendorHandler.
func NewVendorHandler(catalogService *services.CatalogService, orderService *services.OrderService, renderer *Renderer) *VendorHandler {
	return &VendorHandler{
		catalogService: catalogService,
		orderService:   orderService,
		renderer:       renderer,
	}
}

// RegisterRoutes registers the vendor routes. The router is expected to
// be gated by middleware.RequireRole for the vendor role.
func (h *VendorHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard", h.HandleDashboard)
	router.Get("/place_order/:material_id", h.HandleOrderForm)
	router.Post("/place_order/:material_id", h.HandlePlaceOrder)
	router.Get("/orders", h.HandleOrders)
}

// HandleDashboard renders the filtered material listing. Category and
// city filter by exact match, search by substring over name or
// description; the filters intersect.
func (h *VendorHandler) HandleDashboard(c *fiber.Ctx) error {
	filter := repositories.MaterialFilter{
		Category: c.Query("category"),
		City:     c.Query("city"),
		Search:   c.Query("search"),
	}

	view, err := h.catalogService.Browse(filter)
	if err != nil {
		log.Printf("Error browsing materials: %v", err)
		return fiber.ErrInternalServerError
	}

	return h.renderer.Render(c, fiber.StatusOK, "vendor_dashboard", fiber.Map{
		"Title":           "Browse materials",
		"Materials":       view.Materials,
		"Categories":      view.Categories,
		"Cities":          view.Cities,
		"CurrentCategory": filter.Category,
		"CurrentCity":     filter.City,
		"CurrentSearch":   filter.Search,
	})
}

// HandleOrderForm renders the order form for one material. An unknown
// material id is a hard 404.
func (h *VendorHandler) HandleOrderForm(c *fiber.Ctx) error {
	material, err := h.catalogService.GetMaterial(c.Params("material_id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fiber.ErrNotFound
		}
		log.Printf("Error loading material %s: %v", c.Params("material_id"), err)
		return fiber.ErrInternalServerError
	}

	return h.renderer.Render(c, fiber.StatusOK, "place_order", fiber.Map{
		"Title":    "Place order",
		"Material": material,
	})
}

// HandlePlaceOrder creates the order, freezing the total price and
// decrementing stock in one unit of work. Insufficient stock and
// malformed quantities redisplay the form with a notice.
func (h *VendorHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	materialID := c.Params("material_id")
	material, err := h.catalogService.GetMaterial(materialID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fiber.ErrNotFound
		}
		log.Printf("Error loading material %s: %v", materialID, err)
		return fiber.ErrInternalServerError
	}

	redisplay := func(message string) error {
		return h.renderer.Render(c, fiber.StatusBadRequest, "place_order", fiber.Map{
			"Title":    "Place order",
			"Material": material,
			"Notice":   &middleware.Notice{Type: middleware.NoticeError, Message: message},
		})
	}

	quantity, err := strconv.Atoi(c.FormValue("quantity"))
	if err != nil || quantity <= 0 {
		return redisplay("Quantity must be a positive whole number")
	}
	deliveryAddress := c.FormValue("delivery_address")
	if deliveryAddress == "" {
		return redisplay("Delivery address is required")
	}

	_, err = h.orderService.PlaceOrder(middleware.ActorID(c), materialID, quantity, deliveryAddress, c.FormValue("notes"))
	if err != nil {
		if errors.Is(err, repositories.ErrInsufficientStock) {
			return redisplay("Requested quantity exceeds available stock")
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return fiber.ErrNotFound
		}
		log.Printf("Error placing order for material %s: %v", materialID, err)
		return fiber.ErrInternalServerError
	}

	middleware.SetNotice(c, middleware.NoticeSuccess, "Order placed successfully!")
	return c.Redirect("/vendor/orders", fiber.StatusSeeOther)
}

// HandleOrders renders the vendor's orders, newest first.
func (h *VendorHandler) HandleOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.VendorOrders(middleware.ActorID(c))
	if err != nil {
		log.Printf("Error listing vendor orders: %v", err)
		return fiber.ErrInternalServerError
	}

	return h.renderer.Render(c, fiber.StatusOK, "orders", fiber.Map{
		"Title":      "My orders",
		"Orders":     orders,
		"ViewerRole": "vendor",
	})
}
