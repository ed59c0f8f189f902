package services

import (
	"errors"
	"fmt"
	"log"

	"organicindia/internal/models"
	"organicindia/internal/repositories"
	"organicindia/pkg/rabbitmq"
)

// ErrNotOrderOwner is returned when a supplier touches an order whose
// material belongs to someone else.
var ErrNotOrderOwner = errors.New("order belongs to another supplier")

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo    repositories.OrderRepository
	materialRepo repositories.MaterialRepository
	mqClient     *rabbitmq.Client // optional event publisher
}

// NewOrderService creates a new OrderService. mqClient may be nil, in
// which case event publication is skipped.
func NewOrderService(orderRepo repositories.OrderRepository, materialRepo repositories.MaterialRepository, mqClient *rabbitmq.Client) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		materialRepo: materialRepo,
		mqClient:     mqClient,
	}
}

// PlaceOrder creates an order for the vendor against one material. The
// total price is frozen at quantity times the material's current unit
// price; the stock decrement and the order insert happen in one unit of
// work, so an insufficient reservation mutates nothing.
func (s *OrderService) PlaceOrder(vendorID, materialID string, quantity int, deliveryAddress, notes string) (*models.Order, error) {
	material, err := s.materialRepo.GetByID(materialID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	order := &models.Order{
		VendorID:        vendorID,
		MaterialID:      material.ID,
		Quantity:        quantity,
		TotalPrice:      float64(quantity) * material.PricePerUnit,
		DeliveryAddress: deliveryAddress,
		Notes:           notes,
		Status:          models.OrderStatusPending,
	}

	if err := s.orderRepo.Place(order); err != nil {
		return nil, err
	}

	s.publishEvent("order.created", map[string]interface{}{
		"order_id":    order.ID,
		"vendor_id":   order.VendorID,
		"material_id": order.MaterialID,
		"quantity":    order.Quantity,
		"total_price": order.TotalPrice,
		"status":      order.Status,
	})

	return order, nil
}

// VendorOrders returns the vendor's orders, newest first.
func (s *OrderService) VendorOrders(vendorID string) ([]models.Order, error) {
	return s.orderRepo.GetByVendor(vendorID)
}

// SupplierOrders returns orders on the supplier's materials, newest first.
func (s *OrderService) SupplierOrders(supplierID string) ([]models.Order, error) {
	return s.orderRepo.GetBySupplier(supplierID)
}

// UpdateOrderStatus overwrites an order's status on behalf of the
// supplier who owns its material. The status string is stored as given;
// no enumeration is enforced.
func (s *OrderService) UpdateOrderStatus(supplierID, orderID, status string) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order.Material.SupplierID != supplierID {
		return ErrNotOrderOwner
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", orderID, err)
	}

	s.publishEvent("order.status_updated", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	return nil
}

// publishEvent sends a marketplace event when a client is configured.
// Publish failures are logged, never surfaced to the request.
func (s *OrderService) publishEvent(eventType string, payload map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishEvent(eventType, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", eventType, err)
	}
}
