package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"food_ordering/internal/middleware"
	"food_ordering/internal/redis"
	"food_ordering/internal/repository"
	"food_ordering/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const defaultOrderPageSize = 100

type AdminHandler struct {
	menuService         services.MenuService
	orderService        services.OrderService
	reservationService  services.ReservationService
	notificationService services.NotificationService
	userService         services.UserService
	sessions            sessions
}

func NewAdminHandler(
	menuService services.MenuService,
	orderService services.OrderService,
	reservationService services.ReservationService,
	notificationService services.NotificationService,
	userService services.UserService,
	store *redis.Client,
	sessionTTL time.Duration,
) *AdminHandler {
	return &AdminHandler{
		menuService:         menuService,
		orderService:        orderService,
		reservationService:  reservationService,
		notificationService: notificationService,
		userService:         userService,
		sessions:            sessions{store: store, ttl: sessionTTL},
	}
}

// Register mounts the admin routes. Everything but login and logout needs an
// admin session.
func (h *AdminHandler) Register(api *gin.RouterGroup) *gin.RouterGroup {
	api.POST("/admin/login", h.Login)
	api.POST("/admin/logout", h.Logout)

	admin := api.Group("/admin", middleware.RequireAdmin())
	admin.GET("/dashboard", h.Dashboard)

	admin.GET("/products", h.ListProducts)
	admin.POST("/products", h.CreateProduct)
	admin.PUT("/products/:id", h.UpdateProduct)
	admin.DELETE("/products/:id", h.DeleteProduct)
	admin.POST("/products/:id/toggle-availability", h.ToggleAvailability)

	admin.GET("/orders", h.ListOrders)
	admin.GET("/orders/new-count", h.NewOrdersCount)
	admin.PUT("/orders/:id/status", h.UpdateOrderStatus)

	admin.GET("/reservations", h.ListReservations)
	admin.PUT("/reservations/:id/status", h.UpdateReservationStatus)

	admin.GET("/notifications", h.ListNotifications)
	admin.POST("/notifications/:id/read", h.MarkNotificationRead)
	return admin
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	admin, err := h.userService.AdminLogin(req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	err = h.sessions.login(c, func(s *redis.SessionData) {
		s.AdminID = admin.ID
		s.AdminUsername = admin.Username
	})
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().Uint("admin_id", admin.ID).Msg("admin logged in")
	c.JSON(http.StatusOK, gin.H{"admin": admin})
}

func (h *AdminHandler) Logout(c *gin.Context) {
	err := h.sessions.save(c, func(s *redis.SessionData) {
		s.AdminID = 0
		s.AdminUsername = ""
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You have been logged out."})
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.orderService.Dashboard()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListProducts(c *gin.Context) {
	products, err := h.menuService.ListProducts()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// bindProduct accepts JSON or a multipart form with an optional "image" file.
func (h *AdminHandler) bindProduct(c *gin.Context) (services.ProductInput, bool) {
	var input services.ProductInput
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c)
			return input, false
		}
		return input, true
	}

	input.Name = c.PostForm("name")
	input.Description = c.PostForm("description")
	input.Category = c.PostForm("category")
	input.Subcategory = c.PostForm("subcategory")
	input.Variant = c.PostForm("variant")
	if price, err := decimal.NewFromString(c.PostForm("price")); err == nil {
		input.Price = price
	}
	if v, ok := c.GetPostForm("available"); ok {
		available, _ := strconv.ParseBool(v)
		if v == "on" {
			available = true
		}
		input.Available = &available
	}

	file, err := c.FormFile("image")
	if err != nil {
		return input, true
	}
	f, err := file.Open()
	if err != nil {
		respondError(c, err)
		return input, false
	}
	defer f.Close()
	url, err := h.menuService.SaveImage(file.Filename, f)
	if err != nil {
		respondError(c, err)
		return input, false
	}
	input.ImageURL = url
	return input, true
}

func (h *AdminHandler) CreateProduct(c *gin.Context) {
	input, ok := h.bindProduct(c)
	if !ok {
		return
	}
	product, err := h.menuService.CreateProduct(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product, "message": "Product added successfully!"})
}

func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	input, ok := h.bindProduct(c)
	if !ok {
		return
	}
	product, err := h.menuService.UpdateProduct(id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product, "message": "Product updated successfully!"})
}

func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.menuService.DeleteProduct(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully!"})
}

func (h *AdminHandler) ToggleAvailability(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	product, err := h.menuService.ToggleAvailability(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product, "available": product.Available})
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.SearchOrders(repository.OrderFilter{
		Status: c.Query("status"),
		Query:  c.Query("q"),
		Limit:  queryInt(c, "limit", defaultOrderPageSize),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *AdminHandler) NewOrdersCount(c *gin.Context) {
	count, err := h.orderService.NewOrdersCount()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, count)
}

type statusRequest struct {
	Status     string `json:"status" binding:"required"`
	AdminNotes string `json:"admin_notes"`
}

func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *AdminHandler) ListReservations(c *gin.Context) {
	reservations, err := h.reservationService.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": reservations})
}

func (h *AdminHandler) UpdateReservationStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	reservation, err := h.reservationService.UpdateStatus(c.Request.Context(), id, req.Status, req.AdminNotes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": reservation})
}

func (h *AdminHandler) ListNotifications(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))
	notifications, err := h.notificationService.List(queryInt(c, "limit", 50), unreadOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	unread, err := h.notificationService.CountUnread()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "unread": unread})
}

func (h *AdminHandler) MarkNotificationRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.notificationService.MarkRead(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}
