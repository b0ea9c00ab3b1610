package handlers

import (
	"net/http"
	"time"

	"food_ordering/internal/middleware"
	"food_ordering/internal/page"
	"food_ordering/internal/redis"
	"food_ordering/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// APIHandler serves the storefront: menu, cart, checkout, orders,
// reservations and customer accounts.
type APIHandler struct {
	menuService        services.MenuService
	cartService        services.CartService
	orderService       services.OrderService
	reservationService services.ReservationService
	userService        services.UserService
	hours              *services.BusinessHours
	deliveryFee        decimal.Decimal
	sessions           sessions
}

func NewAPIHandler(
	menuService services.MenuService,
	cartService services.CartService,
	orderService services.OrderService,
	reservationService services.ReservationService,
	userService services.UserService,
	hours *services.BusinessHours,
	deliveryFee decimal.Decimal,
	store *redis.Client,
	sessionTTL time.Duration,
) *APIHandler {
	return &APIHandler{
		menuService:        menuService,
		cartService:        cartService,
		orderService:       orderService,
		reservationService: reservationService,
		userService:        userService,
		hours:              hours,
		deliveryFee:        deliveryFee,
		sessions:           sessions{store: store, ttl: sessionTTL},
	}
}

func (h *APIHandler) Register(api *gin.RouterGroup) {
	api.GET("/menu", h.GetMenu)

	api.GET("/cart", h.GetCart)
	api.POST("/cart/items", h.AddToCart)
	api.PUT("/cart/items/:product_id", h.UpdateCartItem)
	api.DELETE("/cart/items/:product_id", h.RemoveCartItem)
	api.GET("/checkout", h.Checkout)

	api.POST("/orders", h.PlaceOrder)
	api.GET("/orders/:id", h.TrackOrder)
	api.GET("/orders/:id/status", h.OrderStatus)

	api.POST("/reservations", h.CreateReservation)

	api.POST("/customers/register", h.RegisterCustomer)
	api.POST("/customers/login", h.Login)
	api.POST("/customers/logout", h.Logout)
	customer := api.Group("/customers/me", middleware.RequireCustomer())
	{
		customer.GET("", h.Profile)
		customer.GET("/orders", h.MyOrders)
	}

	api.GET("/flash", h.Flashes)
}

func (h *APIHandler) GetMenu(c *gin.Context) {
	menu, err := h.menuService.GetMenu()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": menu})
}

// cartResponse adds the formatted amounts the cart page displays.
func cartResponse(view *services.CartView) gin.H {
	return gin.H{
		"items":      view.Lines,
		"item_count": view.ItemCount,
		"subtotal":   view.Subtotal.StringFixed(2),
		"tax":        view.Tax.StringFixed(2),
		"total":      view.Total.StringFixed(2),
		"display": gin.H{
			"subtotal": page.FormatCurrency(view.Subtotal),
			"tax":      page.FormatCurrency(view.Tax),
			"total":    page.FormatCurrency(view.Total),
		},
	}
}

func (h *APIHandler) GetCart(c *gin.Context) {
	view, err := h.cartService.View(middleware.SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(view))
}

type cartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

func (h *APIHandler) AddToCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	sessionID := middleware.SessionID(c)
	product, err := h.cartService.Add(sessionID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.cartService.View(sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := cartResponse(view)
	resp["message"] = "Added " + product.Name + " to cart!"
	c.JSON(http.StatusOK, resp)
}

func (h *APIHandler) UpdateCartItem(c *gin.Context) {
	productID, ok := paramID(c, "product_id")
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	sessionID := middleware.SessionID(c)
	if err := h.cartService.SetQuantity(sessionID, productID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	h.GetCart(c)
}

func (h *APIHandler) RemoveCartItem(c *gin.Context) {
	productID, ok := paramID(c, "product_id")
	if !ok {
		return
	}
	if err := h.cartService.Remove(middleware.SessionID(c), productID); err != nil {
		respondError(c, err)
		return
	}
	h.GetCart(c)
}

func (h *APIHandler) Checkout(c *gin.Context) {
	view, err := h.cartService.Checkout(middleware.SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	now := h.hours.Now()
	resp := gin.H{
		"cart":         cartResponse(view),
		"delivery_fee": h.deliveryFee.StringFixed(2),
		"is_open":      h.hours.IsOpen(now),
		"hours_text":   h.hours.HoursText(now),
	}

	sess := middleware.CurrentSession(c)
	if sess.IsCustomer() {
		if customer, err := h.userService.GetCustomer(sess.CustomerID); err == nil {
			resp["customer"] = customer
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *APIHandler) PlaceOrder(c *gin.Context) {
	var input services.PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c)
		return
	}
	if sess := middleware.CurrentSession(c); sess.IsCustomer() {
		id := sess.CustomerID
		input.CustomerID = &id
	}

	result, err := h.orderService.PlaceOrder(c.Request.Context(), middleware.SessionID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	category := "success"
	if result.OutsideHours {
		category = "warning"
	}
	h.sessions.flash(c, category, result.Message)
	c.JSON(http.StatusCreated, result)
}

func (h *APIHandler) TrackOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	tracking, err := h.orderService.TrackOrder(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tracking)
}

func (h *APIHandler) OrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	status, err := h.orderService.OrderStatus(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": id, "status": status, "active": page.IsActiveStatus(status)})
}

func (h *APIHandler) CreateReservation(c *gin.Context) {
	var input services.ReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c)
		return
	}
	reservation, err := h.reservationService.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	msg := "Reservation request submitted! We will confirm your booking shortly."
	h.sessions.flash(c, "success", msg)
	c.JSON(http.StatusCreated, gin.H{"reservation": reservation, "message": msg})
}

func (h *APIHandler) RegisterCustomer(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c)
		return
	}
	customer, err := h.userService.Register(input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.sessions.flash(c, "success", "Registration successful! Please log in.")
	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

func (h *APIHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	customer, err := h.userService.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	err = h.sessions.login(c, func(s *redis.SessionData) {
		s.CustomerID = customer.ID
		s.CustomerEmail = customer.Email
		s.CustomerName = customer.FullName
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer, "message": "Welcome back, " + customer.FullName + "!"})
}

// Logout forgets the customer but keeps the cart.
func (h *APIHandler) Logout(c *gin.Context) {
	err := h.sessions.save(c, func(s *redis.SessionData) {
		s.CustomerID = 0
		s.CustomerEmail = ""
		s.CustomerName = ""
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You have been logged out."})
}

func (h *APIHandler) Profile(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	customer, err := h.userService.GetCustomer(sess.CustomerID)
	if err != nil {
		respondError(c, err)
		return
	}
	orders, err := h.orderService.GetCustomerOrders(customer.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	reservations, err := h.reservationService.ListByEmail(customer.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer, "orders": orders, "reservations": reservations})
}

func (h *APIHandler) MyOrders(c *gin.Context) {
	orders, err := h.orderService.GetCustomerOrders(middleware.CurrentSession(c).CustomerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *APIHandler) Flashes(c *gin.Context) {
	flashes, err := h.sessions.store.PopFlashes(middleware.SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": flashes})
}
