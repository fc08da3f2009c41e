package transport

import (
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"storefront/pkg/domain/service"
	"storefront/pkg/infrastructure/metrics"
)

type Services struct {
	Users      service.UserService
	Products   service.ProductService
	Carts      service.CartService
	Wishlists  service.WishlistService
	Orders     service.OrderService
	Discounts  service.DiscountService
	Categories service.CategoryService
	Deals      service.DealService
	Content    service.ContentService
	Campaigns  service.CampaignService
	Analytics  service.AnalyticsService
}

type Options struct {
	DashboardSecret  string
	AnalyticsLimiter *rate.Limiter
	Metrics          *metrics.Metrics
}

type Handler struct {
	services Services
}

func Router(services Services, options Options) http.Handler {
	h := &Handler{services: services}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	if options.Metrics != nil {
		r.Handle("/metrics", options.Metrics.Handler()).Methods(http.MethodGet)
		r.Use(options.Metrics.Middleware)
	}

	s := r.PathPrefix("/api").Subrouter()
	s.Use(identify(services.Users))

	s.HandleFunc("/users/register-user", h.registerUser).Methods(http.MethodPost)
	s.HandleFunc("/users/verify-otp", h.verifyOTP).Methods(http.MethodPost)
	s.HandleFunc("/users/login-user", h.loginUser).Methods(http.MethodPost)
	s.HandleFunc("/users/forgot-password", h.forgotPassword).Methods(http.MethodPost)
	s.HandleFunc("/users/reset-password", h.resetPassword).Methods(http.MethodPost)
	s.HandleFunc("/users/me", h.currentUser).Methods(http.MethodGet)
	s.HandleFunc("/users/profile-image", h.updateProfileImage).Methods(http.MethodPatch)
	s.HandleFunc("/users/all-users", h.listUsers).Methods(http.MethodGet)
	s.HandleFunc("/users/user/{id}", h.getUser).Methods(http.MethodGet)
	s.HandleFunc("/users/user/{id}", h.deleteUser).Methods(http.MethodDelete)
	s.HandleFunc("/users/subscribe", h.subscribe).Methods(http.MethodPost)
	s.HandleFunc("/users/validate-discount", h.validateDiscount).Methods(http.MethodPost)

	s.HandleFunc("/admins/register-admin", h.registerAdmin).Methods(http.MethodPost)
	s.HandleFunc("/admins/login-admin", h.loginAdmin).Methods(http.MethodPost)
	s.HandleFunc("/admins/create-admin", h.createAdmin).Methods(http.MethodPost)

	s.HandleFunc("/products/products", h.listProducts).Methods(http.MethodGet)
	s.HandleFunc("/products/product/{id}", h.getProduct).Methods(http.MethodGet)
	s.HandleFunc("/products/category/{categoryId}", h.listProductsByCategory).Methods(http.MethodGet)
	s.HandleFunc("/products/create-product", h.createProduct).Methods(http.MethodPost)
	s.HandleFunc("/products/product/{id}", h.updateProduct).Methods(http.MethodPut)
	s.HandleFunc("/products/product/{id}", h.deleteProduct).Methods(http.MethodDelete)
	s.HandleFunc("/products/reviews/{productId}", h.submitReview).Methods(http.MethodPost)
	s.HandleFunc("/products/reviews/{productId}", h.listReviews).Methods(http.MethodGet)

	s.HandleFunc("/products/cart", h.addToCart).Methods(http.MethodPost)
	s.HandleFunc("/products/cart", h.getCart).Methods(http.MethodGet)
	s.HandleFunc("/products/cart/remove", h.removeFromCart).Methods(http.MethodPost)
	s.HandleFunc("/products/cart/clear", h.clearCart).Methods(http.MethodDelete)

	s.HandleFunc("/products/wishlist/add", h.addToWishlist).Methods(http.MethodPost)
	s.HandleFunc("/products/wishlist/remove", h.removeFromWishlist).Methods(http.MethodPost)
	s.HandleFunc("/products/wishlist", h.getWishlist).Methods(http.MethodGet)

	s.HandleFunc("/orders/create-order", h.createOrder).Methods(http.MethodPost)
	s.HandleFunc("/orders/my-orders", h.myOrders).Methods(http.MethodGet)
	s.HandleFunc("/orders/orders", h.listOrders).Methods(http.MethodGet)
	s.HandleFunc("/orders/order/{id}", h.getOrder).Methods(http.MethodGet)
	s.HandleFunc("/orders/order/{id}", h.updateOrderStatus).Methods(http.MethodPut)
	s.HandleFunc("/orders/order/{id}", h.deleteOrder).Methods(http.MethodDelete)

	s.HandleFunc("/categories/categories", h.listCategories).Methods(http.MethodGet)
	s.HandleFunc("/categories/category/name/{name}", h.getCategoryByName).Methods(http.MethodGet)
	s.HandleFunc("/categories/category/{id}", h.getCategory).Methods(http.MethodGet)
	s.HandleFunc("/categories/create-category", h.createCategory).Methods(http.MethodPost)
	s.HandleFunc("/categories/category/{id}", h.updateCategory).Methods(http.MethodPut)
	s.HandleFunc("/categories/category/{id}", h.deleteCategory).Methods(http.MethodDelete)

	s.HandleFunc("/deals", h.listDeals).Methods(http.MethodGet)
	s.HandleFunc("/deal/{id}", h.getDeal).Methods(http.MethodGet)
	s.HandleFunc("/deals/category/{categoryId}", h.listDealsByCategory).Methods(http.MethodGet)
	s.HandleFunc("/create-deal", h.createDeal).Methods(http.MethodPost)
	s.HandleFunc("/deal/{id}", h.updateDeal).Methods(http.MethodPut)
	s.HandleFunc("/deal/{id}", h.deleteDeal).Methods(http.MethodDelete)

	s.HandleFunc("/slides", h.listSlides).Methods(http.MethodGet)
	s.HandleFunc("/slides/{id}", h.getSlide).Methods(http.MethodGet)
	s.HandleFunc("/slides", h.createSlide).Methods(http.MethodPost)
	s.HandleFunc("/slides/{id}", h.updateSlide).Methods(http.MethodPut)
	s.HandleFunc("/slides/{id}", h.deleteSlide).Methods(http.MethodDelete)

	s.HandleFunc("/friday-banner", h.getBanner).Methods(http.MethodGet)
	s.HandleFunc("/friday-banner", h.saveBanner).Methods(http.MethodPut)
	s.HandleFunc("/friday-banner", h.deleteBanner).Methods(http.MethodDelete)

	s.HandleFunc("/reel", h.listReels).Methods(http.MethodGet)
	s.HandleFunc("/reel", h.createReel).Methods(http.MethodPost)
	s.HandleFunc("/reel/{id}", h.getReel).Methods(http.MethodGet)
	s.HandleFunc("/reel/{id}", h.deleteReel).Methods(http.MethodDelete)

	s.HandleFunc("/campaigns", h.listCampaigns).Methods(http.MethodGet)
	s.HandleFunc("/campaigns", h.createCampaign).Methods(http.MethodPost)
	s.HandleFunc("/campaigns/{campaignId}/send", h.sendCampaign).Methods(http.MethodPost)
	s.HandleFunc("/campaigns/{campaignId}", h.deleteCampaign).Methods(http.MethodDelete)

	dashboard := func(next http.HandlerFunc) http.HandlerFunc {
		return requireDashboardSecret(options.DashboardSecret, next)
	}
	s.HandleFunc("/analytics/event", rateLimited(options.AnalyticsLimiter, h.logEvent)).Methods(http.MethodPost)
	s.HandleFunc("/analytics/events", dashboard(h.listEvents)).Methods(http.MethodGet)
	s.HandleFunc("/analytics/summary", dashboard(h.analyticsSummary)).Methods(http.MethodGet)
	s.HandleFunc("/analytics/weekly", dashboard(h.weeklyReport)).Methods(http.MethodGet)
	s.HandleFunc("/analytics/monthly", dashboard(h.monthlyReport)).Methods(http.MethodGet)
	s.HandleFunc("/analytics/cart", dashboard(h.analyticsCart)).Methods(http.MethodGet)

	return logMiddleware(r)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}
