package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shinyyama/book-market-backend/internal/auth"
	"github.com/shinyyama/book-market-backend/internal/cache"
	"github.com/shinyyama/book-market-backend/internal/handler"
	appmw "github.com/shinyyama/book-market-backend/internal/middleware"
	"github.com/shinyyama/book-market-backend/internal/repository"
	"github.com/shinyyama/book-market-backend/internal/service"
	"github.com/shinyyama/book-market-backend/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Options struct {
	Repos    repository.Set
	Issuer   *auth.Issuer
	Store    storage.ObjectStore
	Cache    *cache.Cache // optional
	Answerer service.Answerer

	Logger *zap.Logger

	CatalogCacheTTL  time.Duration
	UploadMaxBytes   int64
	AuthRateLimit    float64
	CORSAllowOrigins []string
	GitSHA           string
	BuildTime        string
}

type Server struct {
	e *echo.Echo
}

func New(opt Options) *Server {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(appmw.RequestContext())
	e.Use(appmw.RequestLogger(log))
	e.Use(appmw.Metrics())
	e.Use(middleware.CORSWithConfig(corsConfig(opt.CORSAllowOrigins)))

	r := opt.Repos
	authSvc := service.NewAuthService(r.Users, opt.Issuer)
	userSvc := service.NewUserService(r.Users, r.Books, r.Wishlist, authSvc, opt.Cache, log)
	bookSvc := service.NewBookService(r.Books, r.Users, r.Purchases, opt.Cache, opt.CatalogCacheTTL, log)
	wishlistSvc := service.NewWishlistService(r.Wishlist, r.Books)
	paymentSvc := service.NewPaymentService(r.Payments)
	purchaseSvc := service.NewPurchaseService(r.Purchases, r.Books)
	chatSvc := service.NewChatService(r.Chats, r.Users, log)
	mediaSvc := service.NewMediaService(opt.Store, r.Users, opt.UploadMaxBytes)
	assistantSvc := service.NewAssistantService(r.Books, opt.Answerer)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	bookHandler := handler.NewBookHandler(bookSvc)
	wishlistHandler := handler.NewWishlistHandler(wishlistSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	purchaseHandler := handler.NewPurchaseHandler(purchaseSvc)
	chatHandler := handler.NewChatHandler(chatSvc)
	uploadHandler := handler.NewUploadHandler(mediaSvc)
	aiHandler := handler.NewAIHandler(assistantSvc)

	authMw := appmw.NewAuthMiddleware(authSvc)
	requireAuth := authMw.RequireAuth

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    opt.GitSHA,
			"build_time": opt.BuildTime,
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	limiter := authRateLimiter(opt.AuthRateLimit)
	authGroup.POST("/signup", authHandler.Signup, limiter)
	authGroup.POST("/login", authHandler.Login, limiter)
	authGroup.GET("/verify", authHandler.Verify, requireAuth)
	authGroup.POST("/logout", authHandler.Logout, requireAuth)

	api.POST("/users/become-seller", userHandler.BecomeSeller, requireAuth)
	api.PATCH("/users/:userId/profile-image", userHandler.SetProfileImage, requireAuth)
	api.GET("/users/:userId", userHandler.GetPublic)

	api.POST("/upload", uploadHandler.BookImages, requireAuth)
	api.POST("/upload/profile", uploadHandler.Profile)

	api.POST("/book", bookHandler.Create, requireAuth)
	api.POST("/books", bookHandler.Create, requireAuth)
	api.GET("/books", bookHandler.List)
	api.GET("/books/category/:category", bookHandler.ListByCategory)
	api.GET("/books/:bookId", bookHandler.Get, requireAuth)
	api.POST("/books/:bookId/ask", aiHandler.AskBook, requireAuth)

	api.GET("/wishlist", wishlistHandler.List, requireAuth)
	api.POST("/wishlist/add", wishlistHandler.Add, requireAuth)
	api.POST("/wishlist/remove", wishlistHandler.Remove, requireAuth)
	api.POST("/wishlist/check", wishlistHandler.Check, requireAuth)

	api.POST("/payments", paymentHandler.Create, requireAuth)
	api.GET("/payments/check/:bookId", paymentHandler.CheckBook, requireAuth)
	api.GET("/payments/verify/:sellerId", paymentHandler.VerifySeller, requireAuth)

	api.POST("/purchases", purchaseHandler.Create, requireAuth)
	api.GET("/me/purchases", purchaseHandler.ListMine, requireAuth)
	api.GET("/me/sales", purchaseHandler.ListSales, requireAuth)

	api.GET("/chats", chatHandler.List, requireAuth)
	api.POST("/chats", chatHandler.Create, requireAuth)
	api.GET("/chats/:chatId/messages", chatHandler.Messages, requireAuth)
	api.POST("/chats/:chatId/messages", chatHandler.Send, requireAuth)
	api.PATCH("/chats/:chatId/read", chatHandler.MarkRead, requireAuth)

	return &Server{e: e}
}

func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func authRateLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	burst := int(perSecond * 2)
	if burst < 1 {
		burst = 1
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, handler.NewErrorResponse("rate_limited", "too many requests"))
		},
	})
}

func corsConfig(origins []string) middleware.CORSConfig {
	cfg := middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	if len(origins) > 0 {
		cfg.AllowOrigins = origins
		return cfg
	}
	cfg.AllowOriginFunc = func(origin string) (bool, error) {
		u, err := url.Parse(origin)
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		host := strings.ToLower(u.Hostname())
		return host == "localhost" || host == "127.0.0.1", nil
	}
	return cfg
}
