package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/server/auth"
	"github.com/dmitrijs2005/famledger/internal/services"
	"github.com/dmitrijs2005/famledger/internal/writequeue"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type createOwnerRequest struct {
	Name string `json:"name" binding:"required"`
}

type createAccountRequest struct {
	Name           string  `json:"name" binding:"required"`
	InitialBalance float64 `json:"initialBalance"`
	OwnerID        string  `json:"ownerId" binding:"required"`
}

type createCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Color       string  `json:"color"`
	Description *string `json:"description"`
}

type generateRequest struct {
	Year          int    `json:"year" binding:"required"`
	Month         int    `json:"month" binding:"required"`
	BankAccountID string `json:"bankAccountId" binding:"required"`
}

// RouterOptions configure NewRouter.
type RouterOptions struct {
	SecretKey    []byte
	AllowOrigins []string
	// WriteStats, when set, adds the background write counters to /health.
	WriteStats func() writequeue.Stats
}

// NewRouter wires every route. /health is public.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowOrigins,
		AllowAllOrigins:  len(opts.AllowOrigins) == 0,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "healthy", "service": "famledger"}
		if opts.WriteStats != nil {
			body["writes"] = opts.WriteStats()
		}
		c.JSON(http.StatusOK, body)
	})

	api := r.Group("/api/v1", auth.Middleware(opts.SecretKey))

	owners := func(s *services.Services) crud[models.Owner] { return s.Owners }
	g := api.Group("/owners")
	g.GET("", listAll(h, owners))
	g.GET("/:id", getOne(h, owners, "owner not found"))
	g.POST("", create(h, func(ctx context.Context, s *services.Services, in createOwnerRequest) services.Result[models.Owner] {
		return s.Owners.Create(ctx, in.Name)
	}))
	g.PUT("/:id", update(h, func(s *services.Services) updater[models.Owner] { return s.Owners },
		func(o *models.Owner, id string) { o.ID = id }))
	g.DELETE("/:id", remove(h, owners))

	accounts := func(s *services.Services) crud[models.BankAccount] { return s.BankAccounts }
	g = api.Group("/accounts")
	g.GET("", listAll(h, accounts))
	g.GET("/:id", getOne(h, accounts, "bank account not found"))
	g.GET("/:id/history", h.history)
	g.POST("", create(h, func(ctx context.Context, s *services.Services, in createAccountRequest) services.Result[models.BankAccount] {
		return s.BankAccounts.Create(ctx, in.Name, in.InitialBalance, in.OwnerID)
	}))
	g.PUT("/:id", update(h, func(s *services.Services) updater[models.BankAccount] { return s.BankAccounts },
		func(a *models.BankAccount, id string) { a.ID = id }))
	g.DELETE("/:id", remove(h, accounts))

	transactions := func(s *services.Services) crud[models.Transaction] { return s.Transactions }
	g = api.Group("/transactions")
	g.GET("", listAll(h, transactions))
	g.GET("/:id", getOne(h, transactions, "transaction not found"))
	g.POST("", create(h, func(ctx context.Context, s *services.Services, in models.CreateTransactionInput) services.Result[models.Transaction] {
		return s.Transactions.Create(ctx, in)
	}))
	g.PUT("/:id", update(h, func(s *services.Services) updater[models.Transaction] { return s.Transactions },
		func(t *models.Transaction, id string) { t.ID = id }))
	g.DELETE("/:id", remove(h, transactions))

	categories := func(s *services.Services) crud[models.PaymentCategory] { return s.Categories }
	g = api.Group("/categories")
	g.GET("", listAll(h, categories))
	g.GET("/:id", getOne(h, categories, "category not found"))
	g.POST("", create(h, func(ctx context.Context, s *services.Services, in createCategoryRequest) services.Result[models.PaymentCategory] {
		return s.Categories.Create(ctx, in.Name, in.Color, in.Description)
	}))
	g.PUT("/:id", update(h, func(s *services.Services) updater[models.PaymentCategory] { return s.Categories },
		func(pc *models.PaymentCategory, id string) { pc.ID = id }))
	g.DELETE("/:id", remove(h, categories))

	templates := func(s *services.Services) crud[models.PaymentTemplate] { return s.Templates }
	g = api.Group("/templates")
	g.GET("", listAll(h, templates))
	g.GET("/:id", getOne(h, templates, "payment template not found"))
	g.POST("", create(h, func(ctx context.Context, s *services.Services, in models.CreatePaymentTemplateInput) services.Result[models.PaymentTemplate] {
		return s.Templates.Create(ctx, in)
	}))
	g.PUT("/:id", update(h, func(s *services.Services) updater[models.PaymentTemplate] { return s.Templates },
		func(t *models.PaymentTemplate, id string) { t.ID = id }))
	g.DELETE("/:id", remove(h, templates))

	payments := func(s *services.Services) crud[models.Payment] { return s.Payments }
	g = api.Group("/payments")
	g.GET("", listAll(h, payments))
	g.GET("/:id", getOne(h, payments, "payment not found"))
	g.POST("", create(h, func(ctx context.Context, s *services.Services, in models.CreatePaymentInput) services.Result[models.Payment] {
		return s.Payments.Create(ctx, in)
	}))
	g.POST("/generate", h.generate)
	g.PUT("/:id", update(h, func(s *services.Services) updater[models.Payment] { return s.Payments },
		func(p *models.Payment, id string) { p.ID = id }))
	g.DELETE("/:id", remove(h, payments))

	batches := func(s *services.Services) crud[models.PaymentBatch] { return s.Batches }
	g = api.Group("/batches")
	g.GET("", listAll(h, batches))
	g.GET("/:id", getOne(h, batches, "payment batch not found"))
	g.POST("", create(h, func(ctx context.Context, s *services.Services, in models.CreatePaymentBatchInput) services.Result[models.PaymentBatch] {
		return s.Batches.Create(ctx, in)
	}))
	g.DELETE("/:id", remove(h, batches))

	g = api.Group("/sharing/emails")
	g.GET("", h.sharedEmails)
	g.POST("", h.addSharedEmail)
	g.DELETE("/:email", h.removeSharedEmail)

	return r
}

func (h *Handler) history(c *gin.Context) {
	svc, ok := h.services(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	if _, err := svc.BankAccounts.GetByID(ctx, id); err != nil {
		fail(c, statusFor(err), messageFor(err, "bank account not found"))
		return
	}
	entries, err := svc.History.GetByAccountID(ctx, id)
	if err != nil {
		fail(c, statusFor(err), messageFor(err, "bank account not found"))
		return
	}
	okJSON(c, entries)
}

func (h *Handler) generate(c *gin.Context) {
	var in generateRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	svc, ok := h.services(c)
	if !ok {
		return
	}
	reply(c, svc.Payments.GenerateFromTemplates(c.Request.Context(), in.Year, time.Month(in.Month), in.BankAccountID), http.StatusOK)
}

// requestLogger tags the request context with a request id, echoed in
// the X-Request-ID header, and logs one line per request.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logging.ContextWith(c.Request.Context(), "request_id", id))

		c.Next()
		h.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).String(),
		)
	}
}
