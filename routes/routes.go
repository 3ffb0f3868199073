package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"ssincom-backend/controllers"
	"ssincom-backend/middlewares"
)

// Options are the HTTP limits read from the environment.
type Options struct {
	AllowedOrigins  string
	BodyLimitMB     int
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// NewApp builds the Fiber app with the global middlewares and every route registered.
func NewApp(opts Options) *fiber.App {
	bodyLimit := opts.BodyLimitMB * 1024 * 1024
	if bodyLimit <= 0 {
		bodyLimit = 4 * 1024 * 1024
	}
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    bodyLimit,
		AppName:      "ssincom-backend",
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middlewares.RequestLogger())
	app.Use(recover.New())

	origins := opts.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		// the session cookie needs credentials, which cors refuses together with "*"
		AllowCredentials: origins != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))

	if opts.RateLimitMax > 0 {
		window := opts.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimitMax,
			Expiration: window,
		}))
	}

	Register(app)
	return app
}

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	// Public endpoints
	app.Post("/login", controllers.Login)
	app.Post("/logout", controllers.Logout)
	app.Get("/healthz", controllers.Healthz)

	api := app.Group("/api")

	// Protected endpoints (session cookie or Bearer)
	api.Use(middlewares.RequireSession())

	// Idempotency guard FIRST (not tied to request TX)
	api.Use(middlewares.Idempotency())

	// Then one transaction per request
	api.Use(middlewares.Tx())

	// Invoices
	api.Get("/invoices/check-number", controllers.CheckInvoiceNumber)
	api.Get("/invoices/summary", controllers.InvoiceSummary)
	api.Post("/invoices/preview", controllers.PreviewInvoice)
	api.Post("/invoices/pdf", controllers.ExportInvoicePDF)
	api.Get("/invoices", controllers.ListInvoices)
	api.Post("/invoices", controllers.CreateInvoice)
	api.Get("/invoices/:id<int>/items", controllers.GetInvoiceItems)
	api.Get("/invoices/:id<int>/detail", controllers.GetInvoice)
	api.Get("/invoices/:id<int>/preview", controllers.PreviewStoredInvoice)
	api.Get("/invoices/:id<int>/pdf", controllers.ExportStoredInvoicePDF)
	api.Put("/invoices/:id<int>", controllers.UpdateInvoice)
	api.Delete("/invoices/:id<int>", controllers.DeleteInvoice)

	// Bill notes
	api.Get("/billing-notes/next-number", controllers.NextBillNoteNumber)
	api.Get("/billing-note-invoices", controllers.BillNoteCandidates)
	api.Post("/billing-notes/preview", controllers.PreviewBillNote)
	api.Get("/billing-notes", controllers.ListBillNotes)
	api.Post("/billing-notes", controllers.CreateBillNote)
	api.Get("/billing-notes/:number", controllers.GetBillNote)
	api.Get("/billing-notes/:number/preview", controllers.PreviewStoredBillNote)
	api.Get("/billing-notes/:number/pdf", controllers.ExportBillNotePDF)
	api.Put("/billing-notes/:number", controllers.UpdateBillNote)
	api.Delete("/billing-notes/:number", controllers.DeleteBillNote)

	// Credit notes (numbers contain "/", so they travel in ?no=)
	api.Get("/credit-notes/generate-number", controllers.GenerateCreditNoteNumber)
	api.Get("/credit-notes/detail", controllers.GetCreditNote)
	api.Get("/credit-notes/preview", controllers.PreviewStoredCreditNote)
	api.Get("/credit-notes/pdf", controllers.ExportStoredCreditNotePDF)
	api.Post("/credit-notes/preview", controllers.PreviewCreditNote)
	api.Post("/credit-notes/pdf", controllers.ExportCreditNotePDF)
	api.Post("/credit-notes", controllers.CreateCreditNote)
	api.Put("/credit-notes/update", controllers.UpdateCreditNote)
	api.Delete("/credit-notes", controllers.DeleteCreditNote)
	api.Get("/search-credit-notes", controllers.SearchCreditNotes)
	api.Get("/grn/suggest", controllers.SuggestGRN)
	api.Get("/grn/summary", controllers.GRNSummary)

	// Customers
	api.Get("/customers/all", controllers.AllCustomers)
	api.Get("/customers/suggest", controllers.SuggestCustomers)
	api.Get("/customers/detail", controllers.CustomerDetail)
	api.Get("/customers/suggest-personid", controllers.SuggestCustomerPersonIDs)
	api.Get("/customers/suggest-name", controllers.SuggestCustomerNames)
	api.Get("/customers/by-personid", controllers.CustomerByPersonID)
	api.Get("/customers/by-name", controllers.CustomerByName)
	api.Get("/customers/check-duplicate", controllers.CheckCustomerDuplicate)
	api.Get("/customers", controllers.ListCustomers)
	api.Post("/customers", controllers.CreateCustomer)
	api.Put("/customers/:id<int>", controllers.UpdateCustomer)
	api.Delete("/customers/:id<int>", controllers.DeleteCustomer)

	// Products
	api.Get("/products/suggest", controllers.SuggestProducts)
	api.Get("/products/price", controllers.ProductPrice)
	api.Get("/products/check-duplicate", controllers.CheckProductDuplicate)
	api.Get("/products", controllers.AllProducts)
	api.Post("/products", controllers.CreateProduct)
	api.Put("/products/:id<int>", controllers.UpdateProduct)
	api.Delete("/products/:id<int>", controllers.DeleteProduct)

	// Cars
	api.Get("/suggest/number_plate", controllers.SuggestNumberPlates)
	api.Get("/suggest/car_brand", controllers.SuggestCarBrands)
	api.Get("/suggest/province", controllers.SuggestProvinces)
	api.Get("/cars", controllers.ListCars)
	api.Post("/cars", controllers.CreateCar)
	api.Put("/cars/:id<int>", controllers.UpdateCar)
	api.Delete("/cars/:id<int>", controllers.DeleteCar)

	// Drivers
	api.Get("/drivers", controllers.ListDrivers)
	api.Post("/drivers", controllers.CreateDriver)
	api.Put("/drivers/:id", controllers.UpdateDriver)
	api.Delete("/drivers/:id", controllers.DeleteDriver)
	api.Get("/driver-summary", controllers.DriverSummary)
	api.Get("/driver-invoices", controllers.DriverInvoices)

	// Sales tax
	api.Get("/saletax/list", controllers.SaleTaxList)
	api.Get("/saletax/summary", controllers.SaleTaxSummary)
	api.Get("/saletax/export", controllers.ExportSaleTax)
}
