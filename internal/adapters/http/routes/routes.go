package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ibrahim99035/library-backend/internal/adapters/http/handlers"
	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/repositories"
	"github.com/ibrahim99035/library-backend/internal/config"
	"github.com/ibrahim99035/library-backend/internal/core/services"
)

// Setup wires repositories, services and handlers, then mounts routes.
// Services is the bundle handed back to the caller so the cron
// scheduler can share the exact same instances.
type Services struct {
	Policy       *services.PolicyService
	Catalog      *services.CatalogService
	Members      *services.MemberService
	Borrowings   *services.BorrowingService
	Fines        *services.FineService
	Reservations *services.ReservationService
}

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *Services {
	// Repositories
	bookRepo := repositories.NewBookRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	borrowingRepo := repositories.NewBorrowingRepository(db)
	fineRepo := repositories.NewFineRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)

	// Services
	policyService := services.NewPolicyService(db)
	notifyService := services.NewNotificationService(cfg.Notify.WebhookURL)
	catalogService := services.NewCatalogService(db, bookRepo, borrowingRepo, reviewRepo)
	memberService := services.NewMemberService(memberRepo, borrowingRepo, fineRepo, policyService)
	borrowingService := services.NewBorrowingService(
		db, borrowingRepo, bookRepo, fineRepo, reservationRepo,
		memberService, policyService, notifyService,
	)
	fineService := services.NewFineService(db, fineRepo, memberRepo, policyService)
	reservationService := services.NewReservationService(
		db, reservationRepo, borrowingRepo,
		catalogService, memberService, policyService, notifyService,
	)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	policyHandler := handlers.NewPolicyHandler(policyService)
	bookHandler := handlers.NewBookHandler(catalogService)
	memberHandler := handlers.NewMemberHandler(memberService, borrowingService, fineService)
	borrowingHandler := handlers.NewBorrowingHandler(borrowingService)
	fineHandler := handlers.NewFineHandler(fineService)
	reservationHandler := handlers.NewReservationHandler(reservationService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Policy
	apiV1.Get("/policy", policyHandler.Get)
	apiV1.Patch("/policy", policyHandler.Update)

	// Catalog
	books := apiV1.Group("/books")
	books.Post("/", bookHandler.Create)
	books.Get("/", bookHandler.List)
	books.Get("/:id", bookHandler.Get)
	books.Get("/:id/availability", bookHandler.Availability)
	books.Patch("/:id/copies", bookHandler.SetCopies)
	books.Patch("/:id/state", bookHandler.SetState)
	books.Post("/:id/reviews", bookHandler.AddReview)
	books.Get("/:id/rating", bookHandler.Rating)
	books.Get("/:id/queue", reservationHandler.BookQueue)

	// Members
	members := apiV1.Group("/members")
	members.Post("/", memberHandler.Register)
	members.Get("/", memberHandler.List)
	members.Get("/:id", memberHandler.Get)
	members.Get("/:id/eligibility", memberHandler.Eligibility)
	members.Post("/:id/suspend", memberHandler.Suspend)
	members.Post("/:id/activate", memberHandler.Activate)
	members.Post("/:id/block", memberHandler.Block)
	members.Post("/:id/renew-membership", memberHandler.RenewMembership)
	members.Get("/:id/borrowings", memberHandler.Borrowings)
	members.Get("/:id/fines", memberHandler.Fines)

	// Borrowings
	borrowings := apiV1.Group("/borrowings")
	borrowings.Post("/", borrowingHandler.Create)
	borrowings.Get("/", borrowingHandler.List)
	borrowings.Get("/:id", borrowingHandler.Get)
	borrowings.Post("/:id/renew", borrowingHandler.Renew)
	borrowings.Post("/:id/return", borrowingHandler.Return)
	borrowings.Post("/:id/lost", borrowingHandler.MarkLost)

	// Fines
	fines := apiV1.Group("/fines")
	fines.Post("/", fineHandler.Create)
	fines.Get("/", fineHandler.List)
	fines.Get("/:id", fineHandler.Get)
	fines.Post("/:id/pay", fineHandler.Pay)
	fines.Post("/:id/waive", fineHandler.Waive)

	// Reservations
	reservations := apiV1.Group("/reservations")
	reservations.Post("/", reservationHandler.Create)
	reservations.Get("/", reservationHandler.List)
	reservations.Get("/:id", reservationHandler.Get)
	reservations.Get("/:id/position", reservationHandler.Position)
	reservations.Post("/:id/fulfill", reservationHandler.Fulfill)
	reservations.Post("/:id/cancel", reservationHandler.Cancel)

	// On-demand sweeps (the cron scheduler runs these on interval)
	sweeps := apiV1.Group("/sweeps")
	sweeps.Post("/overdue", borrowingHandler.OverdueSweep)
	sweeps.Post("/expiry", reservationHandler.ExpirySweep)
	sweeps.Post("/notify", reservationHandler.NotifySweep)

	return &Services{
		Policy:       policyService,
		Catalog:      catalogService,
		Members:      memberService,
		Borrowings:   borrowingService,
		Fines:        fineService,
		Reservations: reservationService,
	}
}
