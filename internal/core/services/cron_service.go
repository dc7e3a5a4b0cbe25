package services

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// CronService drives the periodic sweeps: overdue loans and reservation
// expiry daily, availability notifications more frequently. Sweeps are
// idempotent, so an overlapping or repeated run is harmless.
type CronService struct {
	cron         *cron.Cron
	borrowings   *BorrowingService
	reservations *ReservationService
}

// NewCronService creates a new cron service
func NewCronService(borrowings *BorrowingService, reservations *ReservationService) *CronService {
	return &CronService{
		cron:         cron.New(),
		borrowings:   borrowings,
		reservations: reservations,
	}
}

// Start registers and launches the sweep schedule
func (s *CronService) Start() {
	// Daily at 00:05: overdue loans and reservation expiry
	s.cron.AddFunc("5 0 * * *", func() {
		ctx := context.Background()
		if _, err := s.borrowings.OverdueSweep(ctx); err != nil {
			log.Printf("❌ Overdue sweep failed: %v", err)
		}
		if _, err := s.reservations.ExpirySweep(ctx); err != nil {
			log.Printf("❌ Expiry sweep failed: %v", err)
		}
	})

	// Every 15 minutes: notify heads of queue about freed copies
	s.cron.AddFunc("*/15 * * * *", func() {
		if _, err := s.reservations.NotifySweep(context.Background()); err != nil {
			log.Printf("❌ Notify sweep failed: %v", err)
		}
	})

	s.cron.Start()
	log.Println("🚀 CronService started (overdue/expiry daily, notify every 15m)")
}

// Stop stops the scheduler, waiting for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}
