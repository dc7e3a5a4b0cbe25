package config

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/ibrahim99035/library-backend/internal/adapters/persistence/models"
	"github.com/ibrahim99035/library-backend/internal/core/domain"
)

// SeedPolicy ensures the single library policy row exists. Column
// defaults fill in the policy constants on first boot.
func SeedPolicy(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.LibraryPolicy{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	policy := &models.LibraryPolicy{LibraryName: "Default Library"}
	if err := db.Create(policy).Error; err != nil {
		return err
	}

	log.Println("✅ Seeded default library policy")
	return nil
}

// SeedDemoData inserts a small demo catalog and membership in dev mode
// so the API is usable immediately. No-op when books already exist.
func SeedDemoData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Book{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	today := time.Now().Truncate(24 * time.Hour)

	books := []models.Book{
		{Title: "The Go Programming Language", ISBN: "0134190440", Author: "Donovan, Kernighan", Category: "Programming", TotalCopies: 3, Price: 39.99, Location: "A-12"},
		{Title: "Clean Architecture", ISBN: "0134494164", Author: "Robert C. Martin", Category: "Software", TotalCopies: 2, Price: 34.99, Location: "A-07"},
		{Title: "Designing Data-Intensive Applications", ISBN: "9781449373320", Author: "Martin Kleppmann", Category: "Databases", TotalCopies: 1, Price: 44.99, Location: "B-03"},
	}
	if err := db.Create(&books).Error; err != nil {
		return err
	}

	members := []models.Member{
		{CardNo: "LIB-0001", Name: "Alice Morgan", Email: "alice@example.org", MembershipType: domain.MembershipStudent, Status: domain.MemberActive, JoinDate: today, ExpiryDate: today.Add(models.MembershipTerm(domain.MembershipStudent))},
		{CardNo: "LIB-0002", Name: "Omar Hassan", Email: "omar@example.org", MembershipType: domain.MembershipFaculty, Status: domain.MemberActive, JoinDate: today, ExpiryDate: today.Add(models.MembershipTerm(domain.MembershipFaculty))},
		{CardNo: "LIB-0003", Name: "Jules Verne", Email: "jules@example.org", MembershipType: domain.MembershipPublic, Status: domain.MemberActive, JoinDate: today, ExpiryDate: today.Add(models.MembershipTerm(domain.MembershipPublic))},
	}
	if err := db.Create(&members).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d demo books and %d demo members", len(books), len(members))
	return nil
}
