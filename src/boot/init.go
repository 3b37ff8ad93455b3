package boot

import (
	"log"
	"tbs/src/common"
	"tbs/src/db"
	"tbs/src/lib"
	"tbs/src/models"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.TourPackage{},
		&models.Booking{},
		&models.BookingItem{},
		&models.Payment{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// SeedCatalog inserts a starter catalog on an empty database so bookings
// have something to reference.
func SeedCatalog() {
	db := db.GetDb()
	var count int64
	if err := db.Model(&models.TourPackage{}).Count(&count).Error; err != nil {
		log.Printf("Error counting packages: %s\n", err.Error())
		return
	}
	if count > 0 {
		return
	}
	packages := []models.TourPackage{
		{Title: "Masai Mara Classic Safari", Location: "Masai Mara, Kenya", Summary: "Three days of game drives across the Mara plains.", PricePerPerson: 540, Currency: "USD", DurationDays: 3, Active: true},
		{Title: "Zanzibar Beach Escape", Location: "Zanzibar, Tanzania", Summary: "Five nights on Nungwi beach with a spice farm tour.", PricePerPerson: 780, Currency: "USD", DurationDays: 6, Active: true},
		{Title: "Mount Kenya Trek", Location: "Mount Kenya, Kenya", Summary: "Four-day guided trek to Point Lenana.", PricePerPerson: 460, Currency: "USD", DurationDays: 4, Active: true},
	}
	for i := range packages {
		packages[i].Slug = slug.Make(packages[i].Title)
	}
	if err := db.Create(&packages).Error; err != nil {
		log.Printf("Error seeding catalog: %s\n", err.Error())
		return
	}
	log.Printf("Seeded %d catalog packages", len(packages))
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	j, err := sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(common.SweepStalePayments),
	)
	if err != nil {
		log.Printf("Error scheduling payment sweep: %s\n", err.Error())
		return
	}
	log.Printf("Scheduled payment sweep job: %s\n", j.ID().String())
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}
