// Command seed loads a development product catalog. Prices are display
// strings in pesos, matching what the storefront renders.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/meditrack-ph/meditrack-backend/internal/catalog"
	"github.com/meditrack-ph/meditrack-backend/pkg/config"
	"github.com/meditrack-ph/meditrack-backend/pkg/db"
	"github.com/meditrack-ph/meditrack-backend/pkg/db/models"
	"github.com/meditrack-ph/meditrack-backend/pkg/enums"
	"github.com/meditrack-ph/meditrack-backend/pkg/logger"
	"github.com/meditrack-ph/meditrack-backend/pkg/migrate"
)

type seedCategory struct {
	name     string
	products []string
	// priceMin and priceMax bound the random peso price per product.
	priceMin int
	priceMax int
}

var categories = []seedCategory{
	{"Pain Relief", []string{"Advil", "Alaxan", "Biogesic", "Medicol", "Tylenol", "Mefenamic Acid"}, 20, 200},
	{"Cough & Cold", []string{"Neozep", "Bioflu", "Ascof", "Solmux", "Decolgen", "Robitussin"}, 100, 400},
	{"Vitamins & Supplements", []string{"Enervon", "Ceelin", "Caltrate", "Centrum", "Redoxon"}, 150, 800},
	{"Antibiotics", []string{"Amoxil", "Flagyl", "Ciprobay", "Azithromycin", "Cefalexin"}, 150, 500},
	{"Digestive Health", []string{"Gaviscon", "Diatabs", "Mylanta", "Omeprazole"}, 50, 350},
	{"Skin Care", []string{"Betadine", "Hydrocortisone Cream", "Cetaphil", "Eucerin"}, 80, 600},
	{"Diabetes", []string{"Glucophage", "Glibenclamide", "Sitagliptin", "Insulin"}, 400, 1200},
	{"Heart & Blood", []string{"Amlodipine", "Losartan", "Atorvastatin", "Clopidogrel"}, 100, 700},
	{"Allergy & Immunity", []string{"Cetirizine", "Loratadine", "Ventolin", "Allegra"}, 60, 450},
	{"Oral Care", []string{"Listerine", "Sensodyne", "Colgate Plax", "Biotene"}, 80, 300},
}

var pharmacies = []string{
	"Mercury Drug",
	"Watsons Philippines",
	"Southstar Drug",
	"The Generics Pharmacy",
	"Rose Pharmacy",
	"MedExpress Pharmacy",
	"Generika Drugstore",
	"Botikang Pinoy",
}

var manufacturers = []string{
	"Unilab",
	"Pascual Laboratories",
	"Pfizer Philippines",
	"GSK Philippines",
	"Sanofi Philippines",
	"Natrapharm",
}

var dosages = []string{"100mg", "250mg", "500mg", "60ml Syrup", "120ml Syrup", "10g Cream"}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	perPharmacy := flag.Int("per-pharmacy", 2, "pharmacy listings to create per product")
	seedVal := flag.Int64("seed", 0, "random seed, 0 keeps results different per run")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seedVal))
	if *seedVal == 0 {
		rng = rand.New(rand.NewSource(int64(os.Getpid())))
	}

	repo := catalog.NewRepository(dbClient.DB())
	created := 0
	for _, cat := range categories {
		for _, name := range cat.products {
			for i := 0; i < *perPharmacy; i++ {
				product := models.Product{
					ID:           uuid.New(),
					Name:         name,
					Price:        displayPrice(rng, cat.priceMin, cat.priceMax),
					PharmacyName: pharmacies[rng.Intn(len(pharmacies))],
					Category:     cat.name,
					Manufacturer: manufacturers[rng.Intn(len(manufacturers))],
					Dosage:       dosages[rng.Intn(len(dosages))],
					Availability: randomAvailability(rng),
					IsActive:     true,
				}
				if err := repo.Create(ctx, &product); err != nil {
					logg.Error(ctx, "failed to create product: "+name, err)
					os.Exit(1)
				}
				created++
			}
		}
	}

	logg.Info(logg.WithField(ctx, "count", created), "seeded product catalog")
}

// displayPrice rounds to the nearest ten pesos and floors at fifty, the same
// spread the storefront's sample catalog used.
func displayPrice(rng *rand.Rand, min, max int) string {
	price := min + rng.Intn(max-min+1)
	price = (price / 10) * 10
	if price < 50 {
		price = 50
	}
	return fmt.Sprintf("₱%d.00", price)
}

func randomAvailability(rng *rand.Rand) enums.Availability {
	switch rng.Intn(10) {
	case 0:
		return enums.AvailabilityOutOfStock
	case 1, 2:
		return enums.AvailabilityLowStock
	default:
		return enums.AvailabilityInStock
	}
}
