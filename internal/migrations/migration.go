package migrations

import (
	"fmt"

	"food_ordering/internal/database"
	"food_ordering/internal/models"
	"food_ordering/internal/repository"
	"food_ordering/internal/services"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RunMigrations brings the schema up to date and creates default data.
// Existing rows are never touched.
func RunMigrations(db *gorm.DB, adminUsername, adminPassword string) error {
	log.Info().Msg("Running database migrations...")
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := createDefaultData(db, adminUsername, adminPassword); err != nil {
		return err
	}
	log.Info().Msg("Database migrations completed successfully!")
	return nil
}

// Reset drops every table and recreates the schema. All data is lost.
func Reset(db *gorm.DB) error {
	tables := database.Models()
	// Children first so foreign keys do not block the drop.
	for i, j := 0, len(tables)-1; i < j; i, j = i+1, j-1 {
		tables[i], tables[j] = tables[j], tables[i]
	}
	if err := db.Migrator().DropTable(tables...); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return database.AutoMigrate(db)
}

func createDefaultData(db *gorm.DB, adminUsername, adminPassword string) error {
	users := services.NewUserService(repository.NewCustomerRepository(db), repository.NewAdminRepository(db))
	return SeedDefaults(users, repository.NewProductRepository(db), adminUsername, adminPassword)
}

// SeedDefaults creates the admin account and, on an empty catalogue, the
// sample menu.
func SeedDefaults(users services.UserService, products repository.ProductRepository, adminUsername, adminPassword string) error {
	_, created, err := users.EnsureAdmin(adminUsername, adminPassword)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	if created {
		log.Info().Str("username", adminUsername).Msg("Admin user created")
	}

	count, err := products.Count()
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, p := range SampleMenu() {
		if err := products.Create(&p); err != nil {
			return fmt.Errorf("failed to create product %q: %w", p.Name, err)
		}
	}
	log.Info().Int("products", len(SampleMenu())).Msg("Sample menu created")
	return nil
}

func item(name, description, price, category, subcategory string) models.Product {
	return models.Product{
		Name:        name,
		Description: description,
		Price:       decimal.RequireFromString(price),
		Category:    category,
		Subcategory: subcategory,
		Available:   true,
	}
}

func SampleMenu() []models.Product {
	return []models.Product{
		item("Americano", "Double shot over hot water", "3.50", "Drinks", "Coffee-based"),
		item("Cafe Latte", "Espresso with steamed milk", "4.25", "Drinks", "Coffee-based"),
		item("Iced Tea", "House-brewed, lightly sweetened", "2.75", "Drinks", "Soda & Juice"),
		item("San Miguel Pale Pilsen", "330ml bottle", "3.00", "Drinks", "Beer & Liquor"),
		item("Pork Adobo", "Braised in vinegar, soy and garlic, with rice", "9.50", "Food", "Marinduque Pinoy Dishes"),
		item("Kare-Kare", "Oxtail in peanut sauce with bagoong", "12.50", "Food", "Marinduque Pinoy Dishes"),
		item("Pancit Canton", "Stir-fried egg noodles with vegetables", "8.00", "Food", "Noodles"),
		item("Halo-Halo", "Shaved ice, sweet beans, leche flan and ube", "5.00", "Desserts", "Desserts"),
	}
}
