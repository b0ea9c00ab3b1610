package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"food_ordering/internal/models"
	"food_ordering/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// UncategorizedLabel groups products without a subcategory.
const UncategorizedLabel = "Uncategorized"

// UploadURLPrefix is where uploaded product images are served from.
const UploadURLPrefix = "/static/uploads/"

// categoryAliases folds the spellings used over time onto one display name.
var categoryAliases = map[string]string{
	"Coffee Based":              "Coffee-based",
	"Coffee-based":              "Coffee-based",
	"Marinduque & Pinoy Dishes": "Marinduque Pinoy Dishes",
	"Marinduque Pinoy Dishes":   "Marinduque Pinoy Dishes",
	"Beer & Liquour":            "Beer & Liquor",
	"Beer & Liquor":             "Beer & Liquor",
	"Soda & Juice in Can":       "Soda & Juice",
	"Soda & Juice":              "Soda & Juice",
}

var allowedImageExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DisplayCategory is the menu heading a product's subcategory is listed under.
func DisplayCategory(subcategory string) string {
	subcategory = strings.TrimSpace(subcategory)
	if subcategory == "" {
		return UncategorizedLabel
	}
	if alias, ok := categoryAliases[subcategory]; ok {
		return alias
	}
	return subcategory
}

type MenuCategory struct {
	Name     string           `json:"name"`
	Products []models.Product `json:"products"`
}

type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Variant     string          `json:"variant"`
	ImageURL    string          `json:"image_url"`
	Available   *bool           `json:"available"`
}

func (in ProductInput) validate() error {
	verr := NewValidationError()
	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name", "This field is required.")
	}
	if strings.TrimSpace(in.Category) == "" {
		verr.Add("category", "This field is required.")
	}
	if !in.Price.IsPositive() {
		verr.Add("price", "Price must be greater than zero.")
	}
	return verr.OrNil()
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price.Round(2)
	p.Category = strings.TrimSpace(in.Category)
	p.Subcategory = strings.TrimSpace(in.Subcategory)
	p.Variant = strings.TrimSpace(in.Variant)
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	if in.Available != nil {
		p.Available = *in.Available
	}
}

type MenuService interface {
	// GetMenu groups available products under their display category, in
	// the order the categories first appear.
	GetMenu() ([]MenuCategory, error)
	ListProducts() ([]models.Product, error)
	GetProduct(id uint) (*models.Product, error)
	CreateProduct(input ProductInput) (*models.Product, error)
	UpdateProduct(id uint, input ProductInput) (*models.Product, error)
	DeleteProduct(id uint) error
	ToggleAvailability(id uint) (*models.Product, error)
	// SaveImage stores an uploaded image and returns its public URL.
	SaveImage(filename string, r io.Reader) (string, error)
}

type menuService struct {
	productRepo    repository.ProductRepository
	uploadDir      string
	maxUploadBytes int64
}

func NewMenuService(productRepo repository.ProductRepository, uploadDir string, maxUploadBytes int64) MenuService {
	return &menuService{productRepo: productRepo, uploadDir: uploadDir, maxUploadBytes: maxUploadBytes}
}

func (s *menuService) GetMenu() ([]MenuCategory, error) {
	products, err := s.productRepo.ListAvailable()
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	var menu []MenuCategory
	index := make(map[string]int)
	for _, p := range products {
		name := DisplayCategory(p.Subcategory)
		i, ok := index[name]
		if !ok {
			i = len(menu)
			index[name] = i
			menu = append(menu, MenuCategory{Name: name})
		}
		menu[i].Products = append(menu[i].Products, p)
	}
	return menu, nil
}

func (s *menuService) ListProducts() ([]models.Product, error) {
	return s.productRepo.ListAll()
}

func (s *menuService) GetProduct(id uint) (*models.Product, error) {
	p, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *menuService) CreateProduct(input ProductInput) (*models.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	p := &models.Product{Available: true}
	input.apply(p)
	if err := s.productRepo.Create(p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	log.Info().Uint("product_id", p.ID).Str("name", p.Name).Msg("product created")
	return p, nil
}

func (s *menuService) UpdateProduct(id uint, input ProductInput) (*models.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	p, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	input.apply(p)
	if err := s.productRepo.Update(p); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", notFound(err))
	}
	return p, nil
}

func (s *menuService) DeleteProduct(id uint) error {
	if err := s.productRepo.Delete(id); err != nil {
		return notFound(err)
	}
	log.Info().Uint("product_id", id).Msg("product deleted")
	return nil
}

func (s *menuService) ToggleAvailability(id uint) (*models.Product, error) {
	p, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.SetAvailability(id, !p.Available); err != nil {
		return nil, fmt.Errorf("failed to toggle availability: %w", notFound(err))
	}
	p.Available = !p.Available
	return p, nil
}

func (s *menuService) SaveImage(filename string, r io.Reader) (string, error) {
	base := filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(base))
	if !allowedImageExt[ext] {
		return "", ErrUnsupportedImage
	}
	stem := unsafeFileChars.ReplaceAllString(strings.TrimSuffix(base, filepath.Ext(base)), "_")
	name := uuid.NewString()[:8] + "_" + strings.Trim(stem, "._") + ext

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	path := filepath.Join(s.uploadDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, s.maxUploadBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > s.maxUploadBytes {
		err = ErrImageTooLarge
	}
	if err != nil {
		os.Remove(path)
		if errors.Is(err, ErrImageTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return UploadURLPrefix + name, nil
}
