package repository

import (
	"food_ordering/internal/models"

	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id uint) (*models.Product, error)
	GetByIDs(ids []uint) ([]models.Product, error)
	ListAvailable() ([]models.Product, error)
	ListAll() ([]models.Product, error)
	Update(product *models.Product) error
	Delete(id uint) error
	SetAvailability(id uint, available bool) error
	Count() (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetByIDs(ids []uint) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.Where("id IN ?", ids).Order("id").Find(&products).Error
	return products, err
}

// ListAvailable returns the orderable menu sorted for display.
func (r *productRepository) ListAvailable() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("available = ?", true).
		Order("category").Order("subcategory").Order("name").
		Find(&products).Error
	return products, err
}

func (r *productRepository) ListAll() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Order("category").Order("subcategory").Order("name").Find(&products).Error
	return products, err
}

func (r *productRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) SetAvailability(id uint, available bool) error {
	res := r.db.Model(&models.Product{}).Where("id = ?", id).Update("available", available)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Product{}).Count(&n).Error
	return n, err
}
