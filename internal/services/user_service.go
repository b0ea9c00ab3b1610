package services

import (
	"errors"
	"fmt"
	"strings"

	"food_ordering/internal/models"
	"food_ordering/internal/page"
	"food_ordering/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MinPasswordLength = 6

type RegisterInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

func (in RegisterInput) validate() error {
	verr := NewValidationError()
	check := func(field, value string, c page.Constraints) {
		if res := page.CheckValue(value, c); !res.Valid {
			verr.Add(field, res.Message)
		}
	}
	check("email", in.Email, page.Constraints{Required: true, Type: "email"})
	check("full_name", in.FullName, page.Constraints{Required: true})
	check("phone", in.Phone, page.Constraints{Type: "tel"})
	check("password", in.Password, page.Constraints{Required: true})
	if in.Password != "" && len(in.Password) < MinPasswordLength {
		verr.Add("password", fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength))
	}
	return verr.OrNil()
}

type UserService interface {
	Register(input RegisterInput) (*models.Customer, error)
	Login(email, password string) (*models.Customer, error)
	GetCustomer(id uint) (*models.Customer, error)
	AdminLogin(username, password string) (*models.Admin, error)
	// EnsureAdmin creates the admin account unless the username exists.
	EnsureAdmin(username, password string) (*models.Admin, bool, error)
}

type userService struct {
	customerRepo repository.CustomerRepository
	adminRepo    repository.AdminRepository
}

func NewUserService(customerRepo repository.CustomerRepository, adminRepo repository.AdminRepository) UserService {
	return &userService{customerRepo: customerRepo, adminRepo: adminRepo}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(input RegisterInput) (*models.Customer, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	email := normalizeEmail(input.Email)
	_, err := s.customerRepo.GetByEmail(email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	c := &models.Customer{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		City:         strings.TrimSpace(input.City),
		PostalCode:   strings.TrimSpace(input.PostalCode),
	}
	if err := s.customerRepo.Create(c); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	log.Info().Uint("customer_id", c.ID).Msg("customer registered")
	return c, nil
}

func (s *userService) Login(email, password string) (*models.Customer, error) {
	c, err := s.customerRepo.GetByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !checkPassword(c.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return c, nil
}

func (s *userService) GetCustomer(id uint) (*models.Customer, error) {
	c, err := s.customerRepo.GetByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (s *userService) AdminLogin(username, password string) (*models.Admin, error) {
	a, err := s.adminRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !checkPassword(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

func (s *userService) EnsureAdmin(username, password string) (*models.Admin, bool, error) {
	a, err := s.adminRepo.GetByUsername(username)
	if err == nil {
		return a, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, false, err
	}
	a = &models.Admin{Username: username, PasswordHash: hash}
	if err := s.adminRepo.Create(a); err != nil {
		return nil, false, fmt.Errorf("failed to create admin: %w", err)
	}
	return a, true, nil
}
