package services

import (
	"gadup/internal/models"
	"gadup/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves products, optionally filtered by category or
// featured flag.
func (s *ProductService) GetAllProducts(filter repositories.ProductFilter) ([]models.Product, error) {
	return s.repo.GetAll(filter)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct creates a new product. The discount percentage is always
// derived from price and discount price, never taken from the request.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if product.Brand == "" {
		product.Brand = "No brand"
	}
	product.RecomputeDiscount()
	return s.repo.Create(product)
}

// UpdateProduct updates an existing product, rederiving the discount
// percentage from the new prices.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	product.RecomputeDiscount()
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}
