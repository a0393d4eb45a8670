// internal/services/product_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayarlink/bayarlink-backend/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestCreateProductWithFile(t *testing.T) {
	db := newTestDB(t)
	storage := newMemoryStorage()
	svc := NewProductService(db, storage)

	file, header := newUpload("ebook.pdf", []byte("%PDF-1.4 contents"))
	product, err := svc.CreateProduct(&CreateProductRequest{
		Name:        "E-book Belajar Go",
		Description: "Panduan lengkap",
		Price:       floatPtr(150000),
	}, file, header)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, product.ID)
	assert.True(t, product.IsActive)
	assert.NotEmpty(t, product.FilePath)
	assert.True(t, storage.Exists(product.FilePath))
}

func TestCreateProductWithoutFile(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db, newMemoryStorage())

	product, err := svc.CreateProduct(&CreateProductRequest{
		Name:        "Konsultasi",
		Description: "Sesi 1 jam",
		Price:       floatPtr(0),
	}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, product.FilePath)
}

func TestCreateProductValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db, newMemoryStorage())

	cases := []struct {
		name string
		req  CreateProductRequest
	}{
		{"missing name", CreateProductRequest{Description: "d", Price: floatPtr(10)}},
		{"missing description", CreateProductRequest{Name: "n", Price: floatPtr(10)}},
		{"missing price", CreateProductRequest{Name: "n", Description: "d"}},
		{"negative price", CreateProductRequest{Name: "n", Description: "d", Price: floatPtr(-1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(&tc.req, nil, nil)
			require.Error(t, err)

			var count int64
			db.Model(&models.Product{}).Count(&count)
			assert.Zero(t, count)
		})
	}
}

func TestUpdateProductReplacesStoredFile(t *testing.T) {
	db := newTestDB(t)
	storage := newMemoryStorage()
	svc := NewProductService(db, storage)

	file, header := newUpload("v1.pdf", []byte("first version"))
	product, err := svc.CreateProduct(&CreateProductRequest{
		Name:        "E-book",
		Description: "Edisi pertama",
		Price:       floatPtr(100000),
	}, file, header)
	require.NoError(t, err)
	oldKey := product.FilePath

	inactive := false
	file, header = newUpload("v2.pdf", []byte("second version"))
	_, err = svc.UpdateProduct(product.ID, &UpdateProductRequest{
		Name:        "E-book Edisi Revisi",
		Description: "Edisi kedua",
		Price:       floatPtr(125000),
		IsActive:    &inactive,
	}, file, header)
	require.NoError(t, err)

	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.NotEqual(t, oldKey, stored.FilePath)
	assert.False(t, storage.Exists(oldKey), "previous file must be deleted")
	assert.True(t, storage.Exists(stored.FilePath))
	assert.Equal(t, "E-book Edisi Revisi", stored.Name)
	assert.Equal(t, 125000.0, stored.Price)
	assert.False(t, stored.IsActive)
}

func TestUpdateProductKeepsFileWhenNoneUploaded(t *testing.T) {
	db := newTestDB(t)
	storage := newMemoryStorage()
	svc := NewProductService(db, storage)

	file, header := newUpload("v1.pdf", []byte("contents"))
	product, err := svc.CreateProduct(&CreateProductRequest{
		Name:        "E-book",
		Description: "Edisi pertama",
		Price:       floatPtr(100000),
	}, file, header)
	require.NoError(t, err)

	_, err = svc.UpdateProduct(product.ID, &UpdateProductRequest{
		Name:        "E-book",
		Description: "Deskripsi baru",
		Price:       floatPtr(100000),
	}, nil, nil)
	require.NoError(t, err)

	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, product.FilePath, stored.FilePath)
	assert.True(t, storage.Exists(stored.FilePath))
}

func TestUpdateProductNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db, newMemoryStorage())

	_, err := svc.UpdateProduct(uuid.New(), &UpdateProductRequest{
		Name:        "n",
		Description: "d",
		Price:       floatPtr(10),
	}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDeleteProductCascadesLinksAndProofs(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	db := newTestDB(t)
	storage := newMemoryStorage()
	svc := NewProductService(db, storage)
	proofSvc := NewPaymentProofService(db, storage, fixedClock(&now), nil)

	file, header := newUpload("ebook.pdf", []byte("contents"))
	product, err := svc.CreateProduct(&CreateProductRequest{
		Name:        "E-book",
		Description: "d",
		Price:       floatPtr(100000),
	}, file, header)
	require.NoError(t, err)

	link := createTestLink(t, db, product, now.Add(7*24*time.Hour))
	submitTestProof(t, proofSvc, link.Token)

	require.NoError(t, svc.DeleteProduct(product.ID))

	assert.False(t, storage.Exists(product.FilePath))

	var products, links, proofs int64
	db.Model(&models.Product{}).Count(&products)
	db.Model(&models.PaymentLink{}).Count(&links)
	db.Model(&models.PaymentProof{}).Count(&proofs)
	assert.Zero(t, products)
	assert.Zero(t, links)
	assert.Zero(t, proofs)
}

func TestGetProductLimitsRecentLinks(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	db := newTestDB(t)
	svc := NewProductService(db, newMemoryStorage())

	product := createTestProduct(t, db, "E-book", 100000)
	for i := 0; i < 7; i++ {
		createTestLink(t, db, product, now.Add(7*24*time.Hour))
	}

	got, err := svc.GetProduct(product.ID)
	require.NoError(t, err)
	assert.Len(t, got.PaymentLinks, 5)
}

func TestListProductsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db, newMemoryStorage())

	createTestProduct(t, db, "Pertama", 10000)
	second := createTestProduct(t, db, "Kedua", 20000)
	require.NoError(t, db.Model(second).
		Update("created_at", time.Now().Add(time.Hour)).Error)

	products, total, err := svc.ListProducts(paginationParams(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, products, 2)
	assert.Equal(t, "Kedua", products[0].Name)
}
