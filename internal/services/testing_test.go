// internal/services/testing_test.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bayarlink/bayarlink-backend/internal/models"
	"github.com/bayarlink/bayarlink-backend/internal/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.PaymentLink{},
		&models.PaymentProof{},
	))

	return db
}

// fixedClock returns a Clock reading from *now, so tests can move time.
func fixedClock(now *time.Time) Clock {
	return func() time.Time {
		return *now
	}
}

// memoryStorage is an in-memory Storage for tests.
type memoryStorage struct {
	files map[string][]byte
	seq   int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{files: make(map[string][]byte)}
}

func (m *memoryStorage) Upload(file multipart.File, header *multipart.FileHeader, folder string) (*UploadResult, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	m.seq++
	key := fmt.Sprintf("%s/%d_%s", folder, m.seq, header.Filename)
	m.files[key] = data

	return &UploadResult{
		URL:      "mem://" + key,
		Key:      key,
		Size:     int64(len(data)),
		MimeType: header.Header.Get("Content-Type"),
	}, nil
}

func (m *memoryStorage) Open(key string) (io.ReadCloser, error) {
	data, ok := m.files[key]
	if !ok {
		return nil, fmt.Errorf("key %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryStorage) Exists(key string) bool {
	_, ok := m.files[key]
	return ok
}

func (m *memoryStorage) Delete(key string) error {
	delete(m.files, key)
	return nil
}

// uploadFile adapts a byte slice to multipart.File.
type uploadFile struct {
	*bytes.Reader
}

func (uploadFile) Close() error { return nil }

func newUpload(name string, data []byte) (multipart.File, *multipart.FileHeader) {
	return uploadFile{bytes.NewReader(data)}, &multipart.FileHeader{
		Filename: name,
		Size:     int64(len(data)),
	}
}

func jpegBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	return data
}

func pngBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	return data
}

func gifBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte("GIF89a"))
	return data
}

func paginationParams(page, limit int) utils.PaginationParams {
	return utils.PaginationParams{Page: page, Limit: limit}
}

func createTestProduct(t *testing.T, db *gorm.DB, name string, price float64) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:        name,
		Description: "Test product",
		Price:       price,
		IsActive:    true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createTestLink(t *testing.T, db *gorm.DB, product *models.Product, expiresAt time.Time) *models.PaymentLink {
	t.Helper()

	link := &models.PaymentLink{
		ProductID:     product.ID,
		CustomerName:  "Budi Santoso",
		CustomerEmail: "budi@example.com",
		Status:        models.LinkStatusPending,
		ExpiresAt:     expiresAt,
	}
	require.NoError(t, db.Create(link).Error)
	return link
}
