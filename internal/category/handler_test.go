package category_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/expense-approval/internal/category"
	categoryPostgres "github.com/frahmantamala/expense-approval/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/expense-approval/internal/core/datamodel/category"
	"github.com/frahmantamala/expense-approval/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Category Handler Integration", func() {
	var (
		db      *gorm.DB
		repo    *categoryPostgres.CategoryRepository
		handler *category.Handler
		slogger *slog.Logger
	)

	BeforeEach(func() {
		var err error
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		err = db.AutoMigrate(&categoryDatamodel.ExpenseCategory{})
		Expect(err).NotTo(HaveOccurred())

		repo = categoryPostgres.NewCategoryRepository(db)
		service := category.NewService(repo, true, slogger)
		handler = category.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		ctx := context.Background()
		for _, cat := range []*category.Category{
			{Name: "Travel", IsActive: true},
			{Name: "Meals", IsActive: true},
			{Name: "Retired", IsActive: false},
		} {
			Expect(repo.Create(ctx, category.ToDataModel(cat))).To(Succeed())
		}
	})

	It("should handle GET /categories request successfully", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
		w := httptest.NewRecorder()

		handler.GetCategories(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
		Expect(w.Header().Get(transport.DegradedHeader)).To(BeEmpty())

		var response []category.Category
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())

		names := make([]string, len(response))
		for i, cat := range response {
			names[i] = cat.Name
		}
		Expect(names).To(ConsistOf("Travel", "Meals"))
	})

	It("should return camelCase fields", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
		w := httptest.NewRecorder()

		handler.GetCategories(w, req)

		var raw []map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&raw)).To(Succeed())
		Expect(raw[0]).To(HaveKey("categoryId"))
		Expect(raw[0]).To(HaveKey("categoryName"))
		Expect(raw[0]).To(HaveKeyWithValue("isActive", true))
	})

	It("should flag placeholder data when the database is gone", func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
		w := httptest.NewRecorder()
		handler.GetCategories(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get(transport.DegradedHeader)).To(Equal("true"))
	})
})
