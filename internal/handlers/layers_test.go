package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/geowfs/wfs-gateway/api/v1"
	"github.com/geowfs/wfs-gateway/internal/handlers"
	"github.com/geowfs/wfs-gateway/internal/models"
	"github.com/geowfs/wfs-gateway/pkg/filter"
)

var _ = Describe("Layer Handlers", func() {
	var (
		mockCatalog  *MockCatalogService
		mockFeatures *MockFeatureService
		router       *gin.Engine
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		mockCatalog = &MockCatalogService{
			Layers:       []models.Layer{roadsLayer()},
			StatusResult: models.SyncStatus{State: models.SyncStateIdle},
		}
		mockFeatures = &MockFeatureService{}
		router = gin.New()
		handlers.New(mockCatalog, mockFeatures, nil).Register(router.Group("/api/v1"))
	})

	Describe("ListLayers", func() {
		// Given a catalog with one layer
		// When we list layers
		// Then it should return the layer summary without columns
		It("should list layers", func() {
			// Arrange
			req := httptest.NewRequest(http.MethodGet, "/api/v1/layers", nil)
			w := httptest.NewRecorder()

			// Act
			router.ServeHTTP(w, req)

			// Assert
			Expect(w.Code).To(Equal(http.StatusOK))
			var response v1.LayerList
			Expect(json.Unmarshal(w.Body.Bytes(), &response)).To(Succeed())
			Expect(response.Total).To(Equal(1))
			Expect(response.Layers[0].Name).To(Equal("roads"))
			Expect(response.Layers[0].GeometryColumns).To(Equal([]string{"geom"}))
			Expect(response.Layers[0].Columns).To(BeEmpty())
		})

		It("should return an empty list", func() {
			// Arrange
			mockCatalog.Layers = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/layers", nil)
			w := httptest.NewRecorder()

			// Act
			router.ServeHTTP(w, req)

			// Assert
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"layers":[]`))
		})

		It("should return 500 when the store fails", func() {
			// Arrange
			mockCatalog.ListError = errors.New("database is locked")
			req := httptest.NewRequest(http.MethodGet, "/api/v1/layers", nil)
			w := httptest.NewRecorder()

			// Act
			router.ServeHTTP(w, req)

			// Assert
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("GetLayer", func() {
		It("should return the layer with columns", func() {
			// Arrange
			req := httptest.NewRequest(http.MethodGet, "/api/v1/layers/roads", nil)
			w := httptest.NewRecorder()

			// Act
			router.ServeHTTP(w, req)

			// Assert
			Expect(w.Code).To(Equal(http.StatusOK))
			var response v1.Layer
			Expect(json.Unmarshal(w.Body.Bytes(), &response)).To(Succeed())
			Expect(*response.IdColumn).To(Equal("gid"))
			Expect(response.Source).To(Equal(`"public"."roads"`))
			Expect(response.Columns).To(HaveLen(3))
		})

		It("should return 404 for an unknown layer", func() {
			// Arrange
			req := httptest.NewRequest(http.MethodGet, "/api/v1/layers/rivers", nil)
			w := httptest.NewRecorder()

			// Act
			router.ServeHTTP(w, req)

			// Assert
			Expect(w.Code).To(Equal(http.StatusNotFound))
			var response v1.Exception
			Expect(json.Unmarshal(w.Body.Bytes(), &response)).To(Succeed())
			Expect(response.Error).To(ContainSubstring(`layer "rivers" not found`))
		})
	})

	Describe("CompileFilter", func() {
		const document = `<Filter><PropertyIsEqualTo><PropertyName>name</PropertyName><Literal>Main</Literal></PropertyIsEqualTo></Filter>`

		// Given a Filter document for a known layer
		// When we post it to the filter endpoint
		// Then it should return the compiled WHERE expression
		It("should return the SQL", func() {
			// Arrange
			mockFeatures.SQL = `"name" = 'Main'`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/layers/roads/filter", strings.NewReader(document))
			req.Header.Set("Content-Type", "application/xml")
			w := httptest.NewRecorder()

			// Act
			router.ServeHTTP(w, req)

			// Assert
			Expect(w.Code).To(Equal(http.StatusOK))
			var response v1.CompileResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &response)).To(Succeed())
			Expect(response.Sql).To(Equal(`"name" = 'Main'`))
			Expect(mockFeatures.LastLayer).To(Equal("roads"))
			Expect(mockFeatures.LastDocument).To(Equal(document))
		})

		It("should return 400 for an empty body", func() {
			// Arrange
			req := httptest.NewRequest(http.MethodPost, "/api/v1/layers/roads/filter", nil)
			w := httptest.NewRecorder()

			// Act
			router.ServeHTTP(w, req)

			// Assert
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring(handlers.CodeMissingParameterValue))
		})

		It("should return 400 for an unknown property", func() {
			// Arrange
			mockFeatures.CompileError = &filter.Error{Kind: filter.UnknownProperty, Message: `"width" is not a column of roads`}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/layers/roads/filter", strings.NewReader(document))
			w := httptest.NewRecorder()

			// Act
			router.ServeHTTP(w, req)

			// Assert
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			var response v1.Exception
			Expect(json.Unmarshal(w.Body.Bytes(), &response)).To(Succeed())
			Expect(response.Code).To(Equal(handlers.CodeInvalidParameterValue))
			Expect(*response.Locator).To(Equal("FILTER"))
		})

		It("should return 413 for an oversized document", func() {
			// Arrange
			body := strings.Repeat(" ", 1<<20+1)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/layers/roads/filter", strings.NewReader(body))
			w := httptest.NewRecorder()

			// Act
			router.ServeHTTP(w, req)

			// Assert
			Expect(w.Code).To(Equal(http.StatusRequestEntityTooLarge))
		})
	})
})
