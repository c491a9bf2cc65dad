package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/catalog-api/internal/config"
	"github.com/javajoker/catalog-api/internal/i18n"
	"github.com/javajoker/catalog-api/internal/models"
	"github.com/javajoker/catalog-api/internal/repository"
	"github.com/javajoker/catalog-api/internal/session"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type APITestSuite struct {
	suite.Suite
	router   *gin.Engine
	store    *repository.MemoryStore
	sessions session.Store
	cancel   context.CancelFunc

	adminToken     string
	supplierToken  string
	rivalToken     string
	customerTokens []string
	categoryID     uint
}

func (s *APITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(i18n.Initialize())
}

func (s *APITestSuite) SetupTest() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	cfg := &config.Config{
		Session:   config.SessionConfig{TTL: 1},
		Storage:   config.StorageConfig{LocalDir: s.T().TempDir(), PublicBaseURL: "http://localhost/uploads", MaxImageSize: 1 << 20},
		RateLimit: config.RateLimitConfig{GeneralPerSecond: 1000, GeneralBurst: 1000, AuthPerMinute: 1000},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	s.store = repository.NewMemoryStore()
	s.sessions = session.NewJWTStore("test-secret", time.Hour)

	router, err := Initialize(ctx, Dependencies{Config: cfg, Store: s.store, Sessions: s.sessions})
	s.Require().NoError(err)
	s.router = router

	s.adminToken = s.userToken("admin", models.User{IsAdmin: true})
	s.supplierToken = s.userToken("supplier", models.User{IsSupplier: true})
	s.rivalToken = s.userToken("rival", models.User{IsSupplier: true})
	s.customerTokens = []string{
		s.userToken("alice", models.User{IsCustomer: true}),
		s.userToken("bob", models.User{IsCustomer: true}),
	}

	category := &models.Category{Name: "Books", Slug: "books", IsActive: true}
	s.Require().NoError(s.store.CreateCategory(ctx, category))
	s.categoryID = category.ID
}

func (s *APITestSuite) TearDownTest() {
	s.cancel()
}

func (s *APITestSuite) userToken(username string, flags models.User) string {
	user := flags
	user.Username = username
	user.Email = username + "@example.com"
	user.IsActive = true
	s.Require().NoError(user.SetPassword("password123"))
	s.Require().NoError(s.store.CreateUser(context.Background(), &user))

	token, err := s.sessions.Issue(context.Background(), user.Identity())
	s.Require().NoError(err)
	return token
}

func (s *APITestSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func (s *APITestSuite) createProduct(name string, stock int, categoryID uint) models.Product {
	w, resp := s.do(http.MethodPost, "/products/create", s.supplierToken, gin.H{
		"name":        name,
		"description": "a product",
		"price":       "12.50",
		"stock":       stock,
		"category":    categoryID,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var product models.Product
	s.Require().NoError(json.Unmarshal(resp.Data, &product))
	return product
}

func (s *APITestSuite) productRating(slug string) float64 {
	w, resp := s.do(http.MethodGet, "/products/detail/"+slug, "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var product models.Product
	s.Require().NoError(json.Unmarshal(resp.Data, &product))
	return product.Rating
}

func (s *APITestSuite) TestHealth() {
	w, _ := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (s *APITestSuite) TestProducts_StockGuardScenario() {
	w, _ := s.do(http.MethodGet, "/products/", "", nil)
	s.Equal(http.StatusNotFound, w.Code)

	product := s.createProduct("Go in Action", 0, s.categoryID)

	w, _ = s.do(http.MethodGet, "/products/", "", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodPut, "/products/detail/"+product.Slug, s.supplierToken, gin.H{
		"name":      "Go in Action",
		"price":     "12.50",
		"stock":     5,
		"category":  s.categoryID,
		"is_active": true,
	})
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	w, resp := s.do(http.MethodGet, "/products/", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var products []models.Product
	s.Require().NoError(json.Unmarshal(resp.Data, &products))
	s.Require().Len(products, 1)
	s.Equal("go-in-action", products[0].Slug)
	s.Equal("12.5", products[0].Price.String())
}

func (s *APITestSuite) TestProducts_CategoryScenario() {
	ctx := context.Background()
	fiction := &models.Category{Name: "Fiction", Slug: "fiction", ParentID: &s.categoryID, IsActive: true}
	poetry := &models.Category{Name: "Poetry", Slug: "poetry", ParentID: &s.categoryID, IsActive: true}
	s.Require().NoError(s.store.CreateCategory(ctx, fiction))
	s.Require().NoError(s.store.CreateCategory(ctx, poetry))

	s.createProduct("Atlas", 1, s.categoryID)
	s.createProduct("Novel", 1, fiction.ID)
	s.createProduct("Sonnets", 1, poetry.ID)

	w, resp := s.do(http.MethodGet, "/products/books", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var products []models.Product
	s.Require().NoError(json.Unmarshal(resp.Data, &products))
	s.Len(products, 3)

	w, _ = s.do(http.MethodGet, "/products/unknown", "", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodGet, "/products/detail/unknown", "", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/categories/delete?category_id=%d", poetry.ID), s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	w, resp = s.do(http.MethodGet, "/products/books", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(resp.Data, &products))
	s.Len(products, 2)

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/categories/delete?category_id=%d", s.categoryID), s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/products/books", "", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, resp = s.do(http.MethodPost, "/categories/create", s.adminToken, gin.H{"name": "Books"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var books models.Category
	s.Require().NoError(json.Unmarshal(resp.Data, &books))
	s.Equal(s.categoryID, books.ID)
}

func (s *APITestSuite) TestProducts_Authorization() {
	w, _ := s.do(http.MethodPost, "/products/create", "", gin.H{"name": "X", "category": s.categoryID})
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPost, "/products/create", s.customerTokens[0], gin.H{"name": "X", "category": s.categoryID})
	s.Equal(http.StatusUnauthorized, w.Code)

	product := s.createProduct("Owned", 3, s.categoryID)

	w, _ = s.do(http.MethodPut, "/products/detail/"+product.Slug, s.rivalToken, gin.H{"name": "Hijacked", "stock": 1, "category": s.categoryID})
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/products/delete?product_id=%d", product.ID), s.rivalToken, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPut, "/products/detail/missing", s.supplierToken, gin.H{"name": "X", "category": s.categoryID})
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodDelete, "/products/delete?product_id=abc", s.supplierToken, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/products/delete?product_id=%d", product.ID), s.adminToken, nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/products/detail/"+product.Slug, "", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APITestSuite) TestProducts_InvalidCategoryIsUnprocessable() {
	w, resp := s.do(http.MethodPost, "/products/create", s.supplierToken, gin.H{"name": "Lost", "category": 9999})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Require().NotNil(resp.Error)
	s.Equal("UNPROCESSABLE", resp.Error.Code)
}

func (s *APITestSuite) TestReviews_RatingScenario() {
	product := s.createProduct("Rated Book", 4, s.categoryID)

	w, _ := s.do(http.MethodPost, "/reviews/create", s.customerTokens[0], gin.H{"grade": 4, "product_id": product.ID, "comment": "solid"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w, resp := s.do(http.MethodPost, "/reviews/create", s.customerTokens[1], gin.H{"grade": 2, "product_id": product.ID, "comment": "dull"})
	s.Require().Equal(http.StatusCreated, w.Code)
	var created struct {
		Rating models.Rating `json:"rating"`
		Review models.Review `json:"review"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &created))
	s.Equal(created.Rating.ID, created.Review.RatingID)

	s.Equal(3.0, s.productRating(product.Slug))

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/reviews/delete?rating_id=%d", created.Rating.ID), s.customerTokens[1], nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(3.0, s.productRating(product.Slug))

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/reviews/delete?rating_id=%d", created.Rating.ID), s.adminToken, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(4.0, s.productRating(product.Slug))

	w, _ = s.do(http.MethodDelete, "/reviews/delete?rating_id=9999", s.adminToken, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, resp = s.do(http.MethodGet, "/reviews/", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var listing struct {
		Reviews []models.Review `json:"reviews"`
		Ratings []models.Rating `json:"ratings"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &listing))
	s.Len(listing.Reviews, 2)
	s.Len(listing.Ratings, 2)

	w, _ = s.do(http.MethodGet, "/reviews/"+product.Slug, "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APITestSuite) TestReviews_Errors() {
	product := s.createProduct("Quiet Book", 4, s.categoryID)

	w, _ := s.do(http.MethodGet, "/reviews/"+product.Slug, "", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodPost, "/reviews/create", s.supplierToken, gin.H{"grade": 5, "product_id": product.ID})
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPost, "/reviews/create", s.customerTokens[0], gin.H{"grade": 5, "product_id": 9999})
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	w, resp := s.do(http.MethodPost, "/reviews/create", s.customerTokens[0], gin.H{"grade": 9, "product_id": product.ID})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Require().NotNil(resp.Error)
	s.Equal("VALIDATION_ERROR", resp.Error.Code)
}

func (s *APITestSuite) TestAuthFlow() {
	w, _ := s.do(http.MethodPost, "/auth/register", "", gin.H{"username": "newbie", "email": "newbie@example.com", "password": "password123"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w, resp := s.do(http.MethodPost, "/auth/token", "", gin.H{"username": "newbie", "password": "password123"})
	s.Require().Equal(http.StatusOK, w.Code)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &login))
	s.NotEmpty(login.AccessToken)

	w, resp = s.do(http.MethodGet, "/auth/me", login.AccessToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var me models.User
	s.Require().NoError(json.Unmarshal(resp.Data, &me))
	s.Equal("newbie", me.Username)
	s.True(me.IsCustomer)
	s.NotContains(string(resp.Data), "password")

	w, _ = s.do(http.MethodPost, "/auth/logout", login.AccessToken, nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/auth/me", login.AccessToken, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPost, "/auth/token", "", gin.H{"username": "newbie", "password": "wrong-password"})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APITestSuite) TestCategoriesAndPermissions() {
	w, _ := s.do(http.MethodPost, "/categories/create", s.supplierToken, gin.H{"name": "Comics"})
	s.Equal(http.StatusUnauthorized, w.Code)

	w, resp := s.do(http.MethodPost, "/categories/create", s.adminToken, gin.H{"name": "Comics", "parent_id": s.categoryID})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var comics models.Category
	s.Require().NoError(json.Unmarshal(resp.Data, &comics))
	s.Equal("comics", comics.Slug)

	w, _ = s.do(http.MethodPut, fmt.Sprintf("/categories/update?category_id=%d", comics.ID), s.adminToken, gin.H{"name": "Graphic Novels", "parent_id": s.categoryID})
	s.Equal(http.StatusOK, w.Code)

	w, resp = s.do(http.MethodGet, "/categories/", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var tree []models.Category
	s.Require().NoError(json.Unmarshal(resp.Data, &tree))
	s.Require().Len(tree, 1)
	s.Require().Len(tree[0].Children, 1)
	s.Equal("graphic-novels", tree[0].Children[0].Slug)

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/categories/delete?category_id=%d", comics.ID), s.adminToken, nil)
	s.Equal(http.StatusOK, w.Code)

	user, err := s.store.GetUserByUsername(context.Background(), "alice")
	s.Require().NoError(err)

	w, _ = s.do(http.MethodPut, fmt.Sprintf("/permission/supplier?user_id=%d", user.ID), s.customerTokens[0], nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w, resp = s.do(http.MethodPut, fmt.Sprintf("/permission/supplier?user_id=%d", user.ID), s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var updated models.User
	s.Require().NoError(json.Unmarshal(resp.Data, &updated))
	s.True(updated.IsSupplier)
	s.False(updated.IsCustomer)
}

func (s *APITestSuite) TestUploadImage() {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "cover.gif")
	s.Require().NoError(err)
	_, err = part.Write([]byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"))
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/products/images", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.supplierToken)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Contains(w.Body.String(), "http://localhost/uploads/products/")
	s.Contains(w.Body.String(), `"mime_type":"image/gif"`)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
