package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Oceanbluesol/cmhindia/config"
	"github.com/Oceanbluesol/cmhindia/internal/cache"
	"github.com/Oceanbluesol/cmhindia/internal/middleware"
	"github.com/Oceanbluesol/cmhindia/internal/models"
	"github.com/Oceanbluesol/cmhindia/internal/storage"
)

// pngBytes is a minimal payload http.DetectContentType reports as image/png.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	store  *storage.DiskStore
	cfg    *config.Config
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Profile{}, &models.Event{}, &models.RSVP{}))

	store := storage.NewDiskStore(t.TempDir(), "/uploads")

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour

	r := gin.New()
	r.Use(middleware.ConfigMiddleware(cfg))
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.CacheMiddleware(cache.New(nil, 0)))
	r.Use(middleware.StorageMiddleware(store))

	r.POST("/auth/register", Register)
	r.POST("/auth/login", Login)
	r.POST("/auth/logout", Logout)
	r.GET("/events", ListEvents)
	r.GET("/events/featured", FeaturedEvents)
	r.GET("/events/:id", GetEvent)
	r.POST("/events/:id/rsvp", SubmitRSVP)

	protected := r.Group("/")
	protected.Use(middleware.AuthRequired(cfg.Auth.JWTSecret))
	{
		protected.GET("/account", GetProfile)
		protected.POST("/account", UpdateProfile)
		protected.GET("/dashboard/events", MyEvents)
		protected.POST("/dashboard/events", CreateEvent)
		protected.POST("/dashboard/events/:id", UpdateEvent)
		protected.POST("/dashboard/events/:id/delete", DeleteEvent)
		protected.GET("/dashboard/rsvps", MyEventRSVPs)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(cfg.Auth.JWTSecret), middleware.AdminRequired())
	{
		admin.GET("", Overview)
		admin.GET("/events", AdminListEvents)
		admin.GET("/events/:id", AdminGetEvent)
		admin.POST("/events/new", AdminCreateEvent)
		admin.POST("/events/approve", ApproveEvent)
		admin.POST("/events/reject", RejectEvent)
		admin.POST("/events/pending", PendingEvent)
		admin.POST("/events/feature", FeatureEvent)
		admin.POST("/events/update", AdminUpdateEvent)
		admin.POST("/events/delete", AdminDeleteEvent)
	}

	return &testEnv{router: r, db: db, store: store, cfg: cfg}
}

// signIn creates a user and profile with the given role and returns a valid
// session cookie for them.
func (env *testEnv) signIn(t *testing.T, email, role string) (*models.User, *http.Cookie) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{ID: uuid.New(), Email: email, Password: string(hashed)}
	require.NoError(t, env.db.Create(&user).Error)

	profile := models.Profile{ID: user.ID, Role: role, DisplayName: strings.SplitN(email, "@", 2)[0]}
	require.NoError(t, env.db.Create(&profile).Error)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := token.SignedString([]byte(env.cfg.Auth.JWTSecret))
	require.NoError(t, err)

	return &user, &http.Cookie{Name: middleware.SessionCookie, Value: tokenString}
}

func (env *testEnv) createEvent(t *testing.T, owner uuid.UUID, mutate func(*models.Event)) *models.Event {
	t.Helper()

	date := time.Now().UTC().AddDate(0, 0, 7)
	org := "Test Org"
	desc := "A test event"
	loc := "Community Hall"
	event := models.Event{
		UserID:              owner,
		Name:                "Test Event",
		OrganizationName:    &org,
		Description:         &desc,
		Category:            []string{"general"},
		Location:            &loc,
		EventDate:           &date,
		RegistrationFeeType: models.FeeTypeFree,
		IsUnlimited:         true,
		Status:              models.StatusApproved,
	}
	if mutate != nil {
		mutate(&event)
	}
	require.NoError(t, env.db.Create(&event).Error)
	return &event
}

// uploadTestPoster seeds a poster blob the way a real submission would and
// returns its public URL.
func uploadTestPoster(env *testEnv, owner string) (string, error) {
	key := storage.ObjectKey(storage.BucketEventPosters, owner, "poster.png")
	if err := env.store.Upload(key, bytes.NewReader(pngBytes), int64(len(pngBytes))); err != nil {
		return "", err
	}
	return env.store.PublicURL(key), nil
}

func (env *testEnv) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) postForm(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// postMultipart sends a multipart form, attaching content as a file under
// fileField when it is non-nil.
func (env *testEnv) postMultipart(t *testing.T, path string, fields map[string]string, fileField, filename string, content []byte, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if content != nil {
		part, err := writer.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func requireRedirect(t *testing.T, w *httptest.ResponseRecorder, locationPrefix string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, w.Code, "body: %s", w.Body.String())
	require.True(t, strings.HasPrefix(w.Header().Get("Location"), locationPrefix),
		"expected redirect to %s, got %s", locationPrefix, w.Header().Get("Location"))
}
