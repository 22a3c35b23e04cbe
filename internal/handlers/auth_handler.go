package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Oceanbluesol/cmhindia/internal/helpers"
	"github.com/Oceanbluesol/cmhindia/internal/middleware"
	"github.com/Oceanbluesol/cmhindia/internal/models"
)

func Register(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	if email == "" || !strings.Contains(email, "@") {
		helpers.RedirectWithError(c, "/auth/signup", "Please enter a valid email address.")
		return
	}
	if len(password) < 6 {
		helpers.RedirectWithError(c, "/auth/signup", "Password must be at least 6 characters.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RedirectWithError(c, "/auth/signup", "Database connection not found.")
		return
	}

	var existingUser models.User
	if result := gormDB.Where("email = ?", email).First(&existingUser); result.Error == nil {
		helpers.RedirectWithError(c, "/auth/signup", "An account with this email already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		helpers.RedirectWithError(c, "/auth/signup", "Failed to create account.")
		return
	}

	user := models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hashedPassword),
	}
	if err := gormDB.Create(&user).Error; err != nil {
		helpers.RedirectWithError(c, "/auth/signup", err.Error())
		return
	}

	helpers.Redirect(c, "/auth/verify")
}

func Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RedirectWithError(c, "/auth/login", "Database connection not found.")
		return
	}

	var user models.User
	if err := gormDB.Where("email = ?", email).First(&user).Error; err != nil {
		helpers.RedirectWithError(c, "/auth/login", "Invalid credentials.")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		helpers.RedirectWithError(c, "/auth/login", "Invalid credentials.")
		return
	}

	profile, err := ensureProfile(gormDB, &user)
	if err != nil {
		helpers.RedirectWithError(c, "/auth/login", err.Error())
		return
	}

	cfg := middleware.GetConfig(c)
	if cfg == nil || cfg.Auth.JWTSecret == "" {
		helpers.RedirectWithError(c, "/auth/login", "Session secret not configured.")
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    profile.Role,
		"exp":     time.Now().Add(cfg.Auth.TokenTTL).Unix(),
	})
	tokenString, err := token.SignedString([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		helpers.RedirectWithError(c, "/auth/login", "Failed to create session.")
		return
	}

	c.SetCookie(middleware.SessionCookie, tokenString, int(cfg.Auth.TokenTTL.Seconds()), "/", "", false, true)

	destination := "/dashboard"
	if profile.Role == models.RoleAdmin {
		destination = "/admin"
	}
	helpers.Redirect(c, destination)
}

func Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	helpers.Redirect(c, "/")
}

// ensureProfile creates the profile row on first login. Existing rows are
// returned untouched so an admin role is never overwritten.
func ensureProfile(gormDB *gorm.DB, user *models.User) (*models.Profile, error) {
	var profile models.Profile
	err := gormDB.Where("id = ?", user.ID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	displayName := strings.SplitN(user.Email, "@", 2)[0]
	if displayName == "" {
		displayName = "user"
	}
	profile = models.Profile{
		ID:          user.ID,
		Role:        models.RoleUser,
		DisplayName: displayName,
	}
	if err := gormDB.Create(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
