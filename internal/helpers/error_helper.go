package helpers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func HTTPStatusText(code int) string {
	return http.StatusText(code)
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   HTTPStatusText(statusCode),
		Message: customMessage,
	})
}

// RedirectWithError sends the browser back to a page with the error message in
// the query string, where the page renders it as a banner.
func RedirectWithError(c *gin.Context, path, message string) {
	c.Redirect(http.StatusSeeOther, path+"?error="+url.QueryEscape(message))
	c.Abort()
}

// RedirectWithSuccess sends the browser to a page with a success flag.
func RedirectWithSuccess(c *gin.Context, path, flag string) {
	c.Redirect(http.StatusSeeOther, path+"?success="+url.QueryEscape(flag))
	c.Abort()
}

// Redirect is a plain see-other redirect.
func Redirect(c *gin.Context, path string) {
	c.Redirect(http.StatusSeeOther, path)
	c.Abort()
}
