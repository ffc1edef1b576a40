package swagger

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed swagger.json
var swaggerDoc []byte

// ServeSwaggerDoc returns a handler serving the embedded OpenAPI document
func ServeSwaggerDoc() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", swaggerDoc)
	}
}
