package swagger

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SwaggerConfig drives the rendered Swagger UI page
type SwaggerConfig struct {
	Title         string
	SwaggerDocURL string
	AuthURL       string
}

const swaggerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui-bundle.css" />
  <style>
    html { box-sizing: border-box; overflow-y: scroll; }
    *, *:before, *:after { box-sizing: inherit; }
    body { margin: 0; background: #fafafa; }
    #swagger-ui { max-width: none !important; }
  </style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui-bundle.js" charset="UTF-8"></script>
  <script src="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui-standalone-preset.js" charset="UTF-8"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "{{.SwaggerDocURL}}",
        dom_id: '#swagger-ui',
        deepLinking: true,
        persistAuthorization: true,
        presets: [SwaggerUIBundle.presets.apis, SwaggerUIStandalonePreset],
        layout: "StandaloneLayout",
        requestInterceptor: function(req) {
          var token = localStorage.getItem('swagger_bearer_token');
          if (token && !req.headers['Authorization']) {
            req.headers['Authorization'] = 'Bearer ' + token;
          }
          return req;
        },
        responseInterceptor: function(res) {
          // Capture the token issued by {{.AuthURL}} so later calls carry it
          try {
            if (res.url && res.url.indexOf('{{.AuthURL}}') !== -1 && res.status === 200) {
              var body = JSON.parse(res.text);
              if (body && body.data && body.data.token) {
                localStorage.setItem('swagger_bearer_token', body.data.token);
              }
            }
          } catch (e) { /* not a JSON auth response */ }
          return res;
        }
      });
    };
  </script>
</body>
</html>`

// ServeSwagger returns a handler that renders the Swagger UI page
func ServeSwagger(config SwaggerConfig) gin.HandlerFunc {
	tmpl := template.Must(template.New("swagger").Parse(swaggerHTML))
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusOK)
		if err := tmpl.Execute(c.Writer, config); err != nil {
			c.String(http.StatusInternalServerError, "failed to render swagger UI")
		}
	}
}
