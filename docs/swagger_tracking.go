package docs

// @title           Verista Tracking Service API
// @version         1.0
// @description     Tracking service handles trip lifecycle for school transport vehicles, student boarding status, realtime location ingest and fan-out over WebSockets, and driver incident reports.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
