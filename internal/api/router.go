package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"skillup-tracker/internal/auth"
	"skillup-tracker/internal/repository"
	"skillup-tracker/internal/service"
)

// Dependencies wires the HTTP layer to the services it exposes.
type Dependencies struct {
	DB         Pinger
	Users      *repository.UserRepository
	Activities *service.ActivityService
	Categories *service.CategoryService
	Dashboard  *service.DashboardService
	Auth       auth.Config
	Logger     *zap.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(RequestID(), AccessLog(log.Named("http")), Recovery())

	router.GET("/healthz", NewHealthHandler(deps.DB).Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	activities := NewActivityHandler(deps.Activities)
	dashboard := NewDashboardHandler(deps.Dashboard)
	categories := NewCategoryHandler(deps.Categories)
	profile := NewProfileHandler(deps.Users)

	apiGroup := router.Group("/api")
	apiGroup.Use(AuthRequired(deps.Auth, deps.Users))
	{
		apiGroup.GET("/dashboard/stats/", dashboard.Stats)

		apiGroup.GET("/activities/", activities.List)
		apiGroup.POST("/activities/", activities.Create)
		apiGroup.GET("/activities/:id/", activities.Get)
		apiGroup.PUT("/activities/:id/", activities.Replace)
		apiGroup.PATCH("/activities/:id/", activities.Patch)
		apiGroup.DELETE("/activities/:id/", activities.Delete)

		apiGroup.GET("/categories/", categories.List)

		apiGroup.GET("/auth/profile/", profile.Profile)
	}

	return router
}
