package router

import (
	"time"

	"surveyreg/internal/handlers"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(429, "Too many requests. Try again later.")
}

func Setup(log *zap.Logger) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	// Handlers and routes
	authHandler := handlers.NewAuthHandler(log)
	surveyHandler := handlers.NewSurveyHandler(log)
	questionHandler := handlers.NewQuestionHandler(log)
	answerHandler := handlers.NewAnswerHandler(log)
	userHandler := handlers.NewUserHandler(log)

	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 5,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	api := router.Group("/api")
	api.POST("/auth/register", limiter, authHandler.Register)
	api.POST("/auth/login", limiter, authHandler.Login)

	authorized := api.Group("/")
	authorized.Use(AuthRequired())
	{
		surveyRoutes := authorized.Group("/surveys")
		{
			surveyRoutes.POST("", surveyHandler.Create)
			surveyRoutes.GET("", surveyHandler.List)
			surveyRoutes.GET("/:id", surveyHandler.Get)
			surveyRoutes.PATCH("/:id", surveyHandler.Patch)
			surveyRoutes.POST("/:id/replace", surveyHandler.Replace)
			surveyRoutes.DELETE("/:id", surveyHandler.Delete)

			surveyRoutes.POST("/:id/answers", answerHandler.Submit)
			surveyRoutes.GET("/:id/answers", answerHandler.Get)
			surveyRoutes.GET("/:id/answered", answerHandler.GetAnswered)
		}

		questionRoutes := authorized.Group("/questions")
		{
			questionRoutes.POST("", questionHandler.Create)
			questionRoutes.GET("", questionHandler.List)
			questionRoutes.GET("/:id", questionHandler.Get)
			questionRoutes.POST("/:id/replace", questionHandler.Replace)
			questionRoutes.DELETE("/:id", questionHandler.Delete)
		}

		authorized.POST("/choice-sets", questionHandler.CreateChoiceSet)

		profileRoutes := authorized.Group("/profile")
		{
			profileRoutes.GET("", userHandler.Me)
			profileRoutes.POST("/update-info", userHandler.UpdateInfo)
			profileRoutes.POST("/update-password", userHandler.UpdatePassword)
			profileRoutes.POST("/delete", userHandler.DeleteAccount)
		}
	}

	return router
}
