package app

import (
	"edu_quiz_backend/docs"
	"edu_quiz_backend/internal/config"
	"edu_quiz_backend/internal/middleware"
	"edu_quiz_backend/internal/model"
	"edu_quiz_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	// Swagger 文档
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus 指标
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)
		api.POST("/register", c.auth.Register)
		api.POST("/login", c.auth.Login)
	}

	// 学生端路由
	student := api.Group("/student")
	student.Use(middleware.AuthMiddleware(cfg))
	student.Use(middleware.ActivityMiddleware(repos.user))
	{
		student.GET("/quizzes/:id", c.attempt.StudentQuizView)
		student.POST("/quizzes/:id/attempts", c.attempt.StartAttempt)
		student.GET("/quizzes/:id/attempts/current", c.attempt.GetAttempt)
		student.GET("/quizzes/:id/attempts", c.attempt.ListAttempts)
		student.PATCH("/attempts/:id/answers", c.attempt.SaveProgress)
		student.POST("/attempts/:id/submit", c.attempt.SubmitAttempt)
	}

	// 教师端路由
	teacher := api.Group("/teacher")
	teacher.Use(middleware.AuthMiddleware(cfg))
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/quizzes", c.quiz.CreateQuiz)
		teacher.GET("/quizzes", c.quiz.ListQuizzes)
		teacher.GET("/quizzes/:id", c.quiz.GetQuiz)
		teacher.PUT("/quizzes/:id/publish", c.quiz.SetPublished)
		teacher.GET("/quizzes/:id/attempts", c.quiz.ListQuizAttempts)
		teacher.GET("/attempts/:id", c.quiz.GetAttemptReview)
	}
}
