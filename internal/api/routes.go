package api

import (
	"net/http"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Trainer      *TrainerHandler
	Nutritionist *NutritionistHandler
	Workout      *WorkoutHandler
	Nutrition    *NutritionHandler
	Progress     *ProgressHandler
	Notification *NotificationHandler
	Subscription *SubscriptionHandler
}

// NewHandlers builds the handler set from the service layer.
func NewHandlers(
	authService service.AuthService,
	userService service.UserService,
	trainerService service.TrainerService,
	nutritionistService service.NutritionistService,
	workoutService service.WorkoutService,
	nutritionService service.NutritionService,
	progressService service.ProgressService,
	notificationService service.NotificationService,
	subscriptionService service.SubscriptionService,
	webhookSecret string,
	log *logrus.Logger,
) Handlers {
	return Handlers{
		Auth:         NewAuthHandler(authService),
		User:         NewUserHandler(userService),
		Trainer:      NewTrainerHandler(trainerService, progressService),
		Nutritionist: NewNutritionistHandler(nutritionistService),
		Workout:      NewWorkoutHandler(workoutService),
		Nutrition:    NewNutritionHandler(nutritionService),
		Progress:     NewProgressHandler(progressService),
		Notification: NewNotificationHandler(notificationService),
		Subscription: NewSubscriptionHandler(subscriptionService, webhookSecret, log),
	}
}

// SetupRoutes mounts the full HTTP surface under /api/v1.
func SetupRoutes(router *gin.Engine, jwtSecret string, h Handlers) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
		authGroup.POST("/reset-password", h.Auth.ResetPassword)
	}

	// Gateway calls carry their own signature, not a user token.
	apiV1.POST("/webhooks/payment", h.Subscription.Webhook)

	// Plan catalog is public so the pricing page needs no login.
	apiV1.GET("/subscriptions/plans", h.Subscription.ListPlans)

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.POST("/auth/change-password", h.Auth.ChangePassword)

		me := protected.Group("/me")
		{
			me.GET("", h.User.GetMe)
			me.PUT("", h.User.UpdateMe)
			me.PUT("/athlete", RoleMiddleware(domain.RoleAthlete), h.User.UpdateAthleteProfile)
			me.PUT("/trainer", RoleMiddleware(domain.RoleTrainer), h.User.UpdateTrainerProfile)
			me.PUT("/nutritionist", RoleMiddleware(domain.RoleNutritionist), h.User.UpdateNutritionistProfile)
		}

		trainer := protected.Group("/trainer", RoleMiddleware(domain.RoleTrainer))
		{
			trainer.POST("/athletes", h.Trainer.AssignAthlete)
			trainer.GET("/athletes", h.Trainer.ListAthletes)
			trainer.DELETE("/athletes/:id", h.Trainer.RemoveAthlete)
			trainer.GET("/athletes/:id/progress", h.Trainer.AthleteProgress)
			trainer.GET("/capacity", h.Trainer.Capacity)
			trainer.GET("/dashboard", h.Workout.TrainerDashboard)
			trainer.GET("/assignments", h.Workout.TrainerAssignments)
			trainer.POST("/assignments/:id/feedback", h.Workout.AddFeedback)
		}

		nutritionist := protected.Group("/nutritionist", RoleMiddleware(domain.RoleNutritionist))
		{
			nutritionist.POST("/clients", h.Nutritionist.AssignClient)
			nutritionist.GET("/clients", h.Nutritionist.ListClients)
			nutritionist.GET("/capacity", h.Nutritionist.Capacity)
		}

		exercises := protected.Group("/exercises")
		{
			exercises.POST("", RoleMiddleware(domain.RoleTrainer), h.Workout.CreateExercise)
			exercises.GET("", RoleMiddleware(domain.RoleTrainer), h.Workout.ListExercises)
		}

		templates := protected.Group("/workout-templates", RoleMiddleware(domain.RoleTrainer))
		{
			templates.POST("", h.Workout.CreateTemplate)
			templates.GET("", h.Workout.ListTemplates)
			templates.GET("/:id", h.Workout.GetTemplate)
		}

		workouts := protected.Group("/workouts")
		{
			workouts.POST("/assign", RoleMiddleware(domain.RoleTrainer), h.Workout.AssignWorkout)
			workouts.GET("", RoleMiddleware(domain.RoleAthlete), h.Workout.AthleteAssignments)
			workouts.PATCH("/:id/status", RoleMiddleware(domain.RoleAthlete), h.Workout.UpdateStatus)
			workouts.POST("/:id/complete", RoleMiddleware(domain.RoleAthlete), h.Workout.CompleteWorkout)
		}

		protected.GET("/dashboard", RoleMiddleware(domain.RoleAthlete), h.Workout.Dashboard)

		foods := protected.Group("/foods")
		{
			foods.GET("/search", h.Nutrition.SearchFoods)
			foods.POST("", RoleMiddleware(domain.RoleNutritionist), h.Nutrition.CreateFood)
		}

		plans := protected.Group("/nutrition-plans")
		{
			plans.POST("", RoleMiddleware(domain.RoleNutritionist), h.Nutrition.CreatePlan)
			plans.GET("", RoleMiddleware(domain.RoleNutritionist, domain.RoleAthlete), h.Nutrition.ListPlans)
			plans.GET("/:id", h.Nutrition.GetPlan)
			plans.PATCH("/:id/status", RoleMiddleware(domain.RoleNutritionist), h.Nutrition.UpdatePlanStatus)
			plans.GET("/:id/totals", h.Nutrition.PlanTotals)
		}
		protected.GET("/meals/:id/totals", h.Nutrition.MealTotals)

		intake := protected.Group("/food-logs", RoleMiddleware(domain.RoleAthlete))
		{
			intake.POST("", h.Nutrition.LogFood)
			intake.GET("", h.Nutrition.ListFoodLogs)
			intake.GET("/daily", h.Nutrition.DailyIntake)
		}

		analysisGroup := protected.Group("/food-analysis")
		{
			analysisGroup.POST("", h.Nutrition.AnalyzeFood)
			analysisGroup.GET("/history", h.Nutrition.AnalysisHistory)
		}

		progress := protected.Group("/progress", RoleMiddleware(domain.RoleAthlete))
		{
			progress.POST("", h.Progress.RecordProgress)
			progress.GET("", h.Progress.ListProgress)
			progress.POST("/photos/upload-url", h.Progress.PhotoUploadURL)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.POST("", RoleMiddleware(domain.RoleTrainer, domain.RoleNutritionist), h.Notification.Create)
			notifications.GET("", h.Notification.List)
			notifications.GET("/unread-count", h.Notification.UnreadCount)
			notifications.PATCH("/:id/read", h.Notification.MarkRead)
			notifications.PATCH("/read-all", h.Notification.MarkAllRead)
			notifications.DELETE("/:id", h.Notification.Delete)
		}

		messages := protected.Group("/messages")
		{
			messages.POST("", h.Notification.SendMessage)
			messages.GET("/inbox", h.Notification.Inbox)
			messages.GET("/outbox", h.Notification.Outbox)
			messages.PATCH("/:id/read", h.Notification.MarkMessageRead)
		}

		subscriptions := protected.Group("/subscriptions")
		{
			subscriptions.GET("/current", h.Subscription.Current)
			subscriptions.POST("", RoleMiddleware(domain.RoleTrainer, domain.RoleNutritionist), h.Subscription.Subscribe)
			subscriptions.DELETE("/current", RoleMiddleware(domain.RoleTrainer, domain.RoleNutritionist), h.Subscription.Cancel)
		}
	}
}
