package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-academic-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-academic-api/internal/middleware"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/internal/repository"
	"github.com/noah-isme/sma-academic-api/internal/service"
	"github.com/noah-isme/sma-academic-api/pkg/config"
	"github.com/noah-isme/sma-academic-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-academic-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-academic-api/pkg/middleware/requestid"
	"github.com/noah-isme/sma-academic-api/pkg/validation"
)

func newRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := validation.Default()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewClassCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	slotRepo := repository.NewRosterSlotRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	markRepo := repository.NewMarkRepository(db)
	deliberationRepo := repository.NewDeliberationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Timetable.CacheTTL, logr, redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	classSvc := service.NewClassService(classRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	assignmentSvc := service.NewClassCourseService(service.ClassCourseServiceParams{
		Assignments:   assignmentRepo,
		Classes:       classRepo,
		Courses:       courseRepo,
		Users:         userRepo,
		RolloverMonth: cfg.School.RolloverMonth,
		Validator:     validate,
		Logger:        logr,
	})
	studentSvc := service.NewStudentService(studentRepo, classRepo, validate, logr)
	timetableSvc := service.NewTimetableService(service.TimetableServiceParams{
		Timetables:  timetableRepo,
		Slots:       slotRepo,
		Assignments: assignmentRepo,
		Classes:     classRepo,
		Tx:          db,
		Cache:       cacheSvc,
		CacheTTL:    cfg.Timetable.CacheTTL,
		Metrics:     metrics,
		Validator:   validate,
		Logger:      logr,
	})
	attendanceSvc := service.NewAttendanceService(service.AttendanceServiceParams{
		Slots:      slotRepo,
		TeacherDay: slotRepo,
		Students:   studentRepo,
		Records:    attendanceRepo,
		Tx:         db,
		Location:   cfg.School.Location,
		Policy:     cfg.Attendance.ResubmissionPolicy,
		Metrics:    metrics,
		Validator:  validate,
		Logger:     logr,
	})
	permissionSvc := service.NewPermissionService(permissionRepo, slotRepo, cfg.School.Location, validate, logr)
	markSvc := service.NewMarkService(markRepo, studentRepo, courseRepo, cfg.School.RolloverMonth, validate, logr)
	deliberationSvc := service.NewDeliberationService(deliberationRepo, markRepo, classRepo, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	classHandler := handler.NewClassHandler(classSvc, assignmentSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	permissionHandler := handler.NewPermissionHandler(permissionSvc)
	gradingHandler := handler.NewGradingHandler(markSvc, deliberationSvc)

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(cacheRepo.Ping)
	}
	metricsHandler := handler.NewMetricsHandler(metrics, checks, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))
	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/auth/me", authHandler.Me)

	admin := internalmiddleware.AdminOnly()
	teacher := internalmiddleware.RequireRoles(models.RoleTeacher)
	staff := internalmiddleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)

	timetables := secured.Group("/timetables")
	timetables.GET("", timetableHandler.List)
	timetables.POST("", admin, timetableHandler.Create)
	timetables.POST("/assign-slot", admin, timetableHandler.AssignSlot)
	timetables.POST("/slots/:rosterId/clear", admin, timetableHandler.ClearSlot)
	timetables.GET("/class/:classId", timetableHandler.ClassActive)
	timetables.GET("/teacher/me", teacher, attendanceHandler.TeacherDay)
	timetables.GET("/:id", timetableHandler.Get)
	timetables.DELETE("/:id", admin, timetableHandler.Delete)
	timetables.POST("/:id/activate", admin, timetableHandler.Activate)
	timetables.POST("/:id/deactivate", admin, timetableHandler.Deactivate)

	attendance := secured.Group("/attendance")
	attendance.POST("/submit", staff, attendanceHandler.Submit)
	attendance.GET("/status/:rosterId", attendanceHandler.Status)
	attendance.GET("/roster/:rosterId", attendanceHandler.Records)
	attendance.POST("/permissions", teacher, permissionHandler.Create)
	attendance.GET("/permissions", staff, permissionHandler.List)
	attendance.POST("/permissions/:id/approve", admin, permissionHandler.Approve)

	classes := secured.Group("/classes")
	classes.GET("", classHandler.List)
	classes.GET("/:id", classHandler.Get)
	classes.POST("", admin, classHandler.Create)
	classes.PUT("/:id", admin, classHandler.Update)
	classes.DELETE("/:id", admin, classHandler.Delete)
	classes.GET("/:id/assignments", classHandler.ListAssignments)
	classes.POST("/:id/assignments", admin, classHandler.CreateAssignment)

	assignments := secured.Group("/assignments", admin)
	assignments.PUT("/:id", classHandler.UpdateAssignmentTeacher)
	assignments.DELETE("/:id", classHandler.DeleteAssignment)

	courses := secured.Group("/courses")
	courses.GET("", courseHandler.List)
	courses.GET("/:id", courseHandler.Get)
	courses.POST("", admin, courseHandler.Create)
	courses.PUT("/:id", admin, courseHandler.Update)
	courses.DELETE("/:id", admin, courseHandler.Delete)

	students := secured.Group("/students")
	students.GET("", studentHandler.List)
	students.GET("/:id", studentHandler.Get)
	students.POST("", admin, studentHandler.Create)
	students.PUT("/:id", admin, studentHandler.Update)
	students.DELETE("/:id", admin, studentHandler.Deactivate)

	marks := secured.Group("/marks", staff)
	marks.POST("", gradingHandler.RecordMark)
	marks.GET("/student/:studentId", gradingHandler.StudentMarks)

	deliberation := secured.Group("/deliberation", admin)
	deliberation.GET("/rules", gradingHandler.ListRules)
	deliberation.POST("/rules", gradingHandler.CreateRule)
	deliberation.DELETE("/rules/:id", gradingHandler.DeleteRule)
	deliberation.POST("/evaluate", gradingHandler.Evaluate)

	return r
}
