package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/saberpro-api/internal/handler"
	"github.com/noah-isme/saberpro-api/internal/middleware"
	"github.com/noah-isme/saberpro-api/internal/models"
)

type routeDeps struct {
	tokens        middleware.TokenValidator
	audit         middleware.AuditWriter
	logger        *zap.Logger
	auth          *handler.AuthHandler
	accounts      *handler.AccountHandler
	subjects      *handler.SubjectHandler
	enrollments   *handler.EnrollmentHandler
	homeworks     *handler.HomeworkHandler
	submissions   *handler.SubmissionHandler
	grades        *handler.GradeHandler
	notifications *handler.NotificationHandler
}

func registerRoutes(r *gin.Engine, prefix string, d routeDeps) {
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(d.audit, d.logger, action, resource)
	}
	superAdmin := middleware.RequireRoles(models.RoleSuperAdmin)

	api := r.Group(prefix)

	auth := api.Group("/auth")
	auth.POST("/register", d.auth.Register)
	auth.POST("/login", d.auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(d.tokens))

	secured.GET("/auth/me", d.auth.Me)
	secured.PUT("/profile", d.accounts.UpdateProfile)

	secured.POST("/teachers", middleware.Admins(), audit(models.AuditActionTeacherCreate, "teacher"), d.accounts.CreateTeacher)
	secured.DELETE("/teachers/:id", superAdmin, audit(models.AuditActionHardDelete, "teacher"), d.accounts.DeleteTeacher)
	secured.DELETE("/students/:id", superAdmin, audit(models.AuditActionHardDelete, "student"), d.accounts.DeleteStudent)

	subjects := secured.Group("/subjects")
	subjects.GET("", d.subjects.List)
	subjects.GET("/:id", d.subjects.Get)
	subjects.POST("", middleware.Admins(), d.subjects.Create)
	subjects.DELETE("/:id", superAdmin, audit(models.AuditActionHardDelete, "subject"), d.subjects.Delete)

	enrollments := secured.Group("/enrollments")
	enrollments.GET("", d.enrollments.List)
	enrollments.POST("", d.enrollments.Create)
	enrollments.DELETE("", d.enrollments.Delete)
	enrollments.PUT("/status", middleware.Staff(), audit(models.AuditActionEnrollmentStatus, "enrollment"), d.enrollments.SetStatus)

	homeworks := secured.Group("/homeworks")
	homeworks.GET("", d.homeworks.List)
	homeworks.GET("/stats", d.homeworks.Stats)
	homeworks.POST("", middleware.Staff(), d.homeworks.Create)

	submissions := secured.Group("/submissions")
	submissions.GET("", d.submissions.List)
	submissions.POST("", middleware.RequireRoles(models.RoleStudent), d.submissions.Submit)

	grades := secured.Group("/grades")
	grades.GET("", d.grades.List)
	grades.GET("/export", d.grades.Export)
	grades.POST("", middleware.Staff(), audit(models.AuditActionGrade, "grade"), d.grades.Grade)

	notifications := secured.Group("/notifications")
	notifications.GET("", d.notifications.List)
	notifications.POST("", middleware.Staff(), d.notifications.Create)
	notifications.PUT("/readAll", d.notifications.MarkAllRead)
	notifications.PUT("/:id/read", d.notifications.MarkRead)
	notifications.DELETE("/:id", d.notifications.Delete)
}
