package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/config"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/api/handler"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/api/middleware"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/pkg/jwt"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录注册加速率限制）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 20, time.Minute))
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			authorized.GET("/users", middleware.RoleAuth("admin"), h.User.ListUsers)
			authorized.GET("/advisors", middleware.RoleAuth("admin", "advisor"), h.User.ListAdvisors)

			// 学期模块
			periods := authorized.Group("/periods")
			{
				periods.GET("", h.Period.ListPeriods)
				periods.GET("/active", h.Period.GetActivePeriod)
				periods.GET("/:id", h.Period.GetPeriod)
				periods.POST("", middleware.RoleAuth("admin"), h.Period.CreatePeriod)
				periods.PUT("/:id", middleware.RoleAuth("admin"), h.Period.UpdatePeriod)
				periods.PUT("/:id/activate", middleware.RoleAuth("admin"), h.Period.ActivatePeriod)
				periods.DELETE("/:id", middleware.RoleAuth("admin"), h.Period.DeletePeriod)
			}

			// 小组与入组模块
			groups := authorized.Group("/groups")
			{
				groups.GET("", h.Group.ListGroups)
				groups.GET("/mine", middleware.RoleAuth("advisor"), h.Group.ListMyGroups)
				groups.GET("/:id", h.Group.GetGroup)
				groups.GET("/:id/members", h.Group.ListMembers)
				groups.POST("", middleware.RoleAuth("admin"), h.Group.CreateGroup)
				groups.PUT("/:id", middleware.RoleAuth("admin"), h.Group.UpdateGroup)
				groups.DELETE("/:id", middleware.RoleAuth("admin"), h.Group.DeleteGroup)

				groups.POST("/:id/enroll", middleware.RoleAuth("student"), h.Group.Enroll)
				groups.POST("/:id/withdraw", middleware.RoleAuth("student"), h.Group.Withdraw)
				groups.POST("/:id/students", middleware.RoleAuth("admin"), h.Group.AssignStudent)
				groups.DELETE("/:id/students/:student_id", middleware.RoleAuth("admin"), h.Group.RemoveStudent)
			}

			// 项目模块
			projects := authorized.Group("/projects")
			{
				projects.POST("", middleware.RoleAuth("student"), h.Project.CreateProject)
				projects.GET("/mine", middleware.RoleAuth("student"), h.Project.GetMyProject)
				projects.GET("/advised", middleware.RoleAuth("advisor"), h.Project.ListAdvisedProjects)
				projects.GET("/:id", h.Project.GetProject)

				projects.POST("/:id/documents", middleware.RoleAuth("student"), h.Project.RegisterDocument)
				projects.GET("/:id/documents", h.Project.ListDocuments)

				projects.POST("/:id/proposals", middleware.RoleAuth("student"), h.Project.SubmitProposal)
				projects.GET("/:id/proposals", h.Project.ListProposals)
				projects.PUT("/:id/topic", middleware.RoleAuth("advisor"), h.Project.ManageTopic)

				projects.PUT("/:id/stage", middleware.RoleAuth("advisor"), h.Project.ApproveStage)

				projects.GET("/:id/meetings", h.Project.ListMeetings)

				// 评审循环
				projects.POST("/:id/observations", middleware.RoleAuth("advisor"), h.Review.CreateObservation)
				projects.GET("/:id/observations", h.Review.ListObservations)

				// 答辩流程
				projects.POST("/:id/defense", middleware.RoleAuth("student"), h.Defense.RequestDefense)
				projects.PUT("/:id/defense", middleware.RoleAuth("admin"), h.Defense.RespondDefense)
			}

			// 观察意见模块
			observations := authorized.Group("/observations")
			{
				observations.GET("/:id", h.Review.GetObservation)
				observations.PUT("/:id/review", middleware.RoleAuth("advisor"), h.Review.StartReview)
				observations.POST("/:id/correction", middleware.RoleAuth("student"), h.Review.CreateCorrection)
				observations.DELETE("/:id/correction", middleware.RoleAuth("student"), h.Review.DeleteCorrection)
				observations.PUT("/:id/verify", middleware.RoleAuth("advisor"), h.Review.VerifyCorrection)
				observations.PUT("/:id/archive", middleware.RoleAuth("advisor"), h.Review.ArchiveObservation)
				observations.PUT("/:id/restore", middleware.RoleAuth("advisor"), h.Review.RestoreObservation)
			}

			// 文档模块
			authorized.GET("/documents/:id/observations", h.Review.ListDocumentObservations)

			// 指导会议模块
			meetings := authorized.Group("/meetings")
			{
				meetings.POST("", middleware.RoleAuth("advisor"), h.Project.CreateMeeting)
				meetings.PUT("/:id", middleware.RoleAuth("advisor"), h.Project.UpdateMeeting)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/progress", middleware.RoleAuth("admin"), h.Export.ExportProgress)
				export.GET("/meetings", middleware.RoleAuth("advisor"), h.Export.ExportMeetings)
			}
		}
	}

	return r
}
