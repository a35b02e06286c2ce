package service

import (
	"github.com/gin-gonic/gin"

	"github.com/quka-ai/quka-iot/app/core"
	v1 "github.com/quka-ai/quka-iot/app/logic/v1"
	"github.com/quka-ai/quka-iot/app/response"
	"github.com/quka-ai/quka-iot/cmd/service/handler"
	"github.com/quka-ai/quka-iot/cmd/service/middleware"
	"github.com/quka-ai/quka-iot/pkg/metrics"
)

func GetIPLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, key, func(c *gin.Context) string {
			return key + ":" + c.ClientIP()
		}, opts...)
	}
}

func GetUserLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, key, func(c *gin.Context) string {
			token, _ := v1.InjectTokenClaim(c)
			return key + ":" + token.User
		}, opts...)
	}
}

// GetAPIKeyLimitBuilder 按设备凭证限流，未携带时退化为 ip
func GetAPIKeyLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, key, func(c *gin.Context) string {
			if apiKey := middleware.APIKey(c); apiKey != "" {
				return key + ":" + apiKey
			}
			return key + ":" + c.ClientIP()
		}, opts...)
	}
}

func setupHttpRouter(s *handler.HttpSrv) {
	ipLimit := GetIPLimitBuilder(s.Core)
	userLimit := GetUserLimitBuilder(s.Core)
	apiKeyLimit := GetAPIKeyLimitBuilder(s.Core)

	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	s.Engine.Use(gin.Recovery())
	s.Engine.Use(middleware.I18n(), response.NewResponse())
	s.Engine.Use(middleware.Cors)
	s.Engine.Use(middleware.AcceptLanguage(), middleware.Metrics(s.Core))
	apiV1 := s.Engine.Group("/api/v1")
	{
		apiV1.GET("/mode", func(c *gin.Context) {
			response.APISuccess(c, s.Core.Plugins.Name())
		})

		auth := apiV1.Group("/auth")
		{
			auth.POST("/signup", ipLimit("signup", core.WithLimit(10)), s.Signup)
			auth.POST("/login", ipLimit("login", core.WithLimit(20)), s.Login)
		}

		ingest := apiKeyLimit("ingest", core.WithLimit(s.Core.Cfg().Channel.IngestRateLimit))
		public := apiV1.Group("/channels/:channelid")
		{
			public.POST("/entries", ingest, s.Ingest)
			public.GET("/entries", ingest, s.Ingest)
			public.GET("/entries/read", middleware.TryAuthorization(s.Core), s.ReadEntries)
			public.GET("/feed", middleware.TryAuthorization(s.Core), s.Feed)
		}

		authed := apiV1.Group("")
		authed.Use(middleware.Authorization(s.Core))
		{
			user := authed.Group("/user")
			{
				user.GET("/me", s.GetMe)
				user.PATCH("/me", userLimit("profile"), s.UpdateMe)
				user.PUT("/password", userLimit("password", core.WithLimit(10)), s.ChangePassword)
			}

			admin := authed.Group("/admin")
			{
				admin.GET("/users", s.ListUsers)
			}

			channels := authed.Group("/channels")
			{
				channels.POST("", userLimit("channel"), s.CreateChannel)
				channels.GET("", s.ListChannels)

				channel := channels.Group("/:channelid")
				{
					channel.GET("", s.GetChannel)
					channel.PATCH("", s.UpdateChannel)
					channel.DELETE("", s.DeleteChannel)
					channel.POST("/apikey", userLimit("apikey"), s.RegenerateAPIKey)
					channel.PATCH("/fields", s.RenameFields)
					channel.PATCH("/add-fields", s.AddFields)
					channel.PATCH("/remove-fields", s.RemoveFields)
					channel.DELETE("/fields/:field", s.RemoveField)
				}
			}

			csv := authed.Group("/csv/channels/:channelid")
			{
				csv.GET("/fields/csv", s.ExportCSV)
				csv.POST("/archive", userLimit("archive"), s.ArchiveCSV)
			}
		}
	}
}
