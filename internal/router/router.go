package router

import (
	"time"

	"github.com/blues/crowdfund/internal/auth"
	"github.com/blues/crowdfund/internal/handler"
	"github.com/gin-gonic/gin"
)

// Options 路由配置
type Options struct {
	Faucet  bool             // 是否注册水龙头接口
	MaxSkew time.Duration    // 签名允许的时间偏差
	Replay  auth.ReplayGuard // 已使用签名的登记
	Now     func() time.Time
}

func Setup(campaignHandler *handler.CampaignHandler, accountHandler *handler.AccountHandler, opts Options) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "crowdfunding-ledger",
		})
	})

	signed := auth.Middleware(opts.MaxSkew, opts.Now, opts.Replay)

	// API版本组
	v1 := r.Group("/api/v1")
	{
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", signed, campaignHandler.CreateCampaign)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.GET("/:id/status", campaignHandler.GetStatus)
			campaigns.GET("/:id/contributions", campaignHandler.GetContributions)
			campaigns.GET("/:id/contributions/:address", campaignHandler.GetContribution)
			campaigns.GET("/:id/events", campaignHandler.GetEvents)
			campaigns.GET("/:id/stats", campaignHandler.GetStats)
			campaigns.POST("/:id/pledge", signed, campaignHandler.Pledge)
			campaigns.POST("/:id/claim", signed, campaignHandler.Claim)
			campaigns.POST("/:id/refund", signed, campaignHandler.Refund)
		}

		accounts := v1.Group("/accounts")
		{
			accounts.GET("/:address", accountHandler.GetBalance)
			if opts.Faucet {
				accounts.POST("/:address/mint", accountHandler.Mint)
			}
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Caller, X-Timestamp, X-Signature")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
