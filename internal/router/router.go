package router

import (
	"github.com/SlothFi/ido-launchpad/internal/handler"
	"github.com/SlothFi/ido-launchpad/internal/logic"
	"github.com/gin-gonic/gin"
)

func Setup(saleLogic *logic.SaleLogic, participateLogic *logic.ParticipateLogic) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "ido-launchpad",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		saleHandler := handler.NewSaleHandler(saleLogic, participateLogic)
		participateHandler := handler.NewParticipateHandler(participateLogic)
		adminHandler := handler.NewAdminHandler(participateLogic)

		sales := v1.Group("/sales")
		{
			sales.POST("", saleHandler.CreateSale)
			sales.GET("", saleHandler.GetSales)
			sales.GET("/:id", saleHandler.GetSale)
			sales.GET("/:id/stats", saleHandler.GetSaleStats)
			sales.GET("/:id/contributions", saleHandler.GetSaleContributions)

			// 参与流程
			sales.POST("/:id/collateral", participateHandler.DepositCollateral)
			sales.POST("/:id/contribute", participateHandler.Contribute)
			sales.POST("/:id/harvest", participateHandler.Harvest)
			sales.GET("/:id/participants/:address", participateHandler.GetParticipant)
			sales.GET("/:id/participants/:address/allocation", participateHandler.GetAllocation)
			sales.GET("/:id/participants/:address/collateral", participateHandler.GetCollateralStatus)

			// 管理员操作
			sales.POST("/:id/withdraw", adminHandler.Withdraw)
			sales.PUT("/:id/max-contribution", adminHandler.SetMaxContribution)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
