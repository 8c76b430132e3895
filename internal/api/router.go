package api

import (
	"github.com/gin-gonic/gin"

	"github.com/thanhnp/chain-sim/internal/api/handlers"
	"github.com/thanhnp/chain-sim/internal/api/middleware"
	"github.com/thanhnp/chain-sim/internal/simulator"
	"github.com/thanhnp/chain-sim/internal/storage"
)

// Router wraps the Gin router with handlers
type Router struct {
	engine         *gin.Engine
	version        string
	nodeHandler    *handlers.NodeHandler
	networkHandler *handlers.NetworkHandler
}

// NewRouter creates a new Router with all handlers
func NewRouter(svc *simulator.Service, blockStore *storage.BlockStore, version string) *Router {
	gin.SetMode(gin.ReleaseMode)

	r := &Router{
		engine:         gin.New(),
		version:        version,
		nodeHandler:    handlers.NewNodeHandler(svc, blockStore),
		networkHandler: handlers.NewNetworkHandler(svc),
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// setupMiddleware configures middleware
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.Logger())
	r.engine.Use(middleware.CORS())
}

// setupRoutes configures API routes
func (r *Router) setupRoutes() {
	// Health check
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": r.version})
	})

	// API v1 routes
	v1 := r.engine.Group("/api/v1")
	{
		// Node routes
		nodes := v1.Group("/nodes")
		{
			nodes.POST("", r.nodeHandler.Create)
			nodes.POST("/:id/blocks", r.nodeHandler.AppendBlock)
			nodes.POST("/:id/corrupt", r.nodeHandler.Corrupt)
			nodes.GET("/:id/chain", r.nodeHandler.GetChain)
			nodes.GET("/:id/validity", r.nodeHandler.GetValidity)
			nodes.GET("/:id/blocks/latest", r.nodeHandler.GetTip)
			nodes.GET("/:id/blocks/:hash", r.nodeHandler.GetBlock)
		}

		// Network routes
		networks := v1.Group("/networks")
		{
			networks.POST("", r.networkHandler.Spawn)
			networks.POST("/:id/attack", r.networkHandler.Attack)
			networks.GET("/:id/consensus", r.networkHandler.GetConsensus)
			networks.GET("/:id/findings", r.networkHandler.GetFindings)
		}
	}
}

// Engine returns the underlying Gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
