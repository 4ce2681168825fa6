package server

import "github.com/gin-gonic/gin"

// RegisterRoutes registers every /api endpoint on rg.
//
//	GET    /api/health
//	GET    /api/puzzles
//	POST   /api/puzzles
//	GET    /api/puzzles/stats/summary
//	GET    /api/puzzles/category/:category
//	GET    /api/puzzles/:id
//	PUT    /api/puzzles/:id
//	DELETE /api/puzzles/:id
//	GET    /api/puzzles/:id/statistics
//	POST   /api/puzzles/:id/validate
//	POST   /api/puzzles/:id/partial
//	POST   /api/puzzles/:id/can-place
//	POST   /api/puzzles/:id/next
//	POST   /api/puzzles/:id/explain
func RegisterRoutes(rg *gin.RouterGroup, s *Server) {
	rg.GET("/health", s.HandleHealth)

	puzzles := rg.Group("/puzzles")
	{
		puzzles.GET("", s.HandleListPuzzles)
		puzzles.POST("", s.HandleCreatePuzzle)
		puzzles.GET("/stats/summary", s.HandleStats)
		puzzles.GET("/category/:category", s.HandleListByCategory)

		puzzles.GET("/:id", s.HandleGetPuzzle)
		puzzles.PUT("/:id", s.HandleUpdatePuzzle)
		puzzles.DELETE("/:id", s.HandleDeletePuzzle)

		// Validator operations
		puzzles.GET("/:id/statistics", s.HandleStatistics)
		puzzles.POST("/:id/validate", s.HandleValidate)
		puzzles.POST("/:id/partial", s.HandlePartial)
		puzzles.POST("/:id/can-place", s.HandleCanPlace)
		puzzles.POST("/:id/next", s.HandleNext)
		puzzles.POST("/:id/explain", s.HandleExplain)
	}
}
