package http_api

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	s.router.GET("/api/v1/rarity/:token", s.rarity)
	s.router.GET("/api/v1/leaderboard", s.leaderboard)
}
