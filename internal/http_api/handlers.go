package http_api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inj-ninja/raritas/internal/models"
)

// TokenResponse is the JSON body for a single token lookup.
type TokenResponse struct {
	Number      string             `json:"number"`
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	Traits      map[string]string  `json:"traits,omitempty"`
	Media       string             `json:"media,omitempty"`
	Rarity      map[string]float64 `json:"rarity"`
	Rank        map[string]int     `json:"rank"`
	Total       float64            `json:"total"`
	RankTotal   int                `json:"rank_total"`
}

func newTokenResponse(row *models.RarityRow, token *models.TokenMetadata) TokenResponse {
	resp := TokenResponse{
		Number:    row.Key.String(),
		Rarity:    row.Rarity,
		Rank:      row.Rank,
		Total:     row.Total,
		RankTotal: row.RankTotal,
	}
	if token != nil {
		resp.Title = token.Title
		resp.Description = token.Description
		resp.Traits = token.Traits
		resp.Media = token.Media
	}
	return resp
}

// rarity is the handler for the /api/v1/rarity/:token endpoint. The token
// path segment is a number or a title; a miss is a 404, never a failure.
func (s *HTTPServer) rarity(c *gin.Context) {
	query := c.Param("token")

	row, token, ok := s.table.Lookup(query)
	if !ok {
		s.logger.Debug("Rarity lookup miss ", "query ", query)
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "No match found for '" + query + "'",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   newTokenResponse(row, token),
	})
}

// leaderboard is the handler for the /api/v1/leaderboard endpoint.
func (s *HTTPServer) leaderboard(c *gin.Context) {
	limit := s.leaderboardSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	rows := s.table.Top(limit)
	entries := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, gin.H{
			"number":     row.Key.String(),
			"total":      row.Total,
			"rank_total": row.RankTotal,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"leaderboard": entries,
	})
}
