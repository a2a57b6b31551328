package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"therapy-cards/services"
)

func setupCardRoutes(rg *gin.RouterGroup, cards *services.CardService, log *zap.Logger) {
	search := func(c *gin.Context) {
		params := services.SearchParams{
			Keyword:     c.Query("keyword"),
			Page:        queryInt(c, "page", 1),
			Limit:       queryInt(c, "limit", services.DefaultPageSize),
			ShowDetails: queryBool(c, "show_details", true),
		}
		res, err := cards.Search(c.Request.Context(), currentOwner(c).ID, params)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":    "ok",
			"data":       res.Cards,
			"pagination": res.Pagination,
		})
	}
	rg.GET("/cards", search)
	rg.GET("/search-cards", search)

	rg.GET("/cards/detail/:id", func(c *gin.Context) {
		view, err := cards.Get(c.Request.Context(), currentOwner(c).ID, c.Param("id"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "ok", "data": view})
	})

	remove := func(c *gin.Context) {
		id := c.Param("id")
		if err := cards.Delete(c.Request.Context(), currentOwner(c).ID, id); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "card deleted", "card_id": id})
	}
	rg.DELETE("/cards/:id", remove)
	rg.DELETE("/cards/delete/:id", remove)
}

func setupMaintenanceRoutes(rg *gin.RouterGroup, backfill *services.Backfill, log *zap.Logger) {
	rg.POST("/maintenance/backfill", func(c *gin.Context) {
		owner := currentOwner(c)
		report, err := backfill.Run(c.Request.Context(), services.BackfillScope{OwnerID: owner.ID})
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "backfill completed", "report": report})
	})
}

// queryInt liest einen ganzzahligen Query-Parameter; ungültige Werte ergeben def.
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

func queryBool(c *gin.Context, key string, def bool) bool {
	v, err := strconv.ParseBool(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
