package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JakobPriesner/GeoGuesser/internal/catalog"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

func (app *App) gameModesHandler(c *gin.Context) {
	modes := lo.Map(app.Catalog.ListCategories(), func(id string, _ int) GameMode {
		return GameMode{
			ID:    id,
			Name:  catalog.FormatCategoryName(id),
			Count: len(app.Catalog.ListLocations(id)),
		}
	})
	c.JSON(http.StatusOK, modes)
}

func (app *App) locationsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, app.Catalog.All())
}

func (app *App) healthzHandler(c *gin.Context) {
	c.JSON(http.StatusOK, Health{
		Status:      "ok",
		Env:         map[bool]string{true: "production", false: "development"}[app.Config.IsProduction],
		Uptime:      formatUptime(time.Since(app.StartTime)),
		Rooms:       app.Rooms.Len(),
		Connections: app.Hub.ClientCount(),
		GameModes:   len(app.Catalog.ListCategories()),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

func formatUptime(d time.Duration) string {
	seconds := int(d.Seconds()) % 60
	minutes := int(d.Minutes()) % 60
	hours := int(d.Hours())
	switch {
	case hours > 0:
		return fmt.Sprintf("%d hour%s, %d minute%s, %d second%s",
			hours, plural(hours),
			minutes, plural(minutes),
			seconds, plural(seconds))
	case minutes > 0:
		return fmt.Sprintf("%d minute%s, %d second%s",
			minutes, plural(minutes),
			seconds, plural(seconds))
	default:
		return fmt.Sprintf("%d second%s", seconds, plural(seconds))
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
