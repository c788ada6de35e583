package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

/*** HTML page ***/

func DashboardPage(d *Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, dashboardTemplateName, d.Page())
	}
}

// ToggleLessonForm handles the lesson card form and sends the browser back
// to the page (POST/redirect/GET). Errors are plain text, not JSON.
func ToggleLessonForm(d *Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.String(http.StatusBadRequest, "lesson id must be an integer")
			return
		}
		if _, err := d.ToggleLesson(c.Request.Context(), id); err != nil {
			if errors.Is(err, ErrLessonNotFound) {
				c.String(http.StatusNotFound, "lesson not found")
				return
			}
			_ = c.Error(err)
			c.String(http.StatusInternalServerError, "internal error")
			return
		}
		c.Redirect(http.StatusSeeOther, "/")
	}
}

func ToggleThemeForm(d *Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		d.ToggleTheme(c.Request.Context())
		c.Redirect(http.StatusSeeOther, "/")
	}
}

func ToggleRoleForm(d *Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		d.ToggleRole()
		c.Redirect(http.StatusSeeOther, "/")
	}
}

/*** JSON API ***/

func GetDashboard(d *Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, d.Snapshot())
	}
}

func ListLessons(d *Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, d.Lessons())
	}
}

func ToggleLesson(d *Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := lessonIDParam(c)
		if !ok {
			return
		}
		snap, err := d.ToggleLesson(c.Request.Context(), id)
		if err != nil {
			writeToggleError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

func ListRoster(d *Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, d.Roster())
	}
}

func ToggleTheme(d *Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, d.ToggleTheme(c.Request.Context()))
	}
}

func ToggleRole(d *Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, d.ToggleRole())
	}
}

func Health(kv KVStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := kv.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": "storage unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "components": gin.H{"storage": "up"}})
	}
}

/*** helpers ***/

func lessonIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lesson id must be an integer"})
		return 0, false
	}
	return id, true
}

func writeToggleError(c *gin.Context, err error) {
	if errors.Is(err, ErrLessonNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
}
