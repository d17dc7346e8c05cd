// Command stubbackend serves an in-memory trade backend for running the
// dashboard locally.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"trade-dashboard/src/logger"
	"trade-dashboard/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

func main() {
	port := flag.Int("port", 8081, "listen port")
	requireAuth := flag.Bool("require-auth", false, "answer 401 unless a JSESSIONID cookie is sent")
	flag.Parse()

	appLogger := logger.NewLogger(nil, "StubBackend")
	gin.SetMode(gin.ReleaseMode)

	engine := newRouter(newBackendStore(time.Now()), *requireAuth, appLogger)

	addr := fmt.Sprintf(":%d", *port)
	appLogger.Info("Stub backend listening on %s (require-auth=%v)", addr, *requireAuth)
	if err := http.ListenAndServe(addr, engine); err != nil {
		appLogger.Error("Stub backend failed: %v", err)
		os.Exit(1)
	}
}

// -----------------------------------------------------------------------------

func newRouter(store *backendStore, requireAuth bool, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Next()
		log.Debug("%s %s -> %d", c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status())
	})

	api := r.Group("/api")
	if requireAuth {
		api.Use(func(c *gin.Context) {
			if _, err := c.Cookie("JSESSIONID"); err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.Next()
		})
	}

	api.GET("/trades", func(c *gin.Context) {
		w, ok := dateWindow(c)
		if ok {
			ok200(c, store.Trades(c.Query("clientReferenceNumber"), w))
		}
	})
	api.GET("/trades/:ref", func(c *gin.Context) {
		ok200(c, store.Trades(c.Param("ref"), window{}))
	})
	api.GET("/exceptions", func(c *gin.Context) {
		w, ok := dateWindow(c)
		if ok {
			ok200(c, store.Exceptions(c.Query("clientReferenceNumber"), w))
		}
	})
	api.GET("/exceptions/:ref", func(c *gin.Context) {
		ok200(c, store.Exceptions(c.Param("ref"), window{}))
	})
	api.GET("/data", func(c *gin.Context) {
		w, ok := dateWindow(c)
		if ok {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"content": store.Messages(w)}})
		}
	})
	api.GET("/summary/trades-by-fund", func(c *gin.Context) {
		w, ok := dateWindow(c)
		if ok {
			ok200(c, store.Summary(w))
		}
	})

	// Fund reference data answers with bare arrays and objects.
	api.GET("/funds", func(c *gin.Context) {
		c.JSON(http.StatusOK, store.Funds())
	})
	api.POST("/funds", func(c *gin.Context) {
		var f models.MFundRecord
		if err := c.ShouldBindJSON(&f); err != nil || f.FundID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid fund payload"})
			return
		}
		if !store.CreateFund(f) {
			c.JSON(http.StatusConflict, gin.H{"message": "Fund ID already exists"})
			return
		}
		c.JSON(http.StatusCreated, f)
	})
	api.PUT("/funds/:id", func(c *gin.Context) {
		var f models.MFundRecord
		if err := c.ShouldBindJSON(&f); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid fund payload"})
			return
		}
		if !store.UpdateFund(c.Param("id"), f) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Fund not found"})
			return
		}
		c.JSON(http.StatusOK, f)
	})
	api.DELETE("/funds/:id", func(c *gin.Context) {
		if !store.DeleteFund(c.Param("id")) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Fund not found"})
			return
		}
		c.Status(http.StatusNoContent)
	})

	return r
}

// -----------------------------------------------------------------------------

func ok200(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func dateWindow(c *gin.Context) (window, bool) {
	w, err := parseWindow(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return w, false
	}
	return w, true
}
