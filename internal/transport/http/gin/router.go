package httpgin

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kirinyoku/seatplan/internal/domain"
	redisrepo "github.com/kirinyoku/seatplan/internal/repository/redis"
	"github.com/kirinyoku/seatplan/internal/service"
	"github.com/kirinyoku/seatplan/internal/service/plans"
)

const maxPlanBytes = 2 << 20

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.SaveIdempotency,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(logger))
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/plans", handleSavePlan(svcs, idem))
	r.GET("/plans/:id", handleLoadPlan(svcs))
	r.GET("/plans/:id/summary", handlePlanSummary(svcs))
	r.GET("/layouts/default", handleDefaultLayout(svcs))

	// Legacy save.php/load.php paths, kept for old share links.
	r.POST("/save", handleSavePlan(svcs, idem))
	r.GET("/load", handleLoadPlan(svcs))

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Save plan (idempotent)
// @Accept   json
// @Produce  json
// @Param    snapshot body PlanSnapshot true "plan snapshot, any version"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} SavePlanResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /plans [post]
func handleSavePlan(
	svcs *service.Services,
	idem *redisrepo.SaveIdempotency,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxPlanBytes))
		if err != nil {
			badRequest(c, "could not read body")
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		claimed := false
		if idem != nil && idemKey != "" {
			claim, payload, err := idem.Begin(c.Request.Context(), idemKey)
			if err != nil {
				respondErr(c, err)
				return
			}
			switch claim {
			case redisrepo.ClaimReplay:
				replay(c, idemKey, payload)
				return
			case redisrepo.ClaimBusy:
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
			claimed = true
		}

		res, err := svcs.Plans.Save(c.Request.Context(), body, "ip:"+c.ClientIP())
		if err != nil {
			if claimed {
				_ = idem.Abort(c.Request.Context(), idemKey)
			}
			respondErr(c, err)
			return
		}

		resp := SavePlanResponse(res)

		if claimed {
			b, _ := json.Marshal(resp)
			_ = idem.Finish(c.Request.Context(), idemKey, b)
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

func replay(c *gin.Context, idemKey string, payload []byte) {
	c.Header("Idempotency-Key", idemKey)
	c.Data(http.StatusCreated, "application/json; charset=utf-8", payload)
}

// @Summary  Load plan
// @Produce  json
// @Param    id  path  string  true  "Plan ID"
// @Success  200 {object} PlanSnapshot
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /plans/{id} [get]
func handleLoadPlan(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := svcs.Plans.Load(c.Request.Context(), planID(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeCachedJSON(c, http.StatusOK, data, storedPlanCache)
	}
}

// @Summary  Plan summary
// @Produce  json
// @Param    id  path  string  true  "Plan ID"
// @Success  200 {object} domain.Summary
// @Failure  404 {object} ErrorResponse
// @Router   /plans/{id}/summary [get]
func handlePlanSummary(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := svcs.Plans.Summary(c.Request.Context(), planID(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeCachedValue(c, http.StatusOK, sum, derivedPlanCache)
	}
}

// @Summary  Default layout
// @Produce  json
// @Param    tables query int    false "table count, 4..16" default(13)
// @Param    mode   query string false "less or more"      default(less)
// @Success  200 {object} PlanSnapshot
// @Router   /layouts/default [get]
func handleDefaultLayout(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		tables := parseIntDefault(c.Query("tables"), 13)
		mode := domain.ParseMode(c.Query("mode"))

		data, err := svcs.Plans.DefaultLayout(c.Request.Context(), tables, mode)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeCachedJSON(c, http.StatusOK, data, defaultLayoutCache)
	}
}

// --- Helpers ---

// planID reads the id from the path, or from ?id= on the legacy route.
func planID(c *gin.Context) string {
	if id := c.Param("id"); id != "" {
		return id
	}
	return c.Query("id")
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var rl plans.RateLimitedError

	switch {
	case errors.As(err, &rl):
		secs := int(math.Ceil(rl.RetryAfter.Seconds()))
		c.Header("Retry-After", strconv.Itoa(max(secs, 1)))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
	case errors.Is(err, plans.ErrInvalidSnapshot):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid snapshot"})
	case errors.Is(err, plans.ErrInvalidID):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid plan id"})
	case errors.Is(err, plans.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "plan not found"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
