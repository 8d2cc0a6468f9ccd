package indexer

import (
	"errors"
	"net/http"
	"time"

	"github.com/calehh/bounty-app/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	HeaderRequestID = "X-Request-Id"
)

type Service struct {
	engine     *gin.Engine
	indexer    *ChainIndexer
	listenAddr string
	logger     cmtlog.Logger
}

func NewService(listenAddr string, indexer *ChainIndexer, logger cmtlog.Logger) *Service {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	s := &Service{
		engine:     r,
		indexer:    indexer,
		listenAddr: listenAddr,
		logger:     logger.With("module", "api"),
	}
	s.engine.Use(RequestID(), s.accessLog(), gin.Recovery())
	s.engine.POST("/getReports", s.handleGetReports)
	s.engine.POST("/getReviews", s.handleGetReviews)
	s.engine.POST("/getResearchers", s.handleGetResearchers)
	s.engine.GET("/epoch", s.handleGetEpoch)
	return s
}

func (s *Service) Handler() http.Handler {
	return s.engine
}

func (s *Service) Start() error {
	s.logger.Info("api listening", "addr", s.listenAddr)
	return s.engine.Run(s.listenAddr)
}

// RequestID tags every request with an id, reusing the caller's one when
// it is a valid uuid.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		c.Set("requestId", id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func (s *Service) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("api request", "method", c.Request.Method, "path", c.Request.URL.Path,
			"status", c.Writer.Status(), "requestId", c.GetString("requestId"), "elapsed", time.Since(start))
	}
}

type GetReportsReq struct {
	ReportId uint64 `json:"reportId"`
	Reporter string `json:"reporter"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type GetReportsResponse struct {
	Reports []Report `json:"reports"`
	Total   uint64   `json:"total"`
}

func (s *Service) handleGetReports(c *gin.Context) {
	var response GetReportsResponse
	response.Reports = make([]Report, 0)
	var requestData GetReportsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.Reporter != "" {
		id, ok := types.IdentityFromHex(requestData.Reporter)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reporter address"})
			return
		}
		requestData.Reporter = id.Hex()
	}

	if requestData.ReportId != 0 {
		report, err := s.indexer.getReportById(requestData.ReportId)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, response)
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Reports = append(response.Reports, *report)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}

	reports, total, err := s.indexer.getReports(requestData.Reporter, requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Reports = append(response.Reports, reports...)
	response.Total = total
	c.JSON(http.StatusOK, response)
}

type GetReviewsReq struct {
	ReportId   uint64 `json:"reportId"`
	Researcher string `json:"researcher"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

type GetReviewsResponse struct {
	Reviews []Review `json:"reviews"`
	Total   uint64   `json:"total"`
}

func (s *Service) handleGetReviews(c *gin.Context) {
	var response GetReviewsResponse
	response.Reviews = make([]Review, 0)
	var requestData GetReviewsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.Researcher != "" {
		id, ok := types.IdentityFromHex(requestData.Researcher)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid researcher address"})
			return
		}
		requestData.Researcher = id.Hex()
	}
	reviews, total, err := s.indexer.getReviews(requestData.ReportId, requestData.Researcher, requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Reviews = append(response.Reviews, reviews...)
	response.Total = total
	c.JSON(http.StatusOK, response)
}

type GetResearchersReq struct {
	Address  string `json:"address"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type GetResearchersResponse struct {
	Researchers []Researcher `json:"researchers"`
	Total       uint64       `json:"total"`
}

func (s *Service) handleGetResearchers(c *gin.Context) {
	var response GetResearchersResponse
	response.Researchers = make([]Researcher, 0)
	var requestData GetResearchersReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.Address != "" {
		id, ok := types.IdentityFromHex(requestData.Address)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address"})
			return
		}
		requestData.Address = id.Hex()
	}
	researchers, total, err := s.indexer.getResearchers(requestData.Address, requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Researchers = append(response.Researchers, researchers...)
	response.Total = total
	c.JSON(http.StatusOK, response)
}

type GetEpochResponse struct {
	Epoch         uint64 `json:"epoch"`
	LastAdvancer  string `json:"lastAdvancer"`
	AdvanceHeight uint64 `json:"advanceHeight"`
	SyncedHeight  uint64 `json:"syncedHeight"`
}

func (s *Service) handleGetEpoch(c *gin.Context) {
	ea, err := s.indexer.getLatestEpoch()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h, err := s.indexer.getSyncedHeight()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GetEpochResponse{
		Epoch:         ea.Epoch,
		LastAdvancer:  ea.Caller,
		AdvanceHeight: ea.Height,
		SyncedHeight:  h,
	})
}
