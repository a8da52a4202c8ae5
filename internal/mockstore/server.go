package mockstore

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"vinr.eu/secretsdemo/internal/logger"
)

const (
	targetHeader    = "X-Amz-Target"
	errorTypeHeader = "X-Amzn-ErrorType"
	requestIDHeader = "X-Amzn-RequestId"

	TargetGetSecretValue = "secretsmanager.GetSecretValue"

	CodeResourceNotFound  = "ResourceNotFoundException"
	CodeAccessDenied      = "AccessDeniedException"
	CodeInvalidParameter  = "InvalidParameterException"
	CodeUnknownOperation  = "UnknownOperationException"
	CodeSerializationFail = "SerializationException"
)

type getSecretValueRequest struct {
	SecretId     string `json:"SecretId"`
	VersionId    string `json:"VersionId,omitempty"`
	VersionStage string `json:"VersionStage,omitempty"`
}

type getSecretValueResponse struct {
	ARN           string   `json:"ARN"`
	Name          string   `json:"Name"`
	VersionId     string   `json:"VersionId"`
	VersionStages []string `json:"VersionStages"`
	SecretString  *string  `json:"SecretString,omitempty"`
	SecretBinary  *string  `json:"SecretBinary,omitempty"`
	CreatedDate   float64  `json:"CreatedDate"`
}

type errorResponse struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

type PingResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type Server struct {
	store     *Store
	requestID atomic.Uint64
	started   time.Time
}

func NewServer(store *Store) *Server {
	return &Server{
		store:   store,
		started: time.Now(),
	}
}

// Handler returns the gin engine serving the Secrets Manager protocol on POST /.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), logger.Middleware("mockstore"))
	router.POST("/", s.dispatch)
	router.GET("/ping", s.GetPing)
	return router
}

func (s *Server) dispatch(c *gin.Context) {
	c.Header(requestIDHeader, fmt.Sprintf("mock-%d", s.requestID.Add(1)))
	switch target := c.GetHeader(targetHeader); target {
	case TargetGetSecretValue:
		s.GetSecretValue(c)
	default:
		logger.Warn(c, "unsupported operation", "target", target)
		writeError(c, CodeUnknownOperation, "operation not supported by mock store: "+target)
	}
}

func (s *Server) GetSecretValue(c *gin.Context) {
	var req getSecretValueRequest
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
		writeError(c, CodeSerializationFail, err.Error())
		return
	}
	if req.SecretId == "" {
		writeError(c, CodeInvalidParameter, "SecretId must not be empty")
		return
	}
	if s.store.isDenied(req.SecretId) {
		logger.Info(c, "access denied", "secret_id", req.SecretId)
		writeError(c, CodeAccessDenied, fmt.Sprintf(
			"User: arn:aws:iam::000000000000:user/test is not authorized to perform: secretsmanager:GetSecretValue on resource: %s", req.SecretId))
		return
	}
	sec, ok := s.store.lookup(req.SecretId)
	if !ok {
		logger.Info(c, "secret not found", "secret_id", req.SecretId, "env_key", EnvKey(req.SecretId))
		writeError(c, CodeResourceNotFound, "Secrets Manager can't find the specified secret.")
		return
	}
	c.JSON(http.StatusOK, getSecretValueResponse{
		ARN:           s.store.arn(req.SecretId),
		Name:          req.SecretId,
		VersionId:     "00000000-0000-0000-0000-000000000001",
		VersionStages: []string{"AWSCURRENT"},
		SecretString:  sec.text,
		SecretBinary:  sec.binary,
		CreatedDate:   float64(s.started.Unix()),
	})
}

func (s *Server) GetPing(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

func writeError(c *gin.Context, code, msg string) {
	c.Header(errorTypeHeader, code)
	c.JSON(http.StatusBadRequest, errorResponse{
		Type:    code,
		Message: msg,
	})
}
