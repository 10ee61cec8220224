package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kiaorakahi/marketplace/pkg/rpc"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/clients"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/middlewares"
)

// base is embedded by every handler: the backend clients and the deadline
// applied to each upstream call.
type base struct {
	c       *clients.Clients
	timeout time.Duration
}

func newBase(c *clients.Clients, timeout time.Duration) base {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return base{c: c, timeout: timeout}
}

// rpcCtx bounds an upstream call and forwards the signed-in user as metadata.
func (b base) rpcCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), b.timeout)
	return rpc.WithUser(ctx, middlewares.Caller(c)), cancel
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// writeErr answers with the HTTP status matching an upstream gRPC error.
func writeErr(c *gin.Context, err error) {
	if st, ok := status.FromError(err); ok {
		c.JSON(grpcCodeToHTTP(st.Code()), gin.H{"error": st.Message()})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

func grpcCodeToHTTP(code codes.Code) int {
	switch code {
	case codes.InvalidArgument, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.AlreadyExists, codes.FailedPrecondition, codes.Aborted:
		return http.StatusConflict
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.DeadlineExceeded, codes.ResourceExhausted, codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.Internal, codes.DataLoss, codes.Unknown:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// pageParams reads the 1-based ?page and ?page_size; backends count from 0.
func pageParams(c *gin.Context) (page, size int32) {
	p, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	s, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if p < 1 {
		p = 1
	}
	if s < 1 || s > 100 {
		s = 20
	}
	return int32(p - 1), int32(s)
}
