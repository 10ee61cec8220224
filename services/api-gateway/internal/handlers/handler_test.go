package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGRPCCodeToHTTP(t *testing.T) {
	cases := map[codes.Code]int{
		codes.InvalidArgument:    http.StatusBadRequest,
		codes.NotFound:           http.StatusNotFound,
		codes.PermissionDenied:   http.StatusForbidden,
		codes.FailedPrecondition: http.StatusConflict,
		codes.AlreadyExists:      http.StatusConflict,
		codes.Unavailable:        http.StatusServiceUnavailable,
		codes.Internal:           http.StatusBadGateway,
	}
	for code, want := range cases {
		assert.Equal(t, want, grpcCodeToHTTP(code), code.String())
	}
}

func TestWriteErr(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	writeErr(c, status.Error(codes.FailedPrecondition, "order is COMPLETED"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "order is COMPLETED")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	writeErr(c, errors.New("connection refused"))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestPageParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for query, want := range map[string][2]int32{
		"":                      {0, 20},
		"?page=3&page_size=50":  {2, 50},
		"?page=0&page_size=500": {0, 20},
		"?page=abc":             {0, 20},
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/x"+query, nil)
		page, size := pageParams(c)
		assert.Equal(t, want, [2]int32{page, size}, query)
	}
}
