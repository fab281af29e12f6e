package ctxmeta

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFromGinCopiesMetadata(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Set(GinKeyTraceID, "t-1")
	c.Set(GinKeyUserID, "u-1")
	c.Set(GinKeyClientIP, "10.0.0.1")

	ctx := FromGin(c)

	assert.Equal(t, "t-1", TraceID(ctx))
	assert.Equal(t, "u-1", UserID(ctx))
	assert.Equal(t, "10.0.0.1", ClientIP(ctx))
}

func TestDetachDropsCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(WithTraceID(context.Background(), "t-2"))
	cancel()

	ctx := Detach(parent)

	assert.NoError(t, ctx.Err())
	assert.Equal(t, "t-2", TraceID(ctx))
}

func TestNilContext(t *testing.T) {
	assert.Equal(t, "", TraceID(nil))
	assert.NotNil(t, Detach(nil))
}
