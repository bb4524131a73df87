package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequireQuery(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/?q=三体", nil)

		v, ok := requireQuery(c, "q")

		assert.True(t, ok)
		assert.Equal(t, "三体", v)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("trimmed", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/?q=%20%E4%B8%89%E4%BD%93%20", nil)

		v, ok := requireQuery(c, "q")

		assert.True(t, ok)
		assert.Equal(t, "三体", v)
	})

	t.Run("blank is missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/?q=%20%20", nil)

		_, ok := requireQuery(c, "q")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/", nil)

		_, ok := requireQuery(c, "q")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "q is required")
	})
}

func TestParseOptionalBool(t *testing.T) {
	tests := []struct {
		query    string
		want     bool
		wantOK   bool
		wantCode int
	}{
		{"/", true, true, http.StatusOK},
		{"/?covers=false", false, true, http.StatusOK},
		{"/?covers=1", true, true, http.StatusOK},
		{"/?covers=maybe", false, false, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", tt.query, nil)

			v, ok := parseOptionalBool(c, "covers", true)

			assert.Equal(t, tt.want, v)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestRespondInternalError_HidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondInternalError(c, errors.New("secret detail"), "test")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret detail")
}
