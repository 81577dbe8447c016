package embedding

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestOpenAIClient_GetVector(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}],"model":"text-embedding-ada-002"}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", srv.URL+"/v1", "")
	vec, err := c.GetVector(context.Background(), "Hi Jose, I'm Alice")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "text-embedding-ada-002", c.Model())
	assert.Equal(t, "text-embedding-ada-002", gjson.GetBytes(body, "model").String())
	assert.Equal(t, "Hi Jose, I'm Alice", gjson.GetBytes(body, "input.0").String())
}

func TestOpenAIClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
		empty  bool
	}{
		{name: "upstream 500", status: http.StatusInternalServerError, reply: `{"error":{"message":"boom"}}`},
		{name: "no data", status: http.StatusOK, reply: `{"object":"list","data":[]}`, empty: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.reply)
			}))
			defer srv.Close()

			_, err := NewOpenAIClient("sk-test", srv.URL+"/v1", "text-embedding-3-small").GetVector(context.Background(), "x")
			require.Error(t, err)
			assert.Equal(t, tt.empty, errors.Is(err, ErrEmptyEmbedding))
		})
	}
}

type mockProvider struct{ mock.Mock }

func (m *mockProvider) GetVector(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	vec, _ := args.Get(0).([]float32)
	return vec, args.Error(1)
}

func TestCachedProvider(t *testing.T) {
	ctx := context.Background()
	inner := &mockProvider{}
	inner.On("GetVector", ctx, "hello").Return([]float32{1, 2}, nil).Once()
	inner.On("GetVector", ctx, "broken").Return(nil, errors.New("rate limited")).Twice()

	p, err := NewCachedProvider(inner, "ada", 100)
	require.NoError(t, err)
	defer p.Close()

	vec, err := p.GetVector(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec)
	p.Wait()

	vec, err = p.GetVector(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec)

	// 失败不缓存
	_, err = p.GetVector(ctx, "broken")
	assert.Error(t, err)
	p.Wait()
	_, err = p.GetVector(ctx, "broken")
	assert.Error(t, err)

	inner.AssertExpectations(t)
}
