package sender

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jimmiewester/skippy/internal/config"
)

func TestSendWithoutCredentials(t *testing.T) {
	c := NewElksClient(config.ElksConfig{}, zap.NewNop())
	assert.NoError(t, c.Send(context.Background(), "+46700000001", "hi"))
}

func TestSend(t *testing.T) {
	var gotForm map[string]string
	var gotAuth bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		gotAuth = ok && user == "api-user" && pass == "api-pass"

		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"from":    r.PostFormValue("from"),
			"to":      r.PostFormValue("to"),
			"message": r.PostFormValue("message"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewElksClient(config.ElksConfig{
		APIUsername: "api-user",
		APIPassword: "api-pass",
		FromNumber:  "+46700000000",
	}, zap.NewNop())
	c.baseURL = srv.URL

	require.NoError(t, c.Send(context.Background(), "+46700000001", "your reply"))
	assert.True(t, gotAuth)
	assert.Equal(t, "+46700000000", gotForm["from"])
	assert.Equal(t, "+46700000001", gotForm["to"])
	assert.Equal(t, "your reply", gotForm["message"])
}

func TestSendGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewElksClient(config.ElksConfig{
		APIUsername: "u",
		APIPassword: "p",
	}, zap.NewNop())
	c.baseURL = srv.URL

	err := c.Send(context.Background(), "+46700000001", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
