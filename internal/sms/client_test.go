package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigured(t *testing.T) {
	assert.False(t, NewClient(Config{}).Configured())
	assert.False(t, NewClient(Config{AccountSID: "AC123"}).Configured())
	assert.True(t, NewClient(Config{AccountSID: "AC123", AuthToken: "secret", From: "+15550000000"}).Configured())
}

func TestSendPostsFormEncodedMessage(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody string
	var gotUser, gotPass string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotTo = r.PostForm.Get("To")
		gotFrom = r.PostForm.Get("From")
		gotBody = r.PostForm.Get("Body")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(Config{AccountSID: "AC123", AuthToken: "secret", From: "+15550000000", BaseURL: server.URL})

	err := client.Send(context.Background(), "+15551234567", "see you on court 2")
	require.NoError(t, err)

	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", gotPath)
	assert.Equal(t, "AC123", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, "+15551234567", gotTo)
	assert.Equal(t, "+15550000000", gotFrom)
	assert.Equal(t, "see you on court 2", gotBody)
}

func TestSendSurfacesProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "invalid 'To' number"}`))
	}))
	defer server.Close()

	client := NewClient(Config{AccountSID: "AC123", AuthToken: "secret", From: "+15550000000", BaseURL: server.URL})

	err := client.Send(context.Background(), "invalid", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSendUnconfigured(t *testing.T) {
	err := NewClient(Config{}).Send(context.Background(), "+15551234567", "hello")
	assert.Error(t, err)
}
