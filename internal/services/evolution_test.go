package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/recovery-bot/internal/config"
)

func TestNewEvolutionService_RequiresSettings(t *testing.T) {
	_, err := NewEvolutionService(config.EvolutionConfig{Host: "http://localhost"}, discardLogger())
	require.Error(t, err)
}

func TestEvolutionService_SendText(t *testing.T) {
	var got sendTextRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/message/sendText/lanchonete", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	svc, err := NewEvolutionService(config.EvolutionConfig{
		Host:     srv.URL,
		APIKey:   "secret",
		Instance: "lanchonete",
		Timeout:  time.Second,
	}, discardLogger())
	require.NoError(t, err)

	require.NoError(t, svc.SendText(context.Background(), customer, "oi"))
	assert.Equal(t, sendTextRequest{Number: "5511987654321", Text: "oi"}, got)
}

func TestEvolutionService_SendTextRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "instance not connected", http.StatusBadRequest)
	}))
	defer srv.Close()

	svc, err := NewEvolutionService(config.EvolutionConfig{
		Host: srv.URL, APIKey: "k", Instance: "i", Timeout: time.Second,
	}, discardLogger())
	require.NoError(t, err)

	err = svc.SendText(context.Background(), customer, "oi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestEvolutionService_SendTextHonoursCancelledContext(t *testing.T) {
	svc, err := NewEvolutionService(config.EvolutionConfig{
		Host: "http://127.0.0.1:1", APIKey: "k", Instance: "i",
	}, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, svc.SendText(ctx, customer, "oi"), context.Canceled)
}
