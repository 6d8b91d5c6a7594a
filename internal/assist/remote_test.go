package assist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/notable/internal/apperr"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestRemoteEditSendsWireFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/lecture/edit", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello world", body["wholeLecture"])
		assert.Equal(t, "hello", body["partToModify"])
		assert.Equal(t, "capitalize", body["suggestion"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"modifiedText":"HELLO world"}`))
	}))
	defer server.Close()

	remote := NewRemote(server.URL+"/", server.Client(), staticToken("tok"))
	out, err := remote.Edit(context.Background(), EditRequest{
		WholeDocument: "hello world",
		SelectedPart:  "hello",
		Instruction:   "capitalize",
	})
	require.NoError(t, err)
	assert.Equal(t, "HELLO world", out)
}

func TestRemoteSurfacesDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"token revoked"}`))
	}))
	defer server.Close()

	remote := NewRemote(server.URL, server.Client(), nil)
	_, err := remote.Generate(context.Background(), "cells")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeUnauthorized))
	assert.Equal(t, "token revoked", apperr.MessageOf(err))
}

func TestRemoteRoutes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"), "empty tokens are not sent")
		switch r.URL.Path {
		case "/api/v1/chat":
			w.Write([]byte(`{"reply":"hi there"}`))
		case "/api/v1/diagram/generate":
			w.Write([]byte(`{"diagram":"graph TD\nA-->B"}`))
		case "/api/v1/lecture/process":
			w.Write([]byte(`{"processedContent":"merged"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	remote := NewRemote(server.URL, server.Client(), staticToken(""))
	ctx := context.Background()

	reply, err := remote.Send(ctx, nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)

	diagram, err := remote.Generate(ctx, "a then b")
	require.NoError(t, err)
	assert.Equal(t, "graph TD\nA-->B", diagram)

	merged, err := remote.Process(ctx, LectureRequest{NoteID: "n1", LectureContent: "x"})
	require.NoError(t, err)
	assert.Equal(t, "merged", merged)
}

func TestDetailOf(t *testing.T) {
	assert.Equal(t, "bad", detailOf([]byte(`{"detail":"bad"}`)))
	assert.Equal(t, `[{"msg":"field required"}]`, detailOf([]byte(`{"detail":[{"msg":"field required"}]}`)))
	assert.Equal(t, "plain text", detailOf([]byte("plain text\n")))
}
