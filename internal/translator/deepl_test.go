package translator

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReply = `{"jsonrpc":"2.0","id":8300000000,"result":{` +
	`"texts":[{"alternatives":[{"text":"Hallo Erde"}],"text":"Hallo Welt"}],` +
	`"lang":"EN","lang_is_confident":true,"detectedLanguages":{"EN":0.92,"NL":0.03}}}`

func TestTranslate(t *testing.T) {
	var gotBody []byte
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotHeader = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, sampleReply)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	result, err := client.Translate(context.Background(), "hello\nworld", "auto", "DE")
	require.NoError(t, err)

	require.Len(t, result.Texts, 1)
	assert.Equal(t, "Hallo Welt", result.Texts[0].Text)
	require.Len(t, result.Texts[0].Alternatives, 1)
	assert.Equal(t, "Hallo Erde", result.Texts[0].Alternatives[0].Text)
	assert.Equal(t, "EN", result.Lang)
	assert.True(t, result.LangIsConfident)
	assert.InDelta(t, 0.92, result.DetectedLanguages["EN"], 1e-9)

	// Client-identity headers went out with the request.
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "iOS", gotHeader.Get("x-app-os-name"))
	assert.Equal(t, "DeepL-iOS/2.9.1 iOS 16.3.0 (iPhone13,2)", gotHeader.Get("User-Agent"))
	assert.Equal(t, "510265", gotHeader.Get("x-app-build"))

	// The body is the canonical envelope with one of the two method variants.
	body := string(gotBody)
	assert.Regexp(t, regexp.MustCompile(`"method"( : | ?: )"LMT_handle_texts"`), body)
	assert.Contains(t, body, `"splitting":"newlines"`)
	assert.Contains(t, body, `"texts":[{"text":"hello\nworld","request_alternatives":0}]`)
	assert.Contains(t, body, `"source_lang_user_selected":"auto"`)
	assert.Contains(t, body, `"target_lang":"DE"`)
	assert.Contains(t, body, `"commonJobParams":{"was_spoken":false,"transcribe_as":""}`)

	var envelope struct {
		ID     int64 `json:"id"`
		Params struct {
			Texts     []map[string]any `json:"texts"`
			Timestamp int64            `json:"timestamp"`
		} `json:"params"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &envelope))
	assert.GreaterOrEqual(t, envelope.ID, int64(8_300_000_000))
	assert.Less(t, envelope.ID, int64(8_399_998_000))
	require.Len(t, envelope.Params.Texts, 1)
	// One line feed in the text: the timestamp is congruent to a modulus of
	// provisional+1+1, which is far too large to verify directly, but it must
	// at least be a plausible millisecond reading.
	assert.Greater(t, envelope.Params.Timestamp, int64(0))
}

func TestTranslateMissingTargetLang(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", nil)
	_, err := client.Translate(context.Background(), "hello", "auto", "")
	assert.ErrorIs(t, err, ErrMissingTargetLang)
}

func TestTranslateTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, "Too many requests")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	result, err := client.Translate(context.Background(), "hello", "auto", "DE")
	assert.Nil(t, result, "never a silently-empty success")

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusTooManyRequests, te.StatusCode)
	assert.Equal(t, "Too many requests", string(te.Body))
}

func TestTranslateDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>blocked</html>")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.Translate(context.Background(), "hello", "auto", "DE")

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "<html>blocked</html>", string(de.Body))
	assert.Error(t, de.Err)
}

func TestTranslateConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(srv.URL, nil)
	_, err := client.Translate(context.Background(), "hello", "auto", "DE")
	require.Error(t, err)

	var te *TransportError
	assert.False(t, errors.As(err, &te), "connection failures are not transport errors")
}

func TestTranslateContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(srv.URL, nil)
	_, err := client.Translate(ctx, "hello", "auto", "DE")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTranslateGzipResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip, deflate, br", r.Header.Get("Accept-Encoding"))
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		io.WriteString(gz, sampleReply)
		gz.Close()
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	result, err := client.Translate(context.Background(), "hello", "auto", "DE")
	require.NoError(t, err)
	require.Len(t, result.Texts, 1)
	assert.Equal(t, "Hallo Welt", result.Texts[0].Text)
}
