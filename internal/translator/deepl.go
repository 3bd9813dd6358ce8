// Package translator implements a client for the DeepL mobile application's
// undocumented JSON-RPC endpoint. The request path reproduces the mobile
// client's traffic byte for byte: a synthesized id in the genuine numeric
// band, a timestamp aligned to the text's line-feed count, and the id-keyed
// spacing variant of the method key.
package translator

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// DefaultEndpoint is the JSON-RPC endpoint the mobile client talks to.
const DefaultEndpoint = "https://www2.deepl.com/jsonrpc"

// DefaultHeaders returns the client-identity header set of the current real
// mobile client release. The values drift as DeepL ships new releases, so
// deployments should override them from config rather than rely on these
// staying valid forever.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":     "application/json",
		"Accept":           "*/*",
		"x-app-os-name":    "iOS",
		"x-app-os-version": "16.3.0",
		"Accept-Language":  "en-US,en;q=0.9",
		"Accept-Encoding":  "gzip, deflate, br",
		"x-app-device":     "iPhone13,2",
		"User-Agent":       "DeepL-iOS/2.9.1 iOS 16.3.0 (iPhone13,2)",
		"x-app-build":      "510265",
		"x-app-version":    "2.9.1",
		"Connection":       "keep-alive",
	}
}

// Client talks to the DeepL mobile endpoint. It holds no per-call state, so a
// single Client is safe for concurrent use.
type Client struct {
	endpoint string
	headers  map[string]string
	client   *http.Client
}

// NewClient creates a client for the given endpoint. Empty endpoint falls
// back to DefaultEndpoint; nil headers fall back to DefaultHeaders. No
// timeout is set on the underlying http.Client — callers control deadlines
// through the context they pass to Translate.
func NewClient(endpoint string, headers map[string]string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if headers == nil {
		headers = DefaultHeaders()
	}
	return &Client{
		endpoint: endpoint,
		headers:  headers,
		client:   &http.Client{},
	}
}

// TranslationResult is the parsed reply for a single translate call.
type TranslationResult struct {
	Texts             []TranslatedText   `json:"texts"`
	Lang              string             `json:"lang"`
	LangIsConfident   bool               `json:"lang_is_confident"`
	DetectedLanguages map[string]float64 `json:"detectedLanguages"`
}

// TranslatedText is one translated element with its requested alternatives.
type TranslatedText struct {
	Alternatives []Alternative `json:"alternatives"`
	Text         string        `json:"text"`
}

// Alternative is a secondary translation candidate.
type Alternative struct {
	Text string `json:"text"`
}

type deeplResponse struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      int64             `json:"id"`
	Result  TranslationResult `json:"result"`
}

// Translate sends one text to the mobile endpoint and returns the parsed
// result. sourceLang accepts "auto" for source detection; targetLang must be
// non-empty. One attempt only, no retries. Cancelling or expiring ctx aborts
// the in-flight exchange and releases the connection.
//
// Failures are typed: a non-200 status yields a *TransportError with the raw
// response, an undecodable 200 body yields a *DecodeError, and network-level
// failures come back wrapped from the transport.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (*TranslationResult, error) {
	if targetLang == "" {
		return nil, ErrMissingTargetLang
	}

	count := lineFeedFold(timestampForICount(0), text)
	id := randomNumberID()
	pd := newPostData(id, timestampForICount(count), text, sourceLang, targetLang)

	payload, err := dumpPostData(pd)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepl request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read deepl response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: body}
	}

	var reply deeplResponse
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, &DecodeError{Body: body, Err: err}
	}

	return &reply.Result, nil
}

// readBody drains the response, undoing whatever Content-Encoding the server
// picked from our advertised Accept-Encoding. Setting that header by hand
// disables net/http's transparent gzip, so decompression is on us.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(resp.Body)
	}
	return io.ReadAll(reader)
}
