package translator

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"strings"
	"time"
)

// The id band observed in genuine mobile client traffic. Ids outside this
// band (or not on a 1000 step) are rejected upstream.
const (
	idBandLow  = 8300000
	idBandHigh = 8399998
	idStep     = 1000
)

// postData is the JSON-RPC envelope for LMT_handle_texts. Field order
// matches the mobile client's serialization and must not change.
type postData struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	ID      int64  `json:"id"`
	Params  params `json:"params"`
}

type params struct {
	Texts           []textEntry     `json:"texts"`
	Splitting       string          `json:"splitting"`
	Lang            langPair        `json:"lang"`
	Timestamp       int64           `json:"timestamp"`
	CommonJobParams commonJobParams `json:"commonJobParams"`
}

type textEntry struct {
	Text                string `json:"text"`
	RequestAlternatives int    `json:"request_alternatives"`
}

type langPair struct {
	SourceLangUserSelected string `json:"source_lang_user_selected"`
	TargetLang             string `json:"target_lang"`
}

type commonJobParams struct {
	WasSpoken    bool   `json:"was_spoken"`
	TranscribeAs string `json:"transcribe_as"`
}

// randomNumberID synthesizes a request id inside the band used by the real
// client population. The generator is seeded with whole epoch seconds, so two
// calls within the same second draw the same id; that matches upstream
// behavior and is harmless.
func randomNumberID() int64 {
	rng := rand.New(rand.NewSource(time.Now().Unix()))
	return (idBandLow + rng.Int63n(idBandHigh-idBandLow)) * idStep
}

// timestampForICount returns the current millisecond timestamp aligned to the
// given count. For a nonzero count the result is floored to a multiple of
// count+1 and then bumped by count+1 again, so it is always strictly greater
// than the raw clock reading. A zero count returns the raw reading unchanged.
func timestampForICount(iCount int64) int64 {
	ts := time.Now().UnixMilli()
	if iCount == 0 {
		return ts
	}
	iCount++
	return ts - ts%iCount + iCount
}

// lineFeedFold counts 0x0A bytes in text on top of init. The translate flow
// seeds init with a provisional timestampForICount(0), coupling text shape to
// the timestamp exactly the way the mobile client does. Wire compatibility
// depends on this coupling, odd as it is.
func lineFeedFold(init int64, text string) int64 {
	count := init
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			count++
		}
	}
	return count
}

// newPostData builds the envelope with all fixed literals in place. Exactly
// one text element is sent per call.
func newPostData(id, timestamp int64, text, sourceLang, targetLang string) *postData {
	return &postData{
		JSONRPC: "2.0",
		Method:  "LMT_handle_texts",
		ID:      id,
		Params: params{
			Texts: []textEntry{{
				Text:                text,
				RequestAlternatives: 0,
			}},
			Splitting: "newlines",
			Lang: langPair{
				SourceLangUserSelected: sourceLang,
				TargetLang:             targetLang,
			},
			Timestamp: timestamp,
			CommonJobParams: commonJobParams{
				WasSpoken:    false,
				TranscribeAs: "",
			},
		},
	}
}

// dumpPostData serializes the envelope canonically (no HTML escaping, no
// trailing whitespace) and applies the spacing variant for the method key.
func dumpPostData(pd *postData) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(pd); err != nil {
		return "", err
	}
	payload := strings.TrimSuffix(buf.String(), "\n")
	return obfuscateMethod(payload, pd.ID), nil
}

// obfuscateMethod rewrites the single method-key delimiter. Real clients show
// two spacing variants in the wild; which one a request carries is a pure
// function of its id, so a given id always serializes the same way.
func obfuscateMethod(payload string, id int64) string {
	if (id+5)%29 == 0 || (id+3)%13 == 0 {
		return strings.Replace(payload, `"method":"`, `"method" : "`, 1)
	}
	return strings.Replace(payload, `"method":"`, `"method": "`, 1)
}
