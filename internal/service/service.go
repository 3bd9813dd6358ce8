package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"deeplx/internal/config"
	"deeplx/internal/metrics"
	"deeplx/internal/models"
	"deeplx/internal/storage"
	"deeplx/internal/translator"
)

// ErrEmptyText is returned before any upstream call when there is nothing to
// translate.
var ErrEmptyText = errors.New("text is required")

// TranslateResult holds the outcome of one translate call.
type TranslateResult struct {
	Translation  string   `json:"translation"`
	Alternatives []string `json:"alternatives,omitempty"`
	DetectedLang string   `json:"detected_lang,omitempty"`
	SourceLang   string   `json:"source_lang"`
	TargetLang   string   `json:"target_lang"`
}

// Service wires the translator client, configuration and the optional
// history store together for the CLI and the HTTP server.
type Service struct {
	cfg    *config.Config
	store  *storage.SQLiteStorage
	client *translator.Client
}

// NewService creates a new service instance. store may be nil when history
// recording is disabled.
func NewService(cfg *config.Config, store *storage.SQLiteStorage) *Service {
	return &Service{
		cfg:    cfg,
		store:  store,
		client: translator.NewClient(cfg.DeepL.Endpoint, cfg.DeepL.Headers),
	}
}

// Translate performs one upstream call and records it in history. An empty
// sourceLang falls back to "auto". The configured timeout bounds the call on
// top of whatever deadline ctx already carries.
func (s *Service) Translate(ctx context.Context, text, sourceLang, targetLang string) (*TranslateResult, error) {
	if text == "" {
		metrics.RecordUpstreamRequest(0, "invalid_input")
		return nil, ErrEmptyText
	}
	if targetLang == "" {
		metrics.RecordUpstreamRequest(0, "invalid_input")
		return nil, translator.ErrMissingTargetLang
	}
	if sourceLang == "" {
		sourceLang = "auto"
	}

	if s.cfg.DeepL.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.DeepL.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.client.Translate(ctx, text, sourceLang, targetLang)
	metrics.RecordUpstreamRequest(time.Since(start), outcome(err))
	if err != nil {
		return nil, err
	}

	res := &TranslateResult{
		DetectedLang: result.Lang,
		SourceLang:   sourceLang,
		TargetLang:   targetLang,
	}
	if len(result.Texts) > 0 {
		res.Translation = result.Texts[0].Text
		for _, alt := range result.Texts[0].Alternatives {
			res.Alternatives = append(res.Alternatives, alt.Text)
		}
	}

	s.record(text, sourceLang, targetLang, res)
	return res, nil
}

// History returns the most recent recorded translations.
func (s *Service) History(limit int) ([]*models.Translation, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.GetRecentTranslations(limit)
}

// Stats returns history statistics.
func (s *Service) Stats() (*storage.Stats, error) {
	if s.store == nil {
		return &storage.Stats{}, nil
	}
	return s.store.GetStats()
}

// record writes a history row. A failed write never fails the call.
func (s *Service) record(text, sourceLang, targetLang string, res *TranslateResult) {
	if s.store == nil {
		return
	}
	err := s.store.InsertTranslation(&models.Translation{
		Text:         text,
		SourceLang:   sourceLang,
		TargetLang:   targetLang,
		Translated:   res.Translation,
		DetectedLang: res.DetectedLang,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to record translation history")
	}
}

func outcome(err error) string {
	var te *translator.TransportError
	var de *translator.DecodeError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &te):
		return "transport_error"
	case errors.As(err, &de):
		return "decode_error"
	default:
		return "connection_error"
	}
}
