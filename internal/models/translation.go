package models

import "time"

// Translation is one recorded translate call. History rows are written after
// a call resolves; the translate path itself never reads them.
type Translation struct {
	ID           int64     `json:"id"`
	Text         string    `json:"text"`
	SourceLang   string    `json:"source_lang"`
	TargetLang   string    `json:"target_lang"`
	Translated   string    `json:"translated"`
	DetectedLang string    `json:"detected_lang"`
	CreatedAt    time.Time `json:"created_at"`
}
