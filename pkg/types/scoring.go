// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Method identifies the backend that produced a score.
type Method string

const (
	MethodMechanical  Method = "mechanical"
	MethodSingleStage Method = "single-stage"
	MethodTwoStage    Method = "two-stage"
)

// ScoreCore holds the fields every scoring result carries.
type ScoreCore struct {
	// Score is the normalized score in [0, 10].
	Score    float64  `json:"score" yaml:"score"`
	Category Category `json:"category" yaml:"category"`

	// RawScore is the backend's unnormalized value. For model backends it
	// equals Score.
	RawScore float64 `json:"raw_score" yaml:"raw_score"`
	Method   Method  `json:"method" yaml:"method"`
}

// Core returns the shared fields.
func (c ScoreCore) Core() ScoreCore { return c }

// ScoringResult is the closed set of backend outputs. The concrete types
// are MechanicalResult, SingleStageResult and TwoStageResult.
type ScoringResult interface {
	Core() ScoreCore
	isScoringResult()
}

// MechanicalResult comes from keyword, recency and source-weight scoring.
type MechanicalResult struct {
	ScoreCore
	KeywordHits  int     `json:"keyword_hits" yaml:"keyword_hits"`
	RecencyScore float64 `json:"recency_score" yaml:"recency_score"`
	SourceWeight float64 `json:"source_weight" yaml:"source_weight"`

	// FallbackReason is set when a model backend degraded this article to
	// mechanical scoring.
	FallbackReason string `json:"fallback_reason,omitempty" yaml:"fallback_reason,omitempty"`
}

// SingleStageResult comes from one batch model call.
type SingleStageResult struct {
	ScoreCore
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model" yaml:"model"`
}

// TwoStageResult comes from the prefilter-then-rerank pipeline. When
// Reranked is false the score is the prefilter score carried forward.
type TwoStageResult struct {
	ScoreCore
	PrefilterScore float64 `json:"prefilter_score" yaml:"prefilter_score"`
	Reranked       bool    `json:"reranked" yaml:"reranked"`
	Model          string  `json:"model" yaml:"model"`
}

func (MechanicalResult) isScoringResult()  {}
func (SingleStageResult) isScoringResult() {}
func (TwoStageResult) isScoringResult()    {}
