package models

import "time"

// Sentiment is the 3-way bucket a review falls into.
type Sentiment string

const (
	Positive Sentiment = "Positive"
	Neutral  Sentiment = "Neutral"
	Negative Sentiment = "Negative"
)

// Buckets lists every sentiment bucket in report order.
var Buckets = []Sentiment{Positive, Neutral, Negative}

// NoReviewText is the body placeholder for review nodes without text.
const NoReviewText = "No Review Text"

// Review is one customer review scraped from a listing's reviews page.
type Review struct {
	RaterName        string `json:"rater_name"`
	RaterReviewCount string `json:"rater_review_count"`
	StarText         string `json:"star_text"`
	Body             string `json:"body"`
	SourceURL        string `json:"source_url"`
	Stars            int    `json:"stars"`
	Language         string `json:"language,omitempty"`
}

// SentimentResult is the classifier output for one review.
// StarEquivalent is 0 when no model output was available.
type SentimentResult struct {
	Label          Sentiment `json:"sentiment"`
	Polarity       float64   `json:"polarity"`
	Subjectivity   float64   `json:"subjectivity"`
	Confidence     float64   `json:"confidence"`
	StarEquivalent int       `json:"star_equivalent"`
}

// LabeledReview is a Review with its sentiment attached. Competitor fields
// are empty for single-listing runs.
type LabeledReview struct {
	Review
	SentimentResult
	CompetitorName   string    `json:"competitor_name,omitempty"`
	CompetitorRating float64   `json:"competitor_rating,omitempty"`
	AnalyzedAt       time.Time `json:"analyzed_at"`
}
