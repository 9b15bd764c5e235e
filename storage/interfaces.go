package storage

import "competitor-sentiment/models"

// ReportWriter is the interface any report export backend must satisfy.
type ReportWriter interface {
	WriteReport(r *models.Report) error
	Close() error
}

// ReviewWriter persists labeled reviews.
type ReviewWriter interface {
	WriteReviews(reviews []models.LabeledReview) error
	Close() error
}
