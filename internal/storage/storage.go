package storage

import "routeScope/internal/model"

// Storage defines a sink for opportunity records.
type Storage interface {
	PutOpportunities(records []model.OpportunityRecord) error
}
