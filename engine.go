package cropadvice

import (
	"context"

	"github.com/goliatone/go-cropadvice/pkg/classifier"
	"github.com/goliatone/go-cropadvice/pkg/contract"
)

// NewEngineClient returns a classifier for the engine at endpoint whose
// responses are checked against the embedded prediction contract.
func NewEngineClient(ctx context.Context, endpoint string, options ...classifier.HTTPOption) (*classifier.HTTPClient, error) {
	spec, err := contract.Load(ctx)
	if err != nil {
		return nil, err
	}
	opts := append([]classifier.HTTPOption{classifier.WithContract(spec)}, options...)
	return classifier.NewHTTPClient(endpoint, opts...)
}
