package sources

import (
	"context"

	"github.com/gmlima14/irf/internal/prediction"
	"github.com/gmlima14/irf/pkg/errors"
)

// ClassifierSource provides the delivery classifier for a run.
type ClassifierSource interface {
	Classifier(ctx context.Context) (prediction.Classifier, error)
}

// ModelArtifact loads a logistic model exported as JSON.
type ModelArtifact struct {
	Blob Blob
}

func (s ModelArtifact) Classifier(ctx context.Context) (prediction.Classifier, error) {
	_, data, err := s.Blob.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	model, err := prediction.LoadLogisticModel(data)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "model artifact could not be loaded")
	}
	return model, nil
}

// RemoteClassifier hands out a classifier that calls a model endpoint.
type RemoteClassifier struct {
	Client prediction.Classifier
}

func (s RemoteClassifier) Classifier(context.Context) (prediction.Classifier, error) {
	if s.Client == nil {
		return nil, errors.New(errors.CodeDependency, "remote classifier not configured")
	}
	return s.Client, nil
}
