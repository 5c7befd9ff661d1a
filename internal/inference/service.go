package inference

import (
	"fmt"
)

// Classifier is the trained model the service scores measurements with.
// Implementations must be deterministic: identical features always produce
// identical output.
type Classifier interface {
	// Predict returns the predicted class index for a feature vector.
	Predict(features []float32) (int, error)
	// PredictProbability returns the per-class probability vector, ordered
	// by class index.
	PredictProbability(features []float32) ([]float32, error)
	// Classes returns the class labels ordered by class index.
	Classes() []string
}

// Service maps measurements onto the classifier and shapes its raw output
// into predictions. The classifier is injected once at construction and
// never replaced.
type Service struct {
	classifier Classifier
}

func NewService(classifier Classifier) *Service {
	return &Service{classifier: classifier}
}

// ModelLoaded reports whether the service holds a usable classifier.
func (s *Service) ModelLoaded() bool {
	return s.classifier != nil
}

// Predict scores a single measurement. Any classifier failure is returned
// as an error for the caller to report as an internal failure.
func (s *Service) Predict(m Measurement) (*Prediction, error) {
	features := m.Features()

	idx, err := s.classifier.Predict(features)
	if err != nil {
		return nil, fmt.Errorf("model predict: %w", err)
	}

	probabilities, err := s.classifier.PredictProbability(features)
	if err != nil {
		return nil, fmt.Errorf("model predict probability: %w", err)
	}

	classes := s.classifier.Classes()
	if idx < 0 || idx >= len(classes) || idx >= len(probabilities) {
		return nil, fmt.Errorf("model returned class index %d out of range for %d classes", idx, len(classes))
	}

	probs := make(map[string]float64, len(classes))
	for i, class := range classes {
		if i < len(probabilities) {
			probs[class] = float64(probabilities[i])
		}
	}

	return &Prediction{
		Species:       classes[idx],
		Confidence:    float64(probabilities[idx]),
		Probabilities: probs,
	}, nil
}

// PredictBatch scores measurements sequentially and preserves input order.
// The first failure aborts the whole batch; there is no partial result.
func (s *Service) PredictBatch(measurements []Measurement) ([]Prediction, error) {
	predictions := make([]Prediction, 0, len(measurements))

	for i, m := range measurements {
		prediction, err := s.Predict(m)
		if err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i, err)
		}
		predictions = append(predictions, *prediction)
	}

	return predictions, nil
}
