package inference

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var irisClasses = []string{"setosa", "versicolor", "virginica"}

type stubClassifier struct {
	classes   []string
	predictFn func(features []float32) (int, error)
	probaFn   func(features []float32) ([]float32, error)
}

func (s *stubClassifier) Predict(features []float32) (int, error) {
	return s.predictFn(features)
}

func (s *stubClassifier) PredictProbability(features []float32) ([]float32, error) {
	return s.probaFn(features)
}

func (s *stubClassifier) Classes() []string {
	return s.classes
}

func fixedClassifier(idx int, probs []float32) *stubClassifier {
	return &stubClassifier{
		classes:   irisClasses,
		predictFn: func([]float32) (int, error) { return idx, nil },
		probaFn:   func([]float32) ([]float32, error) { return probs, nil },
	}
}

// petalClassifier picks the class from petal length the way the real model
// roughly does, so batch order is observable.
func petalClassifier() *stubClassifier {
	byPetal := func(features []float32) int {
		switch petalLength := features[2]; {
		case petalLength < 2.5:
			return 0
		case petalLength < 5.0:
			return 1
		default:
			return 2
		}
	}
	return &stubClassifier{
		classes:   irisClasses,
		predictFn: func(features []float32) (int, error) { return byPetal(features), nil },
		probaFn: func(features []float32) ([]float32, error) {
			probs := []float32{0.05, 0.05, 0.05}
			probs[byPetal(features)] = 0.9
			return probs, nil
		},
	}
}

func setosaExample() Measurement {
	return Measurement{SepalLength: 5.1, SepalWidth: 3.5, PetalLength: 1.4, PetalWidth: 0.2}
}

func versicolorExample() Measurement {
	return Measurement{SepalLength: 7.0, SepalWidth: 3.2, PetalLength: 4.7, PetalWidth: 1.4}
}

func virginicaExample() Measurement {
	return Measurement{SepalLength: 6.3, SepalWidth: 3.3, PetalLength: 6.0, PetalWidth: 2.5}
}

func TestService_Predict(t *testing.T) {
	service := NewService(fixedClassifier(0, []float32{0.95, 0.04, 0.01}))

	prediction, err := service.Predict(setosaExample())

	require.NoError(t, err)
	assert.Equal(t, "setosa", prediction.Species)
	assert.InDelta(t, 0.95, prediction.Confidence, 1e-6)

	require.Len(t, prediction.Probabilities, 3)
	sum := 0.0
	maxProb := 0.0
	for _, p := range prediction.Probabilities {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		sum += p
		if p > maxProb {
			maxProb = p
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
	assert.Equal(t, maxProb, prediction.Confidence)
	assert.Equal(t, maxProb, prediction.Probabilities[prediction.Species])
}

func TestService_Predict_FeatureOrder(t *testing.T) {
	var got []float32
	clf := fixedClassifier(0, []float32{0.9, 0.05, 0.05})
	inner := clf.predictFn
	clf.predictFn = func(features []float32) (int, error) {
		got = append([]float32(nil), features...)
		return inner(features)
	}

	_, err := NewService(clf).Predict(Measurement{
		SepalLength: 1.0, SepalWidth: 2.0, PetalLength: 3.0, PetalWidth: 4.0,
	})

	require.NoError(t, err)
	assert.Equal(t, []float32{1.0, 2.0, 3.0, 4.0}, got)
}

func TestService_Predict_Deterministic(t *testing.T) {
	service := NewService(petalClassifier())

	first, err := service.Predict(setosaExample())
	require.NoError(t, err)
	second, err := service.Predict(setosaExample())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestService_Predict_ModelError(t *testing.T) {
	clf := fixedClassifier(0, nil)
	clf.predictFn = func([]float32) (int, error) {
		return 0, errors.New("session run failed")
	}
	service := NewService(clf)

	prediction, err := service.Predict(setosaExample())

	require.Error(t, err)
	assert.Nil(t, prediction)
	assert.Contains(t, err.Error(), "session run failed")
}

func TestService_Predict_IndexOutOfRange(t *testing.T) {
	service := NewService(fixedClassifier(7, []float32{0.9, 0.05, 0.05}))

	prediction, err := service.Predict(setosaExample())

	require.Error(t, err)
	assert.Nil(t, prediction)
}

func TestService_PredictBatch_PreservesOrder(t *testing.T) {
	service := NewService(petalClassifier())

	predictions, err := service.PredictBatch([]Measurement{
		setosaExample(),
		versicolorExample(),
		virginicaExample(),
	})

	require.NoError(t, err)
	require.Len(t, predictions, 3)
	assert.Equal(t, "setosa", predictions[0].Species)
	assert.Equal(t, "versicolor", predictions[1].Species)
	assert.Equal(t, "virginica", predictions[2].Species)
	for _, p := range predictions {
		assert.Greater(t, p.Confidence, 0.5)
	}
}

func TestService_PredictBatch_Empty(t *testing.T) {
	service := NewService(petalClassifier())

	predictions, err := service.PredictBatch(nil)

	require.NoError(t, err)
	assert.NotNil(t, predictions)
	assert.Empty(t, predictions)
}

func TestService_PredictBatch_FailureAbortsWholeBatch(t *testing.T) {
	calls := 0
	clf := fixedClassifier(0, []float32{0.9, 0.05, 0.05})
	clf.predictFn = func([]float32) (int, error) {
		calls++
		if calls == 2 {
			return 0, errors.New("session run failed")
		}
		return 0, nil
	}
	service := NewService(clf)

	predictions, err := service.PredictBatch([]Measurement{
		setosaExample(),
		setosaExample(),
		setosaExample(),
	})

	require.Error(t, err)
	assert.Nil(t, predictions)
	assert.Contains(t, err.Error(), "batch item 1")
}

func TestService_ModelLoaded(t *testing.T) {
	assert.True(t, NewService(petalClassifier()).ModelLoaded())
	assert.False(t, NewService(nil).ModelLoaded())
}
