package model

// Classifier is a supervised model over integer class labels.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) []int
}

var _ Classifier = (*DecisionTreeClassifier)(nil)
