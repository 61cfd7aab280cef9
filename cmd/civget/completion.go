package main

import "github.com/posener/complete"

// Predictors for the constraint flags, registered in main via kongplete.

func sizePredictor() complete.Predictor {
	return complete.PredictSet("full", "pruned")
}

func fpPredictor() complete.Predictor {
	return complete.PredictSet("8", "16", "32")
}
