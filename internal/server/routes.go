package server

import (
	"net/http"
)

func SetupRoutes(featureHandler *FeatureService) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/features/", featureHandler.GetFeatures)
	mux.HandleFunc("/features", featureHandler.ComputeFeatures)

	return mux
}
