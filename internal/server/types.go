// Package server provides the HTTP server for the RNAfold API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// CreateJobRequest is the HTTP request body for submitting a fold job.
type CreateJobRequest struct {
	// Sequence is the nucleotide sequence to fold.
	Sequence string `json:"sequence" validate:"required,min=1,max=10000"`
	// Temperature is the energy-parameter temperature in °C (0 = default 37).
	Temperature int `json:"temperature" validate:"omitempty,min=1,max=100"`
	// Engine names the folding engine; empty selects the default.
	Engine string `json:"engine,omitempty"`
	// PushToS3 indicates whether to upload the result file to S3.
	PushToS3 bool `json:"push_to_s3"`
}

// CreateJobResponse is the HTTP response after submitting a job.
type CreateJobResponse struct {
	// ID is the unique identifier for the created job.
	ID string `json:"id"`
	// Status is the initial job status.
	Status string `json:"status"`
}

// JobResponse is the HTTP response for getting job details.
type JobResponse struct {
	// ID is the unique identifier for the job.
	ID string `json:"id"`
	// Status is the current job status.
	Status string `json:"status"`
	// Sequence is the submitted nucleotide sequence.
	Sequence string `json:"sequence"`
	// Temperature is the energy-parameter temperature in °C.
	Temperature int `json:"temperature"`
	// Engine is the folding engine used.
	Engine string `json:"engine"`
	// DotBracket is the predicted structure (if completed).
	DotBracket string `json:"dot_bracket,omitempty"`
	// FreeEnergy is the free energy in kcal/mol (if completed).
	FreeEnergy *float64 `json:"free_energy,omitempty"`
	// BasePairs holds the decoded base pairs (if completed).
	BasePairs [][2]int `json:"base_pairs,omitempty"`
	// Error contains any error message if the job failed.
	Error string `json:"error,omitempty"`
	// ResultURL is the S3 URL of the result file (if push_to_s3=true and completed).
	ResultURL string `json:"result_url,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}

// EnginesResponse lists the registered folding engines.
type EnginesResponse struct {
	// Engines are the registered engine names.
	Engines []string `json:"engines"`
}
