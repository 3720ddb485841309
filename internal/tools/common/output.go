package common

import (
	"encoding/json"
	"io"
	"os"
	"time"
)

// CIResult is the JSON document every tool prints in --ci mode.
type CIResult struct {
	OK        bool     `json:"ok"`
	Title     string   `json:"title"`
	Details   []string `json:"details,omitempty"`
	Error     string   `json:"error,omitempty"`
	ElapsedMS int64    `json:"elapsed_ms"`
}

func NewCIResult(title string, details []string, err error, elapsed time.Duration) CIResult {
	result := CIResult{OK: err == nil, Title: title, Details: details, ElapsedMS: elapsed.Milliseconds()}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

func WriteCIResult(w io.Writer, result CIResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func PrintCIResult(result CIResult) {
	_ = WriteCIResult(os.Stdout, result)
}
