package ctx

import (
	"fmt"
	"os"

	"github.com/pkoukk/tiktoken-go"
)

// TokenEstimator estimates the token count of a file for the picker's
// status line.
type TokenEstimator func(path string) (int, error)

// NewTokenEstimator selects an estimator by name: "simple" (size/4) or
// "tiktoken" (cl100k_base).
func NewTokenEstimator(name string) (TokenEstimator, error) {
	switch name {
	case "simple":
		return EstimateTokensSimple, nil
	case "tiktoken":
		return EstimateTokensTiktoken, nil
	default:
		return nil, fmt.Errorf("unknown token estimator: %s", name)
	}
}

// EstimateTokensSimple approximates ~4 bytes per token.
func EstimateTokensSimple(path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return int(info.Size() / 4), nil
}

// EstimateTokensTiktoken counts tokens with the cl100k_base encoding.
func EstimateTokensTiktoken(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	tke, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return 0, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}

	return len(tke.Encode(string(data), nil, nil)), nil
}
