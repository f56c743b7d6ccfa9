package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gostatcheck/internal"
	"gostatcheck/internal/records"
	"gostatcheck/ports"

	"github.com/tidwall/gjson"
)

// ExtractorConfig selects the model used for one analyzer
type ExtractorConfig struct {
	Model       string
	Temperature float64
}

// StatcheckExtractor asks the model for reported NHST results
type StatcheckExtractor struct {
	client ports.LLMClient
	config ExtractorConfig
	logger *internal.Logger
}

// NewStatcheckExtractor creates a statcheck extractor
func NewStatcheckExtractor(client ports.LLMClient, config ExtractorConfig) *StatcheckExtractor {
	return &StatcheckExtractor{
		client: client,
		config: config,
		logger: internal.DefaultLogger.WithComponent("StatcheckExtractor"),
	}
}

// ExtractTests implements ports.TestExtractor
func (e *StatcheckExtractor) ExtractTests(ctx context.Context, segment string) ([]records.TestInput, error) {
	elements, err := askForTests(ctx, e.client, e.config, statcheckSystem, statcheckPrompt, segment)
	if err != nil {
		return nil, err
	}

	tests := make([]records.TestInput, 0, len(elements))
	for i, el := range elements {
		if !el.Get("test_type").Exists() || !el.Get("test_value").Exists() {
			e.logger.Warn("skipping element %d without test_type or test_value", i)
			continue
		}
		var in records.TestInput
		if err := json.Unmarshal([]byte(el.Raw), &in); err != nil {
			e.logger.Warn("skipping element %d: %v", i, err)
			continue
		}
		tests = append(tests, in)
	}
	e.logger.Debug("extracted %d tests", len(tests))
	return tests, nil
}

// GrimExtractor asks the model for means of integer data with their sample sizes
type GrimExtractor struct {
	client ports.LLMClient
	config ExtractorConfig
	logger *internal.Logger
}

// NewGrimExtractor creates a GRIM extractor
func NewGrimExtractor(client ports.LLMClient, config ExtractorConfig) *GrimExtractor {
	return &GrimExtractor{
		client: client,
		config: config,
		logger: internal.DefaultLogger.WithComponent("GrimExtractor"),
	}
}

// ExtractMeans implements ports.MeanExtractor
func (e *GrimExtractor) ExtractMeans(ctx context.Context, segment string) ([]records.MeanInput, error) {
	elements, err := askForTests(ctx, e.client, e.config, grimSystem, grimPrompt, segment)
	if err != nil {
		return nil, err
	}

	means := make([]records.MeanInput, 0, len(elements))
	for i, el := range elements {
		if !el.Get("reported_mean").Exists() || !el.Get("sample_size").Exists() {
			e.logger.Warn("skipping element %d without reported_mean or sample_size", i)
			continue
		}
		var in records.MeanInput
		if err := json.Unmarshal([]byte(el.Raw), &in); err != nil {
			e.logger.Warn("skipping element %d: %v", i, err)
			continue
		}
		means = append(means, in)
	}
	e.logger.Debug("extracted %d means", len(means))
	return means, nil
}

func askForTests(ctx context.Context, client ports.LLMClient, config ExtractorConfig, system, prompt, segment string) ([]gjson.Result, error) {
	resp, err := client.ChatCompletion(ctx, ports.ChatRequest{
		Model:       config.Model,
		System:      system,
		Prompt:      fmt.Sprintf(prompt, segment),
		Temperature: config.Temperature,
	})
	if err != nil {
		return nil, err
	}
	return ParseTests(resp.Content)
}

var (
	fencePattern    = regexp.MustCompile("```[a-zA-Z]*")
	pyNonePattern   = regexp.MustCompile(`\bNone\b`)
	testsAssignment = regexp.MustCompile(`^tests\s*=\s*`)
)

// ParseTests pulls the list of extracted elements out of a model answer. It
// accepts the answer wrapped in code fences, prefixed with "tests =", as a
// bare array or as an object with a "tests" array.
func ParseTests(content string) ([]gjson.Result, error) {
	cleaned := CleanResponse(content)
	if cleaned == "" {
		return nil, nil
	}
	if !gjson.Valid(cleaned) {
		cleaned = pythonLiteralToJSON(cleaned)
		if !gjson.Valid(cleaned) {
			return nil, fmt.Errorf("model answer is not a list of tests: %.80q", content)
		}
	}

	parsed := gjson.Parse(cleaned)
	if !parsed.IsArray() {
		parsed = parsed.Get("tests")
	}
	if !parsed.IsArray() {
		return nil, fmt.Errorf("model answer has no tests array: %.80q", content)
	}
	return parsed.Array(), nil
}

// CleanResponse strips code fences and a leading "tests =" assignment
func CleanResponse(content string) string {
	s := fencePattern.ReplaceAllString(content, "")
	s = strings.TrimSpace(s)
	s = testsAssignment.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// pythonLiteralToJSON handles the common case of a Python list literal with
// single quotes and None.
func pythonLiteralToJSON(s string) string {
	s = pyNonePattern.ReplaceAllString(s, "null")
	if !strings.Contains(s, `"`) {
		s = strings.ReplaceAll(s, "'", `"`)
	}
	return s
}

var _ ports.TestExtractor = (*StatcheckExtractor)(nil)
var _ ports.MeanExtractor = (*GrimExtractor)(nil)
