package client

import (
	"context"
	"fmt"
	"net/http"

	"cofoundr/types"
)

// Endpoint paths on the co-founder service
const (
	PathAnalyze  = "/analyze"
	PathSimulate = "/simulate"
	PathImage    = "/image"
	PathReport   = "/report"
	PathLinkedIn = "/linkedin"
	PathAutopost = "/autopost"
	PathMetrics  = "/mcp/metrics"
)

// Default file names for stored artifacts
const (
	BrochureFileName = "cofoundrai-brochure.png"
	ReportFileName   = "cofoundrai-report.pdf"
)

type ideaRequest struct {
	Idea string `json:"idea"`
}

type postRequest struct {
	Post string `json:"post"`
}

// Analyze submits an idea for business, market, tech and risk analysis
func (c *Client) Analyze(ctx context.Context, idea string) (*types.AnalyzeResult, error) {
	var result types.AnalyzeResult
	if err := c.doJSONRequest(ctx, http.MethodPost, PathAnalyze, ideaRequest{Idea: idea}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Simulate runs the market simulation for an analysis
func (c *Client) Simulate(ctx context.Context, analysis *types.AnalyzeResult) (*types.SimulateResult, error) {
	var result types.SimulateResult
	if err := c.doJSONRequest(ctx, http.MethodPost, PathSimulate, analysis, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Report generates the PDF report for an analysis and stores it
func (c *Client) Report(ctx context.Context, analysis *types.AnalyzeResult) (*types.Document, error) {
	data, contentType, err := c.doBinaryRequest(ctx, PathReport, analysis)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/pdf"
	}

	handle, err := c.artifacts.Save(ctx, ReportFileName, contentType, data)
	if err != nil {
		return nil, &Error{Op: PathReport, Message: fmt.Sprintf("failed to store report: %v", err), Err: err}
	}

	return &types.Document{
		Name:        ReportFileName,
		Handle:      handle,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// LinkedIn drafts a LinkedIn post for an analysis
func (c *Client) LinkedIn(ctx context.Context, analysis *types.AnalyzeResult) (*types.LinkedInResult, error) {
	var result types.LinkedInResult
	if err := c.doJSONRequest(ctx, http.MethodPost, PathLinkedIn, analysis, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Autopost publishes a post to LinkedIn
func (c *Client) Autopost(ctx context.Context, post string) (*types.AutopostResult, error) {
	var result types.AutopostResult
	if err := c.doJSONRequest(ctx, http.MethodPost, PathAutopost, postRequest{Post: post}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Metrics fetches the service's agent and request metrics
func (c *Client) Metrics(ctx context.Context) (*types.Metrics, error) {
	var raw map[string]any
	if err := c.doJSONRequest(ctx, http.MethodGet, PathMetrics, nil, &raw); err != nil {
		return nil, err
	}

	metrics, err := types.DecodeMetrics(raw)
	if err != nil {
		return nil, &Error{Op: PathMetrics, Message: fmt.Sprintf("failed to decode response: %v", err), Err: err}
	}
	return metrics, nil
}
