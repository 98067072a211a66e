package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/domain"
	domreport "github.com/kailas-cloud/reportdex/internal/domain/report"
	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
	"github.com/kailas-cloud/reportdex/internal/domain/search/result"
	"github.com/kailas-cloud/reportdex/internal/transport/dto"
)

type stubSearcher struct {
	req  request.Search
	ops  []string
	page result.Page
	err  error
}

func (s *stubSearcher) Search(_ context.Context, req request.Search) (result.Page, error) {
	s.req = req
	return s.page, s.err
}

func (s *stubSearcher) SearchExpression(_ context.Context, ops []string, _, _ int) (result.Page, error) {
	s.ops = ops
	return s.page, s.err
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func onePage() result.Page {
	rep := domreport.Reconstruct(domreport.Input{ID: "rep-1", MalwareName: "Emotet"}, domreport.English, nil, time0)
	return result.NewPage([]result.Record{result.New("rep-1", 3.5, rep, nil)}, 0, 20, 1)
}

func TestSearchReports(t *testing.T) {
	st := &stubSearcher{page: onePage()}
	s := NewServer(st, zap.NewNop())

	res, err := s.handleSearchReports(context.Background(), call(ToolSearchReports, map[string]any{
		"query": "emotet",
		"page":  float64(1),
		"size":  float64(5),
		"knn":   true,
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "emotet", st.req.Query())
	assert.Equal(t, 1, st.req.Page())
	assert.Equal(t, 5, st.req.PageSize())
	assert.True(t, st.req.Vector())

	var page dto.PageResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &page))
	assert.Equal(t, 1, page.TotalElements)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "rep-1", page.Content[0].ID)
}

func TestSearchReports_BadArgs(t *testing.T) {
	s := NewServer(&stubSearcher{}, zap.NewNop())

	res, err := s.handleSearchReports(context.Background(), call(ToolSearchReports, map[string]any{
		"query": "emotet",
		"page":  float64(-1),
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestSearchExpression(t *testing.T) {
	st := &stubSearcher{page: onePage()}
	s := NewServer(st, zap.NewNop())

	res, err := s.handleSearchExpression(context.Background(), call(ToolSearchExpression, map[string]any{
		"expression": []any{"malwareName:Emotet", "OR", "malwareName:Qakbot"},
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, []string{"malwareName:Emotet", "OR", "malwareName:Qakbot"}, st.ops)
}

func TestSearchExpression_NonStringItem(t *testing.T) {
	s := NewServer(&stubSearcher{}, zap.NewNop())

	res, err := s.handleSearchExpression(context.Background(), call(ToolSearchExpression, map[string]any{
		"expression": []any{"malwareName:Emotet", float64(1), "malwareName:Qakbot"},
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestMalformedQueryIsToolError(t *testing.T) {
	s := NewServer(&stubSearcher{err: domain.NewMalformedQuery("unknown operator XOR")}, zap.NewNop())

	res, err := s.handleSearchExpression(context.Background(), call(ToolSearchExpression, map[string]any{
		"expression": []any{"malwareName:Emotet", "XOR", "malwareName:Qakbot"},
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "unknown operator XOR")
}

func TestExecutorFailureIsProtocolError(t *testing.T) {
	s := NewServer(&stubSearcher{err: errors.Join(domain.ErrExecutorFailure, errors.New("conn refused"))}, zap.NewNop())

	_, err := s.handleSearchReports(context.Background(), call(ToolSearchReports, map[string]any{"query": "emotet"}))
	assert.ErrorIs(t, err, domain.ErrExecutorFailure)
}

var time0 = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
