package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/edumetric-labs/edumetric/pkg/core"
)

func groupFailure(what string) failure {
	return failure{
		fallback: fmt.Sprintf("%s analysis failed. Please try again.", what),
		network:  fmt.Sprintf("%s analysis failed. Please try again.", what),
	}
}

// AnalyseDepartment analyses one department, optionally limited to a year.
func (c *Controller) AnalyseDepartment(ctx context.Context, dept, year string) (*core.GroupAnalysis, error) {
	dept, year = strings.TrimSpace(dept), strings.TrimSpace(year)
	if dept == "" {
		return nil, c.invalid(&core.ValidationError{Field: "dept", Message: "is required"})
	}
	title := "Department " + dept
	if year != "" {
		title += " / Year " + year
	}
	return c.group(ctx, slotDepartment, "Analysing department...", "Department",
		Group{Scope: core.ScopeDepartment, ScopeValue: dept, Title: title},
		func(ctx context.Context) (*core.GroupAnalysis, error) { return c.api.AnalyzeDepartment(ctx, dept, year) })
}

// AnalyseYear analyses one year across departments.
func (c *Controller) AnalyseYear(ctx context.Context, year string) (*core.GroupAnalysis, error) {
	year = strings.TrimSpace(year)
	if year == "" {
		return nil, c.invalid(&core.ValidationError{Field: "year", Message: "is required"})
	}
	return c.group(ctx, slotYear, "Analysing year...", "Year",
		Group{Scope: core.ScopeYear, ScopeValue: year, Title: "Year " + year},
		func(ctx context.Context) (*core.GroupAnalysis, error) { return c.api.AnalyzeYear(ctx, year) })
}

// AnalyseCollege analyses the whole college.
func (c *Controller) AnalyseCollege(ctx context.Context) (*core.GroupAnalysis, error) {
	return c.group(ctx, slotCollege, "Analysing college...", "College",
		Group{Scope: core.ScopeCollege, ScopeValue: "all", Title: "College"},
		c.api.AnalyzeCollege)
}

func (c *Controller) group(ctx context.Context, slot, message, what string, g Group,
	call func(context.Context) (*core.GroupAnalysis, error)) (*core.GroupAnalysis, error) {
	tok, h := c.begin(slot, message)
	defer h.Release()

	res, err := call(ctx)
	if err != nil {
		return nil, c.failed(slot, tok, err, groupFailure(what))
	}
	g.Analysis = *res
	return res, c.settle(slot, tok, func(d *data) { d.groups[g.Scope] = &g })
}

// AnalyseBatch analyses one admission batch.
func (c *Controller) AnalyseBatch(ctx context.Context, batchYear string) (*core.BatchAnalysis, error) {
	batchYear = strings.TrimSpace(batchYear)
	if batchYear == "" {
		return nil, c.invalid(&core.ValidationError{Field: "batch_year", Message: "is required"})
	}

	tok, h := c.begin(slotBatch, "Analysing batch...")
	defer h.Release()

	res, err := c.api.AnalyzeBatch(ctx, batchYear)
	if err != nil {
		return nil, c.failed(slotBatch, tok, err, groupFailure("Batch"))
	}
	return res, c.settle(slotBatch, tok, func(d *data) {
		d.batch = &BatchView{BatchYear: batchYear, Analysis: *res}
	})
}
