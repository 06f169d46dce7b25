package pages

import (
	"context"

	"github.com/trezcool/capstone/core/project"
	"github.com/trezcool/capstone/gateway"
	"github.com/trezcool/capstone/report"
)

// Report fetches the statistics and the public projects and assembles the report.
func Report(ctx context.Context, d Deps, opts report.Options) (report.Report, project.Statistics, error) {
	var stats project.Statistics
	if err := d.get(ctx, "v1/project/statistics", &stats); err != nil {
		return report.Report{}, project.Statistics{}, err
	}
	payload, err := d.API.Do(ctx, d.request("GET", "v1/project/get/public_project/list", nil))
	if err != nil {
		return report.Report{}, project.Statistics{}, err
	}
	projects := gateway.DecodeList[project.Detail](payload)
	return report.Assemble(stats, projects, opts), stats, nil
}
