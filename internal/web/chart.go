package web

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/godilite/termosti/internal/service"
)

const (
	chartHeight = "480px"
	lineWidth   = 2
	// echarts draws "-" as a gap.
	missingPoint = "-"
)

func buildDatabaseChart(data service.ChartData) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Bancos de Dados",
			Width:     "100%",
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Participação média por ano",
			Subtitle: "Bancos de dados",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%"}),
	)
	line.SetXAxis(data.Years)

	for _, s := range data.Series {
		points := make([]opts.LineData, len(s.Values))
		for i, v := range s.Values {
			if v == nil {
				points[i] = opts.LineData{Value: missingPoint}
				continue
			}
			points[i] = opts.LineData{Value: *v}
		}

		line.AddSeries(s.Name, points,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
		)
	}

	return line
}
