// Package table builds the output tables as Apache Arrow records and renders
// them as aligned text, CSV or JSON.
//
// Records returned by the builders must be released by the caller.
package table

import (
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/nvandessel/lastmile/internal/comparison"
	"github.com/nvandessel/lastmile/internal/scoring"
	"github.com/nvandessel/lastmile/internal/simulation"
)

// Column names consumed by downstream charting.
const (
	ColStation        = "Station"
	ColMode           = "Mode"
	ColAverageTime    = "Average_Time"
	ColP95Time        = "P95_Time"
	ColStdDev         = "Std_Dev"
	ColMedian         = "Median_Time"
	ColMin            = "Min_Time"
	ColMax            = "Max_Time"
	ColTrials         = "Trials"
	ColTruckMean      = "Truck_Mean"
	ColDroneMean      = "Drone_Mean"
	ColTimeSaved      = "Time_Saved"
	ColImprovementPct = "Improvement_Pct"
	ColArea           = "Area"
	ColRank           = "Rank"
	ColScore          = "Score"
	ColEfficiency     = "Efficiency"
	ColDemand         = "Demand"
	ColNecessity      = "Necessity"
)

var pool = memory.NewGoAllocator()

func stringField(name string) arrow.Field {
	return arrow.Field{Name: name, Type: arrow.BinaryTypes.String}
}

func floatField(name string) arrow.Field {
	return arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64}
}

func intField(name string) arrow.Field {
	return arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int64}
}

// Summaries builds the per-(station, mode) statistics table. With detail,
// median, min, max and trial count columns are appended.
func Summaries(rows []simulation.Summary, detail bool) arrow.Record {
	fields := []arrow.Field{
		stringField(ColStation),
		stringField(ColMode),
		floatField(ColAverageTime),
		floatField(ColP95Time),
		floatField(ColStdDev),
	}
	if detail {
		fields = append(fields,
			floatField(ColMedian),
			floatField(ColMin),
			floatField(ColMax),
			intField(ColTrials))
	}

	b := array.NewRecordBuilder(pool, arrow.NewSchema(fields, nil))
	defer b.Release()

	for _, r := range rows {
		b.Field(0).(*array.StringBuilder).Append(r.Station)
		b.Field(1).(*array.StringBuilder).Append(r.Mode)
		b.Field(2).(*array.Float64Builder).Append(r.AverageTime)
		b.Field(3).(*array.Float64Builder).Append(r.P95Time)
		b.Field(4).(*array.Float64Builder).Append(r.StdDev)
		if detail {
			b.Field(5).(*array.Float64Builder).Append(r.Median)
			b.Field(6).(*array.Float64Builder).Append(r.Min)
			b.Field(7).(*array.Float64Builder).Append(r.Max)
			b.Field(8).(*array.Int64Builder).Append(int64(r.Trials))
		}
	}
	return b.NewRecord()
}

// Comparisons builds the side-by-side truck vs rail-drone table.
func Comparisons(rows []comparison.Row) arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{
		stringField(ColStation),
		floatField(ColTruckMean),
		floatField(ColDroneMean),
		floatField(ColTimeSaved),
		floatField(ColImprovementPct),
	}, nil)

	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()

	for _, r := range rows {
		b.Field(0).(*array.StringBuilder).Append(r.Station)
		b.Field(1).(*array.Float64Builder).Append(r.TruckMean)
		b.Field(2).(*array.Float64Builder).Append(r.DroneMean)
		b.Field(3).(*array.Float64Builder).Append(r.TimeSaved)
		b.Field(4).(*array.Float64Builder).Append(r.ImprovementPct)
	}
	return b.NewRecord()
}

// ScoreMatrix builds the area × scenario table: one row per area, one float
// column per scenario.
func ScoreMatrix(m scoring.Matrix) arrow.Record {
	fields := make([]arrow.Field, 0, len(m.Scenarios)+1)
	fields = append(fields, stringField(ColArea))
	for _, name := range m.Scenarios {
		fields = append(fields, floatField(name))
	}

	b := array.NewRecordBuilder(pool, arrow.NewSchema(fields, nil))
	defer b.Release()

	for i, area := range m.Areas {
		b.Field(0).(*array.StringBuilder).Append(area)
		for j := range m.Scenarios {
			b.Field(j + 1).(*array.Float64Builder).Append(m.Scores[i][j])
		}
	}
	return b.NewRecord()
}

// Ranking builds a single-scenario ranking with component scores.
func Ranking(ranked []scoring.ScoredArea) arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{
		intField(ColRank),
		stringField(ColArea),
		floatField(ColScore),
		floatField(ColEfficiency),
		floatField(ColDemand),
		floatField(ColNecessity),
	}, nil)

	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()

	for i, r := range ranked {
		b.Field(0).(*array.Int64Builder).Append(int64(i + 1))
		b.Field(1).(*array.StringBuilder).Append(r.Area.Name)
		b.Field(2).(*array.Float64Builder).Append(r.Score)
		b.Field(3).(*array.Float64Builder).Append(r.Components.Efficiency)
		b.Field(4).(*array.Float64Builder).Append(r.Components.Demand)
		b.Field(5).(*array.Float64Builder).Append(r.Components.Necessity)
	}
	return b.NewRecord()
}
