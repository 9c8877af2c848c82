package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"inspection-scraper/models"
	"inspection-scraper/utils"
)

const topAverageLimit = 5

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarizes a result set. skipped is the number of listings the
// assembler had to leave out.
func (s *InsightService) Generate(rs *models.ResultSet, skipped int) *models.InsightReport {
	report := &models.InsightReport{
		RestaurantsByGroup: make(map[string]int),
		SkippedListings:    skipped,
	}

	if rs == nil || rs.Len() == 0 {
		return report
	}

	report.TotalRestaurants = rs.Len()

	var scored []models.RestaurantScore
	var weightedSum float64

	for _, name := range rs.Names() {
		r, _ := rs.Get(name)
		if group := r.Metadata[models.FieldCategory]; group != "" {
			report.RestaurantsByGroup[group]++
		}
		if !r.Score.HasData() {
			continue
		}

		report.WithInspections++
		report.TotalInspections += r.Score.Count
		weightedSum += r.Score.Average * float64(r.Score.Count)

		entry := models.RestaurantScore{Name: name, Score: r.Score}
		scored = append(scored, entry)
		if report.HighestScore == nil || r.Score.High > report.HighestScore.Score.High {
			e := entry
			report.HighestScore = &e
		}
	}

	if report.TotalInspections > 0 {
		report.AverageScore = round2(weightedSum / float64(report.TotalInspections))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score.Average > scored[j].Score.Average
	})
	if len(scored) > topAverageLimit {
		report.TopAverage = scored[:topAverageLimit]
	} else {
		report.TopAverage = scored
	}

	s.logger.Debug("[insights] %d restaurants, %d with inspections", report.TotalRestaurants, report.WithInspections)
	return report
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  FOOD SAFETY INSPECTION INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Restaurants extracted  : \033[1m%d\033[0m\n", r.TotalRestaurants)
	fmt.Fprintf(w, "  With inspection data   : \033[1m%d\033[0m\n", r.WithInspections)
	fmt.Fprintf(w, "  Inspections counted    : \033[1m%d\033[0m\n", r.TotalInspections)
	fmt.Fprintf(w, "  Listings skipped       : \033[1m%d\033[0m\n", r.SkippedListings)
	fmt.Fprintln(w)

	// Score stats
	fmt.Fprintf(w, "\033[1;33m  Inspection Scores\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.TotalInspections > 0 {
		fmt.Fprintf(w, "  Mean score (all inspections) : \033[1;32m%.2f\033[0m\n", r.AverageScore)
	} else {
		fmt.Fprintf(w, "  No inspection data available\n")
	}
	if r.HighestScore != nil {
		fmt.Fprintf(w, "  Highest single score         : \033[1;31m%d\033[0m (%s)\n",
			r.HighestScore.Score.High, truncate(r.HighestScore.Name, 30))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Top %d by Average Score\033[0m\n", topAverageLimit)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopAverage) == 0 {
		fmt.Fprintf(w, "  No scored restaurants found\n")
	} else {
		for i, rs := range r.TopAverage {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s \033[1;32m%.2f\033[0m (%d)\n",
				i+1, truncate(rs.Name, 38), rs.Score.Average, rs.Score.Count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Restaurants by Category\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.RestaurantsByGroup) == 0 {
		fmt.Fprintf(w, "  No category data\n")
	} else {
		type groupCount struct {
			group string
			count int
		}
		var groups []groupCount
		for g, cnt := range r.RestaurantsByGroup {
			groups = append(groups, groupCount{g, cnt})
		}
		sort.Slice(groups, func(i, j int) bool {
			if groups[i].count != groups[j].count {
				return groups[i].count > groups[j].count
			}
			return groups[i].group < groups[j].group
		})
		for _, gc := range groups {
			bar := strings.Repeat("█", gc.count)
			fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(gc.group, 28), bar, gc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

// truncate shortens s to max runes, ending in "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
