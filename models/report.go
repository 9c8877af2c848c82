package models

// RestaurantScore pairs a business name with its score summary.
type RestaurantScore struct {
	Name  string
	Score ScoreSummary
}

// InsightReport holds the computed analytics over one ResultSet.
type InsightReport struct {
	TotalRestaurants   int
	WithInspections    int
	TotalInspections   int
	AverageScore       float64
	HighestScore       *RestaurantScore
	TopAverage         []RestaurantScore
	RestaurantsByGroup map[string]int
	SkippedListings    int
}
