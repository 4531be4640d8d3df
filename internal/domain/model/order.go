// Package model contains domain models passed between layers.
package model

// Column names expected by the trained model. The raw record fields come
// first, in the order the form collects them.
const (
	ColAgentAge    = "Agent_Age"
	ColAgentRating = "Agent_Rating"
	ColDistanceKm  = "Distance_km"
	ColOrderHour   = "Order_Hour"
	ColWeather     = "Weather"
	ColTraffic     = "Traffic"
	ColVehicle     = "Vehicle"
	ColArea        = "Area"
	ColCategory    = "Category"
)

// Weather is the weather condition at order time.
type Weather string

// Weather values accepted by the model.
const (
	WeatherSunny      Weather = "Sunny"
	WeatherCloudy     Weather = "Cloudy"
	WeatherFog        Weather = "Fog"
	WeatherStormy     Weather = "Stormy"
	WeatherWindy      Weather = "Windy"
	WeatherSandstorms Weather = "Sandstorms"
)

// Traffic is the road traffic density.
type Traffic string

// Traffic values accepted by the model.
const (
	TrafficLow    Traffic = "Low"
	TrafficMedium Traffic = "Medium"
	TrafficHigh   Traffic = "High"
	TrafficJam    Traffic = "Jam"
)

// Vehicle is the delivery agent's vehicle type. Values are lower case in
// the training data.
type Vehicle string

// Vehicle values accepted by the model.
const (
	VehicleMotorcycle Vehicle = "motorcycle"
	VehicleScooter    Vehicle = "scooter"
	VehicleVan        Vehicle = "van"
)

// Area is the delivery area type.
type Area string

// Area values accepted by the model.
const (
	AreaUrban        Area = "Urban"
	AreaSemiUrban    Area = "Semi-Urban"
	AreaOther        Area = "Other"
	AreaMetropolitan Area = "Metropolitan"
)

// Category is the product category of the order.
type Category string

// Category values accepted by the model.
const (
	CategoryElectronics Category = "Electronics"
	CategoryBooks       Category = "Books"
	CategoryJewelry     Category = "Jewelry"
	CategoryToys        Category = "Toys"
	CategorySnacks      Category = "Snacks"
	CategorySkincare    Category = "Skincare"
	CategoryOutdoors    Category = "Outdoors"
	CategoryApparel     Category = "Apparel"
	CategorySports      Category = "Sports"
	CategoryGrocery     Category = "Grocery"
	CategoryPetSupplies Category = "Pet Supplies"
	CategoryHome        Category = "Home"
	CategoryCosmetics   Category = "Cosmetics"
	CategoryKitchen     Category = "Kitchen"
	CategoryClothing    Category = "Clothing"
	CategoryShoes       Category = "Shoes"
)

// Enumerations in the order the form lists them. The first entry of each
// is the form default.
var (
	Weathers   = []Weather{WeatherSunny, WeatherCloudy, WeatherFog, WeatherStormy, WeatherWindy, WeatherSandstorms}
	Traffics   = []Traffic{TrafficLow, TrafficMedium, TrafficHigh, TrafficJam}
	Vehicles   = []Vehicle{VehicleMotorcycle, VehicleScooter, VehicleVan}
	Areas      = []Area{AreaUrban, AreaSemiUrban, AreaOther, AreaMetropolitan}
	Categories = []Category{
		CategoryElectronics, CategoryBooks, CategoryJewelry, CategoryToys,
		CategorySnacks, CategorySkincare, CategoryOutdoors, CategoryApparel,
		CategorySports, CategoryGrocery, CategoryPetSupplies, CategoryHome,
		CategoryCosmetics, CategoryKitchen, CategoryClothing, CategoryShoes,
	}
)

// Bounds of the numeric inputs, as enforced by the form sliders.
const (
	MinAgentAge    = 15
	MaxAgentAge    = 60
	MinAgentRating = 1.0
	MaxAgentRating = 5.0
	MinDistanceKm  = 10.0
	MaxDistanceKm  = 7000.0
	MinOrderHour   = 0
	MaxOrderHour   = 23
)

// RawOrderRecord holds the nine user-supplied fields of one submission.
// JSON keys match the model column names.
type RawOrderRecord struct {
	AgentAge    int      `json:"Agent_Age" validate:"min=15,max=60"`
	AgentRating float64  `json:"Agent_Rating" validate:"min=1,max=5"`
	DistanceKm  float64  `json:"Distance_km" validate:"min=10,max=7000"`
	OrderHour   int      `json:"Order_Hour" validate:"min=0,max=23"`
	Weather     Weather  `json:"Weather" validate:"required,weather"`
	Traffic     Traffic  `json:"Traffic" validate:"required,traffic"`
	Vehicle     Vehicle  `json:"Vehicle" validate:"required,vehicle"`
	Area        Area     `json:"Area" validate:"required,area"`
	Category    Category `json:"Category" validate:"required,category"`
}

// DefaultOrder returns the record the form shows before any submission.
func DefaultOrder() RawOrderRecord {
	return RawOrderRecord{
		AgentAge:    30,
		AgentRating: 4.5,
		DistanceKm:  10.0,
		OrderHour:   14,
		Weather:     Weathers[0],
		Traffic:     Traffics[0],
		Vehicle:     Vehicles[0],
		Area:        Areas[0],
		Category:    Categories[0],
	}
}

// String conversions keep the enum types usable wherever a plain string is expected.
func (w Weather) String() string  { return string(w) }
func (t Traffic) String() string  { return string(t) }
func (v Vehicle) String() string  { return string(v) }
func (a Area) String() string     { return string(a) }
func (c Category) String() string { return string(c) }
