package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
)

// Result is the nutritional estimate produced for a meal photo.
type Result struct {
	FoodName    string
	Confidence  float64
	Calories    float64
	Protein     float64
	Carbs       float64
	Fat         float64
	Fiber       float64
	ServingSize string
	Ingredients []string
	Tips        []string
}

// Analyzer estimates the nutritional content of a meal from an image.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (*Result, error)
}

type plate struct {
	name        string
	calories    float64
	protein     float64
	carbs       float64
	fat         float64
	fiber       float64
	grams       float64
	ingredients []string
	tips        []string
}

var plates = []plate{
	{
		name: "Grilled chicken with rice and salad", grams: 420, calories: 520, protein: 42, carbs: 48, fat: 14, fiber: 5,
		ingredients: []string{"grilled chicken breast", "white rice", "mixed greens", "olive oil"},
		tips:        []string{"Good protein-to-calorie ratio.", "Swap white rice for brown rice to add fiber."},
	},
	{
		name: "Pasta with tomato sauce", grams: 380, calories: 460, protein: 15, carbs: 78, fat: 9, fiber: 6,
		ingredients: []string{"pasta", "tomato sauce", "parmesan", "basil"},
		tips:        []string{"Carb heavy; pair with a protein source.", "Portion size drives most of the calories here."},
	},
	{
		name: "Beef with vegetables", grams: 400, calories: 580, protein: 38, carbs: 22, fat: 36, fiber: 7,
		ingredients: []string{"beef", "broccoli", "carrots", "bell pepper"},
		tips:        []string{"High in saturated fat; leaner cuts reduce it.", "Vegetable volume keeps satiety up."},
	},
	{
		name: "Garden salad with eggs", grams: 300, calories: 280, protein: 16, carbs: 12, fat: 18, fiber: 5,
		ingredients: []string{"lettuce", "tomato", "boiled eggs", "cucumber", "vinaigrette"},
		tips:        []string{"Light meal; add a carb source if training today."},
	},
	{
		name: "Fish with sweet potato", grams: 390, calories: 430, protein: 34, carbs: 40, fat: 12, fiber: 6,
		ingredients: []string{"baked fish", "sweet potato", "green beans"},
		tips:        []string{"Well balanced plate.", "Sweet potato adds slow-release carbs."},
	},
	{
		name: "Burger with fries", grams: 450, calories: 920, protein: 32, carbs: 86, fat: 48, fiber: 5,
		ingredients: []string{"beef patty", "bun", "cheese", "french fries"},
		tips:        []string{"High calorie meal; balance the rest of the day accordingly."},
	},
}

type simulatedAnalyzer struct{}

// NewSimulatedAnalyzer returns an analyzer that derives a deterministic
// estimate from the image bytes. The same image always yields the same
// result, which keeps repeated analyses stable for the user.
func NewSimulatedAnalyzer() Analyzer {
	return &simulatedAnalyzer{}
}

func (a *simulatedAnalyzer) Analyze(_ context.Context, image []byte) (*Result, error) {
	sum := sha256.Sum256(image)
	pick := binary.BigEndian.Uint32(sum[0:4])
	p := plates[int(pick)%len(plates)]

	// Portion factor in [0.75, 1.25) derived from the digest.
	portion := 0.75 + float64(binary.BigEndian.Uint16(sum[4:6]))/float64(1<<16)*0.5
	// Confidence in [0.70, 0.95).
	confidence := 0.70 + float64(binary.BigEndian.Uint16(sum[6:8]))/float64(1<<16)*0.25

	return &Result{
		FoodName:    p.name,
		Confidence:  round2(confidence),
		Calories:    math.Round(p.calories * portion),
		Protein:     round1(p.protein * portion),
		Carbs:       round1(p.carbs * portion),
		Fat:         round1(p.fat * portion),
		Fiber:       round1(p.fiber * portion),
		ServingSize: fmt.Sprintf("%d g", int(math.Round(p.grams*portion))),
		Ingredients: p.ingredients,
		Tips:        p.tips,
	}, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
