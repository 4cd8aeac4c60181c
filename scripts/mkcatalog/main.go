// mkcatalog generates a synthetic recipe catalog for development and
// benchmarking. It writes a CSV in the import format and can optionally load
// the rows straight into a catalog database.
//
// Run: go run ./scripts/mkcatalog [--rows N] [--seed N] [--out recipes.csv] [--db path]
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/platewise/mealparse/internal/store"
)

var (
	proteins = []string{"Chicken", "Tofu", "Chickpea", "Lentil", "Salmon", "Bean", "Turkey", "Paneer"}
	styles   = []string{"Curry", "Stew", "Salad", "Bowl", "Soup", "Bake", "Stir-Fry", "Wrap"}
	tagPool  = []string{"vegetarian", "vegan", "gluten-free", "low-carb", "dairy-free",
		"breakfast", "lunch", "dinner", "dessert", "family-friendly", "healthy-2", "soup", "chicken"}
	servesPool = []string{"1", "2", "2-4", "4-6", "6-8", "8-10", "10-12"}
)

type summary struct {
	GeneratedAt string `json:"generated_at"`
	Rows        int    `json:"rows"`
	Seed        int64  `json:"seed"`
	OutPath     string `json:"out_path"`
	DBPath      string `json:"db_path,omitempty"`
	Imported    int    `json:"imported,omitempty"`
}

func main() {
	rows := flag.Int("rows", 500, "Number of synthetic recipes to generate")
	seed := flag.Int64("seed", 1, "Random seed")
	outPath := flag.String("out", "recipes.csv", "Output CSV path")
	dbPath := flag.String("db", "", "Also import the rows into this catalog database")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", *outPath, err)
		os.Exit(1)
	}

	w := csv.NewWriter(f)
	header := []string{"recipe_id", "title", "tags", "serves", "average_rating",
		"calories", "protein_g", "sodium_mg", "carbs_g", "sugars_g",
		"total_fat_g", "saturated_fat_g", "duration_min"}
	if err := w.Write(header); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing header: %v\n", err)
		os.Exit(1)
	}

	for i := 0; i < *rows; i++ {
		if err := w.Write(synthRow(rng, i)); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing row %d: %v\n", i, err)
			os.Exit(1)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		fmt.Fprintf(os.Stderr, "Error flushing csv: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing %s: %v\n", *outPath, err)
		os.Exit(1)
	}

	out := summary{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Rows:        *rows,
		Seed:        *seed,
		OutPath:     *outPath,
	}

	if *dbPath != "" {
		st, err := store.NewStore(store.StoreConfig{DBPath: *dbPath})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening catalog: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		n, err := st.ImportCSV(context.Background(), *outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
			os.Exit(1)
		}
		out.DBPath = *dbPath
		out.Imported = n
	}

	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
}

// synthRow draws one plausible recipe. Roughly a tenth of the nutrition cells
// are left blank to exercise NULL handling downstream.
func synthRow(rng *rand.Rand, i int) []string {
	protein := proteins[rng.Intn(len(proteins))]
	style := styles[rng.Intn(len(styles))]
	title := fmt.Sprintf("%s %s #%d", protein, style, i+1)

	tags := ""
	for _, tag := range tagPool {
		if rng.Float64() < 0.25 {
			if tags != "" {
				tags += ","
			}
			tags += tag
		}
	}

	cell := func(v float64) string {
		if rng.Float64() < 0.1 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', 1, 64)
	}

	return []string{
		fmt.Sprintf("syn-%06d", i+1),
		title,
		tags,
		servesPool[rng.Intn(len(servesPool))],
		cell(3.0 + rng.Float64()*2.0),
		cell(150 + rng.Float64()*700),
		cell(5 + rng.Float64()*45),
		cell(100 + rng.Float64()*900),
		cell(5 + rng.Float64()*75),
		cell(rng.Float64() * 30),
		cell(2 + rng.Float64()*38),
		cell(rng.Float64() * 15),
		cell(5 + rng.Float64()*115),
	}
}
