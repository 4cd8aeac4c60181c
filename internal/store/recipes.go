package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/platewise/mealparse/internal/parse"
)

// Recipe is one catalog row. Nutrition fields are pointers because CSV
// exports routinely leave columns blank.
type Recipe struct {
	ID            int64
	RecipeID      string
	Title         string
	Tags          string // comma-separated labels ("vegan,healthy-2")
	Serves        string // free-form range ("4-6")
	AverageRating *float64
	Calories      *float64
	ProteinG      *float64
	SodiumMg      *float64
	CarbsG        *float64
	SugarsG       *float64
	TotalFatG     *float64
	SaturatedFatG *float64
	DurationMin   *float64
}

const recipeColumns = `recipe_id, title, tags, serves, average_rating,
	calories, protein_g, sodium_mg, carbs_g, sugars_g, total_fat_g,
	saturated_fat_g, duration_min`

// AddRecipe inserts a recipe, replacing any existing row with the same
// recipe_id.
func (s *SQLiteStore) AddRecipe(ctx context.Context, r *Recipe) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO recipes (`+recipeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RecipeID, r.Title, r.Tags, r.Serves, r.AverageRating,
		r.Calories, r.ProteinG, r.SodiumMg, r.CarbsG, r.SugarsG,
		r.TotalFatG, r.SaturatedFatG, r.DurationMin)
	if err != nil {
		return 0, fmt.Errorf("inserting recipe %s: %w", r.RecipeID, err)
	}
	return res.LastInsertId()
}

// GetRecipe fetches a recipe by its external id. Returns sql.ErrNoRows when
// absent.
func (s *SQLiteStore) GetRecipe(ctx context.Context, recipeID string) (*Recipe, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, `+recipeColumns+` FROM recipes WHERE recipe_id = ?`, recipeID)
	return scanRecipe(row)
}

// Count returns the number of catalog rows.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n)
	return n, err
}

// Filter selects catalog rows. Numeric bounds apply only to rows where the
// column is populated; nil bounds are ignored.
type Filter struct {
	MaxCalories     *float64
	MinCalories     *float64
	MaxCarbs        *float64
	MinCarbs        *float64
	MaxProtein      *float64
	MinProtein      *float64
	MaxSugar        *float64
	MinSugar        *float64
	MaxSodium       *float64
	MinSodium       *float64
	MaxFat          *float64
	MinFat          *float64
	MaxSaturatedFat *float64
	MaxDuration     *float64
	MinRating       *float64

	Tags         []string // every tag must appear in the tags column
	ServesTerms  []string // at least one must appear in the serves column
	IncludeTerms []string // at least one must appear in the title
	ExcludeTerms []string // none may appear in the title

	Limit int
}

// FromConstraints maps a parsed constraint set onto a catalog filter: nutrient
// bounds onto nutrition columns, diet and health labels onto tags, ingredient
// lists onto title terms, and count onto the row limit.
func FromConstraints(c parse.Constraints) Filter {
	f := Filter{
		MaxCalories:     c.MaxCalories,
		MinCalories:     c.MinCalories,
		MaxCarbs:        c.MaxCarbs,
		MinCarbs:        c.MinCarbs,
		MaxProtein:      c.MaxProtein,
		MinProtein:      c.MinProtein,
		MaxSugar:        c.MaxSugar,
		MinSugar:        c.MinSugar,
		MaxSodium:       c.MaxSodium,
		MinSodium:       c.MinSodium,
		MaxFat:          c.MaxFat,
		MinFat:          c.MinFat,
		MaxSaturatedFat: c.MaxSaturatedFat,
		MaxDuration:     c.MaxDuration,
		IncludeTerms:    c.IncludeIngredients,
		ExcludeTerms:    c.ExcludeIngredients,
	}
	f.Tags = append(f.Tags, c.Diet...)
	f.Tags = append(f.Tags, c.HealthCategory...)
	if c.Count != nil {
		f.Limit = *c.Count
	}
	return f
}

// Filter returns matching rows in insertion order.
func (s *SQLiteStore) Filter(ctx context.Context, f Filter) ([]*Recipe, error) {
	return s.query(ctx, f, "id")
}

// Sample returns up to n matching rows in random order. A Limit already on
// the filter is ignored in favor of n.
func (s *SQLiteStore) Sample(ctx context.Context, f Filter, n int) ([]*Recipe, error) {
	f.Limit = n
	return s.query(ctx, f, "RANDOM()")
}

func (s *SQLiteStore) query(ctx context.Context, f Filter, order string) ([]*Recipe, error) {
	var where []string
	var args []any

	bound := func(col, op string, v *float64) {
		if v != nil {
			where = append(where, fmt.Sprintf("(%s IS NOT NULL AND %s %s ?)", col, col, op))
			args = append(args, *v)
		}
	}
	bound("calories", "<=", f.MaxCalories)
	bound("calories", ">=", f.MinCalories)
	bound("carbs_g", "<=", f.MaxCarbs)
	bound("carbs_g", ">=", f.MinCarbs)
	bound("protein_g", "<=", f.MaxProtein)
	bound("protein_g", ">=", f.MinProtein)
	bound("sugars_g", "<=", f.MaxSugar)
	bound("sugars_g", ">=", f.MinSugar)
	bound("sodium_mg", "<=", f.MaxSodium)
	bound("sodium_mg", ">=", f.MinSodium)
	bound("total_fat_g", "<=", f.MaxFat)
	bound("total_fat_g", ">=", f.MinFat)
	bound("saturated_fat_g", "<=", f.MaxSaturatedFat)
	bound("duration_min", "<=", f.MaxDuration)
	bound("average_rating", ">=", f.MinRating)

	for _, tag := range f.Tags {
		where = append(where, "tags LIKE ?")
		args = append(args, "%"+tag+"%")
	}
	if len(f.ServesTerms) > 0 {
		ors := make([]string, len(f.ServesTerms))
		for i, term := range f.ServesTerms {
			ors[i] = "serves LIKE ?"
			args = append(args, "%"+term+"%")
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}
	for _, term := range f.ExcludeTerms {
		where = append(where, "title NOT LIKE ?")
		args = append(args, "%"+term+"%")
	}
	if len(f.IncludeTerms) > 0 {
		ors := make([]string, len(f.IncludeTerms))
		for i, term := range f.IncludeTerms {
			ors[i] = "title LIKE ?"
			args = append(args, "%"+term+"%")
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	q := `SELECT id, ` + recipeColumns + ` FROM recipes`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + order
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying recipes: %w", err)
	}
	defer rows.Close()

	var out []*Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*Recipe, error) {
	var r Recipe
	var rating, cal, prot, sod, carb, sug, fat, sat, dur sql.NullFloat64
	err := row.Scan(&r.ID, &r.RecipeID, &r.Title, &r.Tags, &r.Serves,
		&rating, &cal, &prot, &sod, &carb, &sug, &fat, &sat, &dur)
	if err != nil {
		return nil, err
	}
	r.AverageRating = nullable(rating)
	r.Calories = nullable(cal)
	r.ProteinG = nullable(prot)
	r.SodiumMg = nullable(sod)
	r.CarbsG = nullable(carb)
	r.SugarsG = nullable(sug)
	r.TotalFatG = nullable(fat)
	r.SaturatedFatG = nullable(sat)
	r.DurationMin = nullable(dur)
	return &r, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
